package cmd

import (
	"log"
	"os"

	"github.com/josephlewis42/minish/core/config"
	"github.com/spf13/cobra"
)

var cfgPath string

// exitStatus is the process exit code once the command returns.
var exitStatus int

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Printf("Couldn't load config from %q: %v", cfgPath, err)
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minish",
	Short: "A minimal POSIX-style shell",
	Long: `A minimal POSIX-style shell supporting pipelines, conditionals,
sequences, background jobs, subshells, redirections and a directory stack.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}
