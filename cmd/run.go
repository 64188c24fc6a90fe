package cmd

import (
	"io"
	"os"

	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/shell"
	"github.com/josephlewis42/minish/core/vos"
	"github.com/spf13/cobra"
)

var runCommand string

// runCmd runs the shell against the host operating system.
var runCmd = &cobra.Command{
	Use:   "run [FILE]",
	Short: "Run commands from -c, a script file or standard input.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var src io.Reader
		name := ""
		switch {
		case cmd.Flags().Changed("command"):
		case len(args) == 1:
			fd, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fd.Close()
			src, name = fd, args[0]
		default:
			src = cmd.InOrStdin()
		}

		status, err := runHostShell(cfg, func(sh *shell.Shell) int {
			if src == nil {
				return sh.RunString(runCommand)
			}
			return sh.RunScript(src, name)
		})
		if err != nil {
			return err
		}

		exitStatus = status
		return nil
	},
}

// runHostShell creates a shell over the host with cfg's event log attached and
// passes it to body.
func runHostShell(cfg *config.Configuration, body func(*shell.Shell) int) (int, error) {
	opts := []shell.Option{shell.WithConfig(cfg)}
	if cfg.EventLogPath() != "" {
		logFd, err := cfg.OpenEventLog()
		if err != nil {
			return 0, err
		}
		defer logFd.Close()
		opts = append(opts, shell.WithEvents(logger.NewJsonLinesLogRecorder(logFd).NewSession()))
	}

	sh := shell.New(vos.NewHostOS(), opts...)
	defer sh.Close()
	return body(sh), nil
}

func init() {
	runCmd.Flags().StringVarP(&runCommand, "command", "c", "", "command string to run")
	rootCmd.AddCommand(runCmd)
}
