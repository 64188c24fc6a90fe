package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/josephlewis42/minish/commands"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/shell"
	"github.com/josephlewis42/minish/core/vos"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const playgroundHome = "/home/playground"

// newPlayground builds a simulated machine with every bundled program
// installed.
func newPlayground() (*vos.SimOS, error) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(playgroundHome, 0755); err != nil {
		return nil, err
	}

	sim := vos.NewSimOS(fs)
	if err := commands.Install(sim); err != nil {
		return nil, err
	}

	sim.Setenv("HOME", playgroundHome)
	sim.Setenv("PATH", "/usr/bin:/bin")
	sim.Setenv("USER", "playground")
	sim.Setenv("PWD", playgroundHome)
	if err := sim.Chdir(playgroundHome); err != nil {
		return nil, err
	}
	return sim, nil
}

// playgroundCmd runs the shell over a simulated OS for testing
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run a script from standard input over an in-memory simulated system.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir, err := os.MkdirTemp("", "playground")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		cfg, err := config.Initialize(dir, playgroundLogger)
		if err != nil {
			return err
		}
		cfg.EventLog = config.EventLogName

		logFd, err := cfg.OpenEventLog()
		if err != nil {
			return err
		}
		defer logFd.Close()
		logRecorder := logger.NewJsonLinesLogRecorder(logFd)

		playgroundLogger.Printf("Logging to: file://%s\n", dir)
		playgroundLogger.Printf("See logs with: tail -f %s\n", cfg.EventLogPath())
		playgroundLogger.Println(strings.Repeat("=", 80))

		sim, err := newPlayground()
		if err != nil {
			return err
		}
		sim.SetIO(vos.NewVIOAdapter(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))

		// Children log through the simulated filesystem, which can't see the
		// host log file.
		childCfg := *cfg
		childCfg.EventLog = ""
		sh := shell.New(sim, shell.WithConfig(&childCfg), shell.WithEvents(logRecorder.NewSession()))
		defer sh.Close()

		exitCode := sh.RunScript(sim.Stdin(), "")
		fmt.Fprintf(cmd.OutOrStdout(), "Exit code: %d\n", exitCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}
