package commands

import (
	"fmt"

	"github.com/josephlewis42/minish/core/shell"
	"github.com/josephlewis42/minish/core/vos"
)

// RunShell implements sh: it runs the -c string, a script file, or standard
// input.
func RunShell(virtualOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sh [-c COMMAND | FILE]",
		Short: "Standard command interpreter for the system.",
	}
	commandFlag := cmd.Flags().String('c', "", "Command")

	return cmd.Run(virtualOS, func() int {
		s := shell.New(virtualOS)
		defer s.Close()

		args := cmd.Flags().Args()
		switch {
		case cmd.Flags().IsSet('c'):
			return s.RunString(*commandFlag)
		case len(args) == 0 || args[0] == "-":
			return s.RunScript(virtualOS.Stdin(), "")
		}

		fd, err := virtualOS.FS().Open(args[0])
		if err != nil {
			fmt.Fprintf(virtualOS.Stderr(), "sh: %s\n", describeErr(fileErr(args[0], err)))
			return shell.StatusNotFound
		}
		defer fd.Close()
		return s.RunScript(fd, args[0])
	})
}

var _ vos.ProcessFunc = RunShell

func init() {
	mustAddBinCmd("sh", RunShell)
}
