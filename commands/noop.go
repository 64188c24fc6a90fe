package commands

import (
	"github.com/josephlewis42/minish/core/vos"
)

// NoOpCommand describes a program that ignores its arguments and exits with
// a fixed status.
type NoOpCommand struct {
	Name     string
	Use      string
	Short    string
	ExitCode int
}

// Convert the no-op command description to a functioning command.
func (c *NoOpCommand) ToCommand() vos.ProcessFunc {
	return func(virtOS vos.VOS) int {
		cmd := &SimpleCommand{
			Use:   c.Use,
			Short: c.Short,
			// Never bail, even if args are bad.
			NeverBail: true,
		}

		return cmd.Run(virtOS, func() int {
			return c.ExitCode
		})
	}
}

var noOpBinCommands = []NoOpCommand{
	{
		Name:  "true",
		Use:   "true",
		Short: "Do nothing, successfully.",
	},
	{
		Name:     "false",
		Use:      "false",
		Short:    "Do nothing, unsuccessfully.",
		ExitCode: 1,
	},
}

func init() {
	for i := range noOpBinCommands {
		cmd := noOpBinCommands[i]
		mustAddBinCmd(cmd.Name, cmd.ToCommand())
	}
}
