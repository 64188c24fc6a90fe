package commands

import (
	"io"

	"github.com/josephlewis42/minish/core/vos"
)

// Cat implements the UNIX cat command.
func Cat(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cat [FILE]...",
		Short: "Concatenate FILE(s) to standard output, - reads standard input.",
	}

	return cmd.RunE(virtOS, func() error {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			args = []string{"-"}
		}

		for _, arg := range args {
			if arg == "-" {
				if _, err := io.Copy(virtOS.Stdout(), virtOS.Stdin()); err != nil {
					return err
				}
				continue
			}

			fd, err := virtOS.FS().Open(arg)
			if err != nil {
				return fileErr(arg, err)
			}

			_, err = io.Copy(virtOS.Stdout(), fd)
			fd.Close()
			if err != nil {
				return fileErr(arg, err)
			}
		}

		return nil
	})
}

var _ vos.ProcessFunc = Cat

func init() {
	mustAddBinCmd("cat", Cat)
}
