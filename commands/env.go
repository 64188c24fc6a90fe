package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephlewis42/minish/core/vos"
)

// Env prints the environment, sorted by name. NAME=VALUE operands are
// applied first and -i starts from an empty environment. Running a
// utility operand isn't supported.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/env.html
func Env(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "env [-i] [NAME=VALUE]...",
		Short: "Print the environment.",
	}
	ignore := cmd.Flags().Bool('i', "start with an empty environment")

	return cmd.RunE(virtOS, func() error {
		env := vos.NewMapEnvFromEnvList(virtOS.Environ())
		if *ignore {
			env = vos.NewMapEnv()
		}

		for _, arg := range cmd.Flags().Args() {
			name, value, ok := strings.Cut(arg, "=")
			if !ok || name == "" {
				return fmt.Errorf("running %q isn't supported", arg)
			}
			env.Setenv(name, value)
		}

		vars := env.Environ()
		sort.Strings(vars)
		for _, v := range vars {
			fmt.Fprintln(virtOS.Stdout(), v)
		}
		return nil
	})
}

var _ vos.ProcessFunc = Env

func init() {
	mustAddBinCmd("env", Env)
}
