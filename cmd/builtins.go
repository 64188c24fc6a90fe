package cmd

import (
	"fmt"
	"sort"

	"github.com/josephlewis42/minish/commands"
	"github.com/josephlewis42/minish/core/shell"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the shell builtins and the programs available in the playground.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var builtins []string
		for _, name := range shell.BuiltinNames() {
			builtins = append(builtins, "shell:"+name)
		}
		builtins = append(builtins, commands.CommandPaths()...)

		sort.Strings(builtins)

		for _, v := range builtins {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
