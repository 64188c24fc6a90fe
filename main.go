package main

import (
	"os"

	"github.com/josephlewis42/minish/cmd"
	"github.com/josephlewis42/minish/core/vos"
)

func main() {
	// Forked child shells skip flag parsing entirely.
	if vos.IsForkedChild() {
		os.Exit(vos.RunForkedChild())
	}
	cmd.Execute()
}
