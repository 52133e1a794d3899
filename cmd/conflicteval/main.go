package main

import (
	"os"

	"github.com/akryshtal/conflict-sensitivity-eval/cmd/conflicteval/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
