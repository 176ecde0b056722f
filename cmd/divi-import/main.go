package main

import (
	"os"

	"github.com/tamadeu/divi-import/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
