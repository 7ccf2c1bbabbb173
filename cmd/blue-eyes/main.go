package main

import (
	"os"

	"github.com/tomrplummer/blue-eyes/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
