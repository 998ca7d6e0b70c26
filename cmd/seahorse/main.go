package main

import (
	"os"

	"seahorse/cmd/seahorse/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
