package main

import (
	"os"

	"github.com/vigilo-home/vigilo/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
