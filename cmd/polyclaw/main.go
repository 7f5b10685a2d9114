package main

import (
	"os"

	"github.com/MochiAT/jesus-polyclaw/cmd/polyclaw/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
