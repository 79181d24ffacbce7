// cmd/thoughtline/main.go
//
// Entry point for the thoughtline CLI. Running `thoughtline` in a project
// starts the event bridge and the transcript TUI; subcommands manage the
// project config and run one-off translations.

package main

import (
	"fmt"
	"os"

	"github.com/kingrea/thoughtline/cmd/thoughtline/commands"
)

// Version information, set with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
