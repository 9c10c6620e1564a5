// cmd/dealdesk/main.go
//
// This is the entry point for the dealdesk CLI.
// Running `dealdesk` with no subcommand launches the order wizard TUI in
// the current directory.

package main

import (
	"os"

	"github.com/kingrea/dealdesk/cmd/dealdesk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
