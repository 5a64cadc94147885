package main

import (
	"os"

	"github.com/stlalpha/fdbridge/cmd/fdbridge/commands"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	os.Exit(commands.Execute(os.Args[1:]))
}
