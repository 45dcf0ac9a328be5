// cmd/fncall/main.go
package main

import (
	"github.com/mwiater/fncall/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the fncall CLI by delegating to the cobra root command.
// Build metadata is injected with -ldflags "-X main.version=...".
func main() {
	commands.SetVersionInfo(version, commit, date)
	commands.Execute()
}
