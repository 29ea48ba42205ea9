// The main package for the auditconsole executable.
package main

import (
	"github.com/seenbyai/audit-console/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
