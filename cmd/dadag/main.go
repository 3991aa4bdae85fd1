// Package main implements the dadag CLI, a static dependency-graph
// analyzer for declarative interview YAML.
package main

import (
	"fmt"
	"os"

	"github.com/l3aro/docassemble-dag/cmd/dadag/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.SetVersion(version, buildTime)
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
