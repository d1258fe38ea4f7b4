// Package main is the entry point for the ttspipe CLI.
//
// Usage:
//
//	ttspipe [flags] <command> [args]
//
// Commands:
//
//	synth      - Synthesize speech from text
//	embedding  - Inspect and seed speaker-embedding datasets
//	config     - Configuration management
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/ttspipe/cmd/ttspipe/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
