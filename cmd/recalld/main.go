// Package main provides the entry point for the recalld memory server.
package main

import (
	"fmt"
	"os"

	"github.com/lamina-ai/recall-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
