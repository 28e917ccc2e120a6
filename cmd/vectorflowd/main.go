// Package main provides the entry point for the vectorflowd server.
package main

import (
	"os"

	"github.com/Aman-CERP/vectorflow/cmd/vectorflowd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
