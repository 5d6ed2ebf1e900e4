// Package main is the entry point for the tvcatalog CLI.
package main

import (
	"os"

	"github.com/voyagen/tvcatalog/cmd/tvcatalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
