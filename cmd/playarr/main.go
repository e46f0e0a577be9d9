// Package main is the entry point for the playarr application.
package main

import (
	"os"

	"github.com/jmylchreest/playarr/cmd/playarr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
