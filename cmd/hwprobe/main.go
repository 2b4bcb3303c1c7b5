// Package main is the entry point for the hwprobe command.
// Every report is printed as a JSON document on stdout; logs go to stderr
// and the optional log file.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd(embeddedConfig).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
