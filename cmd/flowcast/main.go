// main is the entry point for the flowcast CLI.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/flowsignal/flowcast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
