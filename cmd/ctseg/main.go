// Command ctseg segments the liver in CT slices.
//
// It runs connected-threshold, confidence-connected and isolated-connected
// region growing, gradient watershed segmentation, batch processing over
// many slices, and an MCP server exposing the same pipelines over stdio.
package main

import (
	"log"
	"os"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Configure logging to stderr (stdout is for results and the MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
