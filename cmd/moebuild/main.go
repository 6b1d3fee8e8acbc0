// moebuild compiles, validates, builds and packages MOE iOS applications.
// One pipeline run: AOT compile per architecture, UI validation, the native
// build and optionally packaging, stopping at the first failure.
package main

import (
	"os"

	"github.com/corey/moebuild/cmd/moebuild/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
