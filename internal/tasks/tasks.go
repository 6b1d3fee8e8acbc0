// Package tasks implements the build steps the pipeline runs: ahead-of-time
// compilation, UI validation, the native build and packaging.
//
// Every task resolves its inputs when it is constructed, so a bad path is
// reported before any tool runs. Launch does the work and returns the first
// failure; it never terminates the process.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
)

// Tool names, resolved through PATH unless overridden.
const (
	ToolIBTool     = "ibtool"
	ToolXcodeBuild = "xcodebuild"
	ToolXcrun      = "xcrun"
)

// runTool runs cmd and converts a start failure, a kill or a non-zero exit
// into a *pipeline.ToolError.
func runTool(ctx context.Context, runner ports.CommandRunner, log zerolog.Logger, cmd ports.Command, onLine func(string)) error {
	log.Debug().Str("tool", cmd.Path).Strs("args", cmd.Args).Msg("exec")

	code, err := runner.Run(ctx, cmd, onLine)
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		return &pipeline.ToolError{Tool: cmd.Path, ExitCode: code, Err: fmt.Errorf("%w: %w", pipeline.ErrDeadline, err)}
	case err != nil:
		return &pipeline.ToolError{Tool: cmd.Path, ExitCode: code, Err: err}
	case code != 0:
		return &pipeline.ToolError{Tool: cmd.Path, ExitCode: code}
	}
	return nil
}

// consoleLines echoes tool output to w, one line per call.
func consoleLines(w io.Writer) func(string) {
	if w == nil {
		return nil
	}
	return func(line string) {
		io.WriteString(w, line+"\n")
	}
}
