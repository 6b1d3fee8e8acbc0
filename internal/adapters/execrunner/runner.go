// Package execrunner implements ports.CommandRunner with os/exec.
// Both output streams feed one line splitter, so lines reach the caller in
// the order the pipes delivered them. Cancellation and deadlines come from
// the context: when it ends, the process is killed.
package execrunner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
)

// waitDelay bounds how long Run waits for output pipes after the process
// exits or is killed. Grandchildren holding the pipes open must not hang it.
const waitDelay = 5 * time.Second

// Runner spawns processes.
type Runner struct {
	log zerolog.Logger
}

// New creates a Runner that logs each invocation at debug level.
func New(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Run starts the command and blocks until it exits or ctx ends.
func (r *Runner) Run(ctx context.Context, c ports.Command, onLine func(line string)) (int, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.WaitDelay = waitDelay

	lw := newLineWriter(onLine)
	cmd.Stdout = lw
	cmd.Stderr = lw

	r.log.Debug().Str("tool", c.Path).Str("args", strings.Join(c.Args, " ")).Msg("exec")

	start := time.Now()
	err := cmd.Run()
	lw.Flush()

	r.log.Debug().Str("tool", c.Path).Dur("elapsed", time.Since(start)).Msg("exit")

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if ctxErr := ctx.Err(); ctxErr != nil {
		code := -1
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return code, fmt.Errorf("%s killed: %w", c.Path, ctxErr)
	}
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
