package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrResolution = errors.New("resolution failed")
	ErrSecurity   = errors.New("security check failed")
	ErrToolFailed = errors.New("external tool failed")
	ErrDeadline   = errors.New("deadline exceeded")
)

// ToolError reports an external tool that exited non-zero or could not be
// run. ExitCode is the tool's own status; it becomes the process exit code.
type ToolError struct {
	Tool     string
	ExitCode int
	Err      error // underlying start/wait error, may be nil
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

func (e *ToolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrToolFailed, e.Err}
	}
	return []error{ErrToolFailed}
}

// Resolutionf returns an error wrapping ErrResolution.
func Resolutionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResolution, fmt.Sprintf(format, args...))
}

// ExitCode maps a pipeline error to a process exit status: 0 for nil, the
// tool's own code for a ToolError, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *ToolError
	if errors.As(err, &te) && te.ExitCode > 0 {
		return te.ExitCode
	}
	return 1
}
