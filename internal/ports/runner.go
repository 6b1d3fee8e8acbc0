package ports

import "context"

// Command describes a single external tool invocation.
// Path is either an absolute executable path or a name resolved through PATH.
type Command struct {
	Path string
	Args []string
	Dir  string   // working directory; empty = inherit
	Env  []string // extra KEY=VALUE pairs appended to the parent environment
}

// CommandRunner spawns external tools for the build tasks. The adapter
// (execrunner) owns process spawning and output capture; tasks only see
// lines and exit codes.
type CommandRunner interface {
	// Run starts cmd and blocks until it exits or ctx is done. Every output
	// line from stdout and stderr is passed to onLine in the order it was
	// received; onLine may be nil. The returned exit code is the tool's own.
	// err is non-nil only when the process could not be started, could not
	// be waited on, or was killed because ctx ended.
	Run(ctx context.Context, cmd Command, onLine func(line string)) (int, error)
}
