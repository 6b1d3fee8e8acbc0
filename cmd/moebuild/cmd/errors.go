package cmd

import (
	"errors"

	"github.com/corey/moebuild/internal/domain/pipeline"
	bolt "go.etcd.io/bbolt"
)

// ExitCode maps a command error to the process exit status. Pipeline
// errors carry the failing tool's own code; everything else exits 1.
func ExitCode(err error) int {
	return pipeline.ExitCode(err)
}

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt gives up on the file lock after the store's open timeout.
func isDBLockError(err error) bool {
	return err != nil && errors.Is(err, bolt.ErrTimeout)
}

// diagnoseDBLock returns actionable guidance when the history database is
// held by another process.
func diagnoseDBLock() string {
	return "history database is locked by another moebuild process\n" +
		"  → a watch session may be running for this module\n" +
		"  → find it:  ps aux | grep 'moebuild'\n" +
		"  → or skip recording with --no-history"
}
