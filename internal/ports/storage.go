// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "time"

// History persists a ledger of pipeline runs to durable storage.
// The backing store (bbolt) is module-scoped: each module path gets its own
// namespace. Writes are serialized by the adapter.
//
// Crash safety: Append must be transactional. A crash mid-write must not
// corrupt previously committed records.
type History interface {
	// Append stores a finished run. rec.ID must be set and unique.
	Append(rec *RunRecord) error

	// List returns the most recent runs for a module, newest first.
	// limit <= 0 returns every record. Returns nil, nil for an unknown module.
	List(modulePath string, limit int) ([]*RunRecord, error)

	// Prune removes a module's records that started before the cutoff and
	// returns how many were removed.
	Prune(modulePath string, before time.Time) (int, error)

	// DeleteModule removes every record for a module.
	// Idempotent: deleting an unknown module is not an error.
	DeleteModule(modulePath string) error
}

// Task outcome values stored in TaskRecord.Status.
const (
	TaskSucceeded = "ok"
	TaskFailed    = "failed"
	TaskNotRun    = "not-run"
)

// RunRecord describes one pipeline execution.
type RunRecord struct {
	ID          string       `json:"id"`
	ModulePath  string       `json:"module_path"`
	StartedAt   time.Time    `json:"started_at"`
	DurationMs  int64        `json:"duration_ms"`
	Mode        string       `json:"mode"`
	Platform    string       `json:"platform"`
	ProductType string       `json:"product_type"`
	Tasks       []TaskRecord `json:"tasks"`
	ExitCode    int          `json:"exit_code"`
	Error       string       `json:"error,omitempty"`
}

// TaskRecord is the outcome of a single task within a run.
// Tasks after a failure are recorded as TaskNotRun.
type TaskRecord struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Succeeded reports whether every task in the run completed.
func (r *RunRecord) Succeeded() bool {
	return r.ExitCode == 0 && r.Error == ""
}
