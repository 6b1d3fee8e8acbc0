// Package pipeline runs build tasks one at a time, in the order they were
// added, stopping at the first failure.
//
// There is no dependency graph: ordering is the caller's responsibility.
// Tasks never share in-memory state; a later task only sees what an earlier
// one left on the filesystem. Side effects of tasks that already ran are not
// rolled back when a later task fails.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
)

// Task is a unit of work. Inputs are resolved and validated when the task is
// constructed; Launch performs the external invocation and file side effects.
type Task interface {
	Name() string
	Launch(ctx context.Context) error
}

// Runner holds an ordered list of tasks.
type Runner struct {
	tasks []Task
	log   zerolog.Logger
	now   func() time.Time
}

// NewRunner creates an empty runner.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log, now: time.Now}
}

// Add appends tasks to the end of the list.
func (r *Runner) Add(tasks ...Task) {
	r.tasks = append(r.tasks, tasks...)
}

// Tasks returns the tasks in execution order.
func (r *Runner) Tasks() []Task {
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// RunAll launches every task in order. The first error stops the run; the
// remaining tasks are reported as not run. The returned records always cover
// every task.
func (r *Runner) RunAll(ctx context.Context) ([]ports.TaskRecord, error) {
	records := make([]ports.TaskRecord, len(r.tasks))
	for i, t := range r.tasks {
		records[i] = ports.TaskRecord{Name: t.Name(), Status: ports.TaskNotRun}
	}

	for i, t := range r.tasks {
		r.log.Info().Str("task", t.Name()).Int("step", i+1).Int("of", len(r.tasks)).Msg("launching")

		start := r.now()
		err := t.Launch(ctx)
		records[i].DurationMs = r.now().Sub(start).Milliseconds()

		if err != nil {
			records[i].Status = ports.TaskFailed
			records[i].Error = err.Error()
			r.log.Error().Str("task", t.Name()).Err(err).Msg("task failed")
			return records, fmt.Errorf("%s: %w", t.Name(), err)
		}
		records[i].Status = ports.TaskSucceeded
	}
	return records, nil
}
