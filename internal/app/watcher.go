package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/corey/moebuild/internal/ports"
)

// DefaultSettle is how long the input tree must stay quiet before a rebuild.
const DefaultSettle = 500 * time.Millisecond

// Watch runs the pipeline once, then again every time the module inputs
// change, until ctx is done. Every rebuild runs the full pipeline. Changes
// that arrive while a build is running, or within settle of its end, are
// treated as the build's own writes and dropped. Build failures are logged
// and watching continues.
func (a *App) Watch(ctx context.Context, req Request, w ports.Watcher, settle time.Duration) error {
	mode, err := variant.ModeByName(req.Mode)
	if err != nil {
		return err
	}
	module, err := filepath.Abs(req.ModulePath)
	if err != nil {
		return err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	changes := make(chan string, 1)
	roots := NewPaths(module).WatchRoots(req.SourceSet, mode)
	if err := w.Watch(roots, func(path string) {
		select {
		case changes <- path:
		default: // a rebuild is already pending
		}
	}); err != nil {
		return fmt.Errorf("watch %s: %w", module, err)
	}
	defer w.Stop()

	a.Log.Info().Strs("roots", roots).Msg("watching")
	a.Run(ctx, req)
	idleSince := a.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changes:
			if a.Now().Sub(idleSince) < settle {
				continue
			}
			if !waitQuiet(ctx, changes, settle) {
				return nil
			}
			a.Log.Info().Str("changed", path).Msg("rebuilding")
			a.Run(ctx, req)
			idleSince = a.Now()
		}
	}
}

// waitQuiet blocks until no change arrives for settle. It returns false
// when ctx ends first.
func waitQuiet(ctx context.Context, changes <-chan string, settle time.Duration) bool {
	timer := time.NewTimer(settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-changes:
			timer.Reset(settle)
		case <-timer.C:
			return true
		}
	}
}
