package app

import (
	"os"
	"path/filepath"

	"github.com/corey/moebuild/internal/domain/status"
	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/corey/moebuild/internal/fsutil"
	"github.com/corey/moebuild/internal/tasks"
)

// HistoryFile is the bbolt ledger name under build/moe.
const HistoryFile = "history.db"

// Paths extends the task layout with the files moebuild itself owns.
// All fields are pre-computed strings.
type Paths struct {
	*tasks.Layout

	History string // build/moe/history.db
	Status  string // build/moe/last-run.json
}

// NewPaths constructs all resolved paths from a module root.
func NewPaths(modulePath string) *Paths {
	l := tasks.NewLayout(modulePath)
	return &Paths{
		Layout:  l,
		History: filepath.Join(l.MOE, HistoryFile),
		Status:  filepath.Join(l.MOE, status.StatusFile),
	}
}

// EnsureDirs creates the directories holding moebuild's own files. Idempotent.
func (p *Paths) EnsureDirs() error {
	return fsutil.MkdirAll(p.MOE)
}

// WatchRoots are the inputs a rebuild depends on: the caller's dex archives
// and the UI resources. The native project is not watched because the
// sanitizer rewrites its descriptor on every build.
func (p *Paths) WatchRoots(sourceSet string, mode variant.Mode) []string {
	return []string{
		p.DexDir(sourceSet, mode.Name()),
		filepath.Dir(p.UIDefinition(sourceSet)),
	}
}

// CleanStale removes temp files left by an interrupted status write.
func (p *Paths) CleanStale() int {
	matches, _ := filepath.Glob(filepath.Join(p.MOE, ".last-run-*"))
	n := 0
	for _, m := range matches {
		if os.Remove(m) == nil {
			n++
		}
	}
	return n
}
