// Package fsnotify implements ports.Watcher on github.com/fsnotify/fsnotify.
// It watches a module's input directories recursively and reports changed
// files, skipping build outputs, VCS metadata and editor scratch files.
// Debouncing is left to the caller, which knows when a rebuild is running.
package fsnotify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/corey/moebuild/internal/ports"
	"github.com/fsnotify/fsnotify"
)

var _ ports.Watcher = (*Watcher)(nil)

// ErrNoRoots is returned by Watch when none of the roots is a directory.
var ErrNoRoots = errors.New("no watchable directories")

// skipDirs are never descended into. build/ holds every pipeline output.
var skipDirs = map[string]bool{
	".git":         true,
	".gradle":      true,
	".idea":        true,
	".vscode":      true,
	"build":        true,
	"DerivedData":  true,
	"xcuserdata":   true,
	"node_modules": true,
}

// noiseSuffixes mark files that never feed a build.
var noiseSuffixes = []string{".DS_Store", ".swp", ".swx", "~", ".tmp", ".o", ".dylib"}

// changeOps are the operations that can alter a build input. Chmod alone
// does not.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher reports changes below a set of root directories.
type Watcher struct {
	fw    *fsnotify.Watcher
	roots []string

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher. Nothing is watched until Watch.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, done: make(chan struct{})}, nil
}

// Watch adds every directory below each root and starts delivering changes
// to onChange from a background goroutine. Roots that do not exist are
// skipped; ErrNoRoots is returned if that leaves nothing to watch.
func (w *Watcher) Watch(roots []string, onChange func(filePath string)) error {
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		if err := w.addTree(abs); err != nil {
			return fmt.Errorf("watch %s: %w", abs, err)
		}
		w.roots = append(w.roots, abs)
	}
	if len(w.roots) == 0 {
		return ErrNoRoots
	}

	w.wg.Add(1)
	go w.loop(onChange)
	return nil
}

func (w *Watcher) loop(onChange func(string)) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.follow(event.Name)
			}
			if event.Op&changeOps == 0 || w.ignored(event.Name) {
				continue
			}
			select {
			case <-w.done:
				return
			default:
				onChange(event.Name)
			}
		case _, ok := <-w.fw.Errors:
			// Overflow and similar errors are not actionable here; the next
			// event still triggers a full rebuild.
			if !ok {
				return
			}
		}
	}
}

// follow starts watching a directory created under a root.
func (w *Watcher) follow(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignored(path) {
		return
	}
	_ = w.addTree(path)
}

// addTree adds root and every directory below it that is not skipped.
// Unreadable subdirectories are left out.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

// Stop ends monitoring. When it returns no further onChange call is made.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}

// ignored applies the skip rules to path relative to its root, so a module
// that itself lives below a directory named build is still watched.
func (w *Watcher) ignored(path string) bool {
	rel := path
	for _, root := range w.roots {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
			break
		}
	}
	return shouldIgnorePath(rel)
}

// shouldIgnorePath reports whether a root-relative path is noise.
func shouldIgnorePath(rel string) bool {
	base := filepath.Base(rel)
	for _, suffix := range noiseSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if skipDirs[part] {
			return true
		}
	}
	return false
}
