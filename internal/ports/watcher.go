package ports

// Watcher monitors module input directories and triggers pipeline re-runs.
// The adapter (fsnotify) must filter out editor noise and build outputs
// before invoking onChange. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring every directory in roots recursively. onChange
	// is called with the absolute path of each changed file. The callback may
	// be invoked from any goroutine. Missing roots are skipped; an error is
	// returned only when no root could be watched.
	Watch(roots []string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
