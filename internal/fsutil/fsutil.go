// Package fsutil holds the filesystem checks and searches shared by the
// build tasks and the project sanitizer.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Default permission modes for created directories and files.
const (
	DirMode  os.FileMode = 0755
	FileMode os.FileMode = 0644
)

// CheckFile returns an error unless path exists and is a regular file.
func CheckFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, want a file", path)
	}
	return nil
}

// CheckDir returns an error unless path exists and is a directory.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// MkdirAll creates every directory in dirs.
func MkdirAll(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, DirMode); err != nil {
			return err
		}
	}
	return nil
}

// FindBreadthFirst walks root level by level and returns the paths of every
// entry accepted by match. Within a level, entries are visited in lexical
// order, so the result is stable across filesystems. Matched directories are
// not descended into. Unreadable subdirectories are skipped.
func FindBreadthFirst(root string, match func(path string, d fs.DirEntry) bool) ([]string, error) {
	if err := CheckDir(root); err != nil {
		return nil, err
	}

	var found []string
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == root {
				return nil, err
			}
			continue
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if match(path, e) {
				found = append(found, path)
				continue
			}
			if e.IsDir() {
				queue = append(queue, path)
			}
		}
	}
	return found, nil
}
