package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

// startWatcher watches roots and returns the callback channel.
func startWatcher(t *testing.T, roots ...string) (*Watcher, chan string) {
	t.Helper()
	w, err := NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 32)
	require.NoError(t, w.Watch(roots, func(path string) {
		changed <- path
	}))
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(src, []byte("class Main {}"), 0644))

	_, changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(src, []byte("class Main { }"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, src, path)
}

func TestWatcher_MultipleRoots(t *testing.T) {
	src := t.TempDir()
	xcode := t.TempDir()
	_, changed := startWatcher(t, src, xcode)

	desc := filepath.Join(xcode, "project.pbxproj")
	require.NoError(t, os.WriteFile(desc, []byte("{}"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, desc, path)
}

func TestWatcher_SkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, filepath.Join(dir, "absent"), dir)

	f := filepath.Join(dir, "a.java")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	_, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
}

func TestWatcher_NoRootsIsError(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch([]string{filepath.Join(t.TempDir(), "absent")}, func(string) {})
	assert.ErrorIs(t, err, ErrNoRoots)
}

func TestWatcher_DetectsNewFileInNewDir(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, dir)

	sub := filepath.Join(dir, "resources")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)
	sb := filepath.Join(sub, "MainUI.storyboard")
	require.NoError(t, os.WriteFile(sb, []byte("<document/>"), 0644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-changed:
			if p == sb {
				return
			}
		case <-deadline:
			t.Fatal("expected callback for file in new directory")
		}
	}
}

func TestWatcher_IgnoresBuildOutputsAndNoise(t *testing.T) {
	dir := t.TempDir()
	build := filepath.Join(dir, "build", "logs")
	require.NoError(t, os.MkdirAll(build, 0755))
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0755))

	_, changed := startWatcher(t, dir)

	os.WriteFile(filepath.Join(build, "xcodebuild.log"), []byte("out"), 0644)
	os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte{0}, 0644)
	os.WriteFile(filepath.Join(dir, "Main.java.swp"), []byte{0}, 0644)

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "ignored paths must not trigger callbacks")

	src := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(src, []byte("class Main {}"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, src, path)
}

func TestWatcher_IgnoreRulesAreRootRelative(t *testing.T) {
	// A module living under a directory called build is still watched.
	root := filepath.Join(t.TempDir(), "build", "app")
	require.NoError(t, os.MkdirAll(root, 0755))
	_, changed := startWatcher(t, root)

	src := filepath.Join(root, "Main.java")
	require.NoError(t, os.WriteFile(src, []byte("class Main {}"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, src, path)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher()
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0
	require.NoError(t, w.Watch([]string{dir}, func(string) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "second Stop is a no-op")

	os.WriteFile(filepath.Join(dir, "after_stop.java"), []byte("x"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestWatcher_ChmodIsNotAChange(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "classes.jar")
	require.NoError(t, os.WriteFile(jar, []byte("PK"), 0644))
	_, changed := startWatcher(t, dir)

	require.NoError(t, os.Chmod(jar, 0600))
	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok)
}

func TestShouldIgnorePath(t *testing.T) {
	assert.True(t, shouldIgnorePath(filepath.Join("build", "moe", "x.oat")))
	assert.True(t, shouldIgnorePath(filepath.Join("xcode", "App.xcodeproj", "xcuserdata", "u.xcuserdatad")))
	assert.True(t, shouldIgnorePath("notes.txt~"))
	assert.False(t, shouldIgnorePath(filepath.Join("src", "main", "java", "Main.java")))
	assert.False(t, shouldIgnorePath(filepath.Join("xcode", "App.xcodeproj", "project.pbxproj")))
}
