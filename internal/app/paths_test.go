package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("/work/app")
	assert.Equal(t, filepath.Join("/work/app", "build"), p.Build)
	assert.Equal(t, filepath.Join("/work/app", "build", "moe"), p.MOE)
	assert.Equal(t, filepath.Join("/work/app", "build", "logs"), p.Logs)
	assert.Equal(t, filepath.Join("/work/app", "build", "moe", "history.db"), p.History)
	assert.Equal(t, filepath.Join("/work/app", "build", "moe", "last-run.json"), p.Status)
	assert.Equal(t, filepath.Join("/work/app", "build", "moe", "xcodebuild", "dst"), p.Dst)
	assert.Equal(t, filepath.Join("/work/app", "build", "moe", "xcodebuild", "obj"), p.Obj)
	assert.Equal(t, filepath.Join("/work/app", "build", "moe", "xcodebuild", "sym"), p.Sym)
	assert.Equal(t, []string{
		filepath.Join("/work/app", "xcode"),
		filepath.Join("/work/app", "build", "xcode"),
	}, p.ProjectDirs)

	assert.Equal(t, filepath.Join("/work/app", "build", "moe", "main", "Release"), p.DexDir("main", "Release"))
	assert.Equal(t, filepath.Join("/work/app", "build", "main", "xcode", "Release-iphoneos"), p.AOTDir("main", "Release", "iphoneos"))
	assert.Equal(t, filepath.Join("/work/app", "src", "main", "resources", "MainUI.storyboard"), p.UIDefinition("main"))
}

func TestWatchRoots(t *testing.T) {
	p := NewPaths("/work/app")
	assert.Equal(t, []string{
		filepath.Join("/work/app", "build", "moe", "main", "Debug"),
		filepath.Join("/work/app", "src", "main", "resources"),
	}, p.WatchRoots("main", variant.Debug))
}

func TestEnsureDirs(t *testing.T) {
	p := NewPaths(t.TempDir())
	require.NoError(t, p.EnsureDirs())
	assert.DirExists(t, p.MOE)
	// Second call is idempotent.
	require.NoError(t, p.EnsureDirs())
}

func TestCleanStale(t *testing.T) {
	p := NewPaths(t.TempDir())
	require.NoError(t, p.EnsureDirs())
	require.NoError(t, os.WriteFile(filepath.Join(p.MOE, ".last-run-123"), nil, 0644))
	require.NoError(t, os.WriteFile(p.Status, []byte("{}"), 0644))

	assert.Equal(t, 1, p.CleanStale())
	assert.FileExists(t, p.Status)
	assert.Equal(t, 0, p.CleanStale())
}
