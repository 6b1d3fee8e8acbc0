package sdk

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_Defaults(t *testing.T) {
	root := t.TempDir()
	s, err := Locate(root, nil)
	require.NoError(t, err)

	assert.Equal(t, root, s.Root)
	assert.Equal(t, filepath.Join(root, "tools", "dex2oat"), s.Dex2Oat)
	assert.Equal(t, filepath.Join(root, "tools", "preloaded-classes"), s.PreloadedClasses)
	assert.Equal(t, []string{
		filepath.Join(root, "sdk", "moe-core.dex"),
		filepath.Join(root, "sdk", "moe-ios-retro.jar"),
	}, s.MainDexFiles)
}

func TestLocate_MainDexOverride(t *testing.T) {
	root := t.TempDir()
	s, err := Locate(root, []string{"m.jar", "/abs/x.dex"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "sdk", "m.jar"), "/abs/x.dex"}, s.MainDexFiles)
}

func TestLocate_FromEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvHome, root)
	s, err := Locate("", nil)
	require.NoError(t, err)
	assert.Equal(t, root, s.Root)
}

func TestLocate_NotConfigured(t *testing.T) {
	t.Setenv(EnvHome, "")
	_, err := Locate("", nil)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestLocate_MissingRoot(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
