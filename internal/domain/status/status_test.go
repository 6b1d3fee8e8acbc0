package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/moebuild/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *ports.RunRecord {
	return &ports.RunRecord{
		ID:          "0b6f3c1e-8d2a-4c55-9a61-2f0e7d4b9c10",
		ModulePath:  "/work/app",
		StartedAt:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		DurationMs:  5400,
		Mode:        "Release",
		Platform:    "iphoneos",
		ProductType: "ipa",
		Tasks: []ports.TaskRecord{
			{Name: "aot-compile[armv7]", Status: ports.TaskSucceeded, DurationMs: 1200},
			{Name: "aot-compile[arm64]", Status: ports.TaskSucceeded, DurationMs: 1300},
			{Name: "ui-validate", Status: ports.TaskSucceeded, DurationMs: 10},
			{Name: "native-build", Status: ports.TaskFailed, DurationMs: 2890, Error: "xcodebuild exited with code 65"},
			{Name: "package", Status: ports.TaskNotRun},
		},
		ExitCode: 65,
		Error:    "native-build: xcodebuild exited with code 65",
	}
}

func TestGenerate_Failed(t *testing.T) {
	data := Generate(sampleRun())
	assert.False(t, data.Succeeded)
	assert.Equal(t, 65, data.ExitCode)
	assert.Equal(t, "native-build", data.FailedTask)
	assert.Equal(t, "3/5 tasks ok", data.Summary)
	assert.Equal(t, "Release-iphoneos (ipa)", data.Variant)
	assert.Len(t, data.Tasks, 5)
}

func TestGenerate_Succeeded(t *testing.T) {
	rec := sampleRun()
	rec.Tasks = rec.Tasks[:3]
	rec.ExitCode = 0
	rec.Error = ""

	data := Generate(rec)
	assert.True(t, data.Succeeded)
	assert.Empty(t, data.FailedTask)
	assert.Equal(t, "3/3 tasks ok", data.Summary)
}

func TestGenerate_NoTasks(t *testing.T) {
	data := Generate(&ports.RunRecord{ID: "x", ModulePath: "/m", ExitCode: 1, Error: "resolution failed: module path"})
	assert.False(t, data.Succeeded)
	assert.Equal(t, "0/0 tasks ok", data.Summary)
}

func TestWriteReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StatusFile)

	want := Generate(sampleRun())
	require.NoError(t, WriteJSON(path, want))

	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, want.Tasks, got.Tasks)
	assert.Equal(t, want.Summary, got.Summary)

	// Overwrite leaves no temp files behind.
	require.NoError(t, WriteJSON(path, want))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), StatusFile)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err := ReadJSON(path)
	assert.Error(t, err)

	_, err = ReadJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
