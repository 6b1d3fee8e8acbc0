package execrunner

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.CommandRunner = (*Runner)(nil)

func sh(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return path
}

func TestRun_CollectsLines(t *testing.T) {
	r := New(zerolog.Nop())
	var lines []string

	code, err := r.Run(context.Background(), ports.Command{
		Path: sh(t),
		Args: []string{"-c", `echo one; echo two; printf 'partial'`},
	}, func(l string) { lines = append(lines, l) })

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"one", "two", "partial"}, lines)
}

func TestRun_StderrIsCaptured(t *testing.T) {
	r := New(zerolog.Nop())
	var lines []string

	_, err := r.Run(context.Background(), ports.Command{
		Path: sh(t),
		Args: []string{"-c", `echo out; sleep 0.05; echo err 1>&2`},
	}, func(l string) { lines = append(lines, l) })

	require.NoError(t, err)
	assert.Equal(t, []string{"out", "err"}, lines)
}

func TestRun_NonZeroExit(t *testing.T) {
	r := New(zerolog.Nop())
	code, err := r.Run(context.Background(), ports.Command{
		Path: sh(t),
		Args: []string{"-c", "exit 65"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 65, code)
}

func TestRun_DirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := New(zerolog.Nop())
	var lines []string

	_, err := r.Run(context.Background(), ports.Command{
		Path: sh(t),
		Args: []string{"-c", `pwd; echo "$MOE_TEST_VAR"`},
		Dir:  dir,
		Env:  []string{"MOE_TEST_VAR=hello"},
	}, func(l string) { lines = append(lines, l) })

	require.NoError(t, err)
	require.Len(t, lines, 2)
	resolved, _ := filepath.EvalSymlinks(dir)
	gotDir, _ := filepath.EvalSymlinks(lines[0])
	assert.Equal(t, resolved, gotDir)
	assert.Equal(t, "hello", lines[1])
}

func TestRun_DeadlineKills(t *testing.T) {
	r := New(zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	code, err := r.Run(ctx, ports.Command{Path: sh(t), Args: []string{"-c", "exec sleep 10"}}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NotEqual(t, 0, code)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_FinishedBeforeDeadline(t *testing.T) {
	r := New(zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := r.Run(ctx, ports.Command{Path: sh(t), Args: []string{"-c", "true"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRun_MissingBinary(t *testing.T) {
	r := New(zerolog.Nop())
	code, err := r.Run(context.Background(), ports.Command{
		Path: filepath.Join(t.TempDir(), "no-such-tool"),
	}, nil)

	require.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestLineWriter_SplitsAcrossWrites(t *testing.T) {
	var lines []string
	w := newLineWriter(func(l string) { lines = append(lines, l) })

	w.Write([]byte("ab"))
	w.Write([]byte("c\r\nde"))
	w.Write([]byte("f\n\n"))
	w.Flush()
	w.Flush()

	assert.Equal(t, []string{"abc", "def", ""}, lines)
}
