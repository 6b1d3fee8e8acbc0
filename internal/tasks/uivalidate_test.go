package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIValidate_SkipsWithoutDefinition(t *testing.T) {
	runner := &fakeRunner{}
	task := NewUIValidate(UIValidateOptions{Layout: newModule(t), SourceSet: "main", Runner: runner, Log: discard()})

	require.NoError(t, task.Launch(context.Background()))
	assert.Empty(t, runner.Calls())
}

func TestUIValidate_Args(t *testing.T) {
	l := newModule(t)
	writeFile(t, l.UIDefinition("main"), "<document/>")
	runner := &fakeRunner{}
	task := NewUIValidate(UIValidateOptions{Layout: l, SourceSet: "main", Runner: runner, Log: discard()})

	require.NoError(t, task.Launch(context.Background()))
	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ToolIBTool, calls[0].Path)
	sb := l.UIDefinition("main")
	assert.Equal(t, []string{sb, "--write", sb, "--update-frames", "--errors", "--warnings", "--notices"}, calls[0].Args)
}

func TestUIValidate_AppliesDeadline(t *testing.T) {
	l := newModule(t)
	writeFile(t, l.UIDefinition("main"), "<document/>")

	var remaining time.Duration
	runner := &fakeRunner{hook: func(ctx context.Context, _ ports.Command) (int, error) {
		dl, ok := ctx.Deadline()
		require.True(t, ok)
		remaining = time.Until(dl)
		return 0, nil
	}}
	task := NewUIValidate(UIValidateOptions{Layout: l, SourceSet: "main", Runner: runner, Log: discard(),
		Deadline: FixedDeadline(2 * time.Second)})

	require.NoError(t, task.Launch(context.Background()))
	assert.InDelta(t, float64(2*time.Second), float64(remaining), float64(500*time.Millisecond))
}

func TestUIValidate_KilledAtDeadlineIsFatal(t *testing.T) {
	l := newModule(t)
	writeFile(t, l.UIDefinition("main"), "<document/>")
	runner := &fakeRunner{hook: func(ctx context.Context, cmd ports.Command) (int, error) {
		<-ctx.Done()
		return -1, fmt.Errorf("%s killed: %w", cmd.Path, ctx.Err())
	}}
	task := NewUIValidate(UIValidateOptions{Layout: l, SourceSet: "main", Runner: runner, Log: discard(),
		Deadline: FixedDeadline(20 * time.Millisecond)})

	err := task.Launch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrDeadline)
	assert.ErrorIs(t, err, pipeline.ErrToolFailed)
	assert.Equal(t, 1, pipeline.ExitCode(err))
}

func TestUIValidate_NonZeroExitFails(t *testing.T) {
	l := newModule(t)
	writeFile(t, l.UIDefinition("main"), "<document/>")
	task := NewUIValidate(UIValidateOptions{Layout: l, SourceSet: "main", Runner: &fakeRunner{code: 1}, Log: discard()})

	err := task.Launch(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrToolFailed)
	assert.NotErrorIs(t, err, pipeline.ErrDeadline)
}
