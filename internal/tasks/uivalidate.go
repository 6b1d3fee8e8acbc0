package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
)

// FixedDeadline is the validator's supervision policy: the tool is killed
// once the duration elapses, whether or not it is still doing useful work.
// A killed validator fails the pipeline.
type FixedDeadline time.Duration

// DefaultUIDeadline bounds a single validator run.
const DefaultUIDeadline = FixedDeadline(5 * time.Second)

// UIValidateOptions configures the storyboard validation task.
type UIValidateOptions struct {
	Layout    *Layout
	SourceSet string
	Tool      string // default ibtool
	Deadline  FixedDeadline

	Runner ports.CommandRunner
	Log    zerolog.Logger
	Out    io.Writer
}

// UIValidate runs the interface builder tool over the module's main UI
// definition, rewriting frames in place and reporting problems.
// A module without a UI definition is skipped.
type UIValidate struct {
	definition string
	tool       string
	deadline   FixedDeadline

	runner ports.CommandRunner
	log    zerolog.Logger
	out    io.Writer
}

func NewUIValidate(opts UIValidateOptions) *UIValidate {
	tool := opts.Tool
	if tool == "" {
		tool = ToolIBTool
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = DefaultUIDeadline
	}
	return &UIValidate{
		definition: opts.Layout.UIDefinition(opts.SourceSet),
		tool:       tool,
		deadline:   deadline,
		runner:     opts.Runner,
		log:        opts.Log.With().Str("task", "ui-validate").Logger(),
		out:        opts.Out,
	}
}

func (t *UIValidate) Name() string { return "ui-validate" }

// Definition is the UI definition file the task validates.
func (t *UIValidate) Definition() string { return t.definition }

// Args returns the validator arguments.
func (t *UIValidate) Args() []string {
	return []string{
		t.definition,
		"--write", t.definition,
		"--update-frames",
		"--errors",
		"--warnings",
		"--notices",
	}
}

func (t *UIValidate) Launch(ctx context.Context) error {
	if _, err := os.Stat(t.definition); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.log.Debug().Str("definition", t.definition).Msg("no UI definition, skipping")
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(t.deadline))
	defer cancel()

	t.log.Info().Str("definition", t.definition).Dur("deadline", time.Duration(t.deadline)).Msg("validating")
	cmd := ports.Command{Path: t.tool, Args: t.Args()}
	if err := runTool(ctx, t.runner, t.log, cmd, consoleLines(t.out)); err != nil {
		return fmt.Errorf("validate %s: %w", t.definition, err)
	}
	return nil
}
