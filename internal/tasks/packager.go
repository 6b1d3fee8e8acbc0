package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/fsutil"
	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
)

// PackageOptions configures archive packaging of a built application.
type PackageOptions struct {
	Layout    *Layout
	AppBundle string
	OutDir    string

	SigningIdentity string
	ProfilePath     string

	Tool    string // default xcrun
	Started time.Time

	Runner ports.CommandRunner
	Log    zerolog.Logger
}

// Package wraps a built application bundle into a distributable .ipa next
// to the bundle.
type Package struct {
	app     string
	outDir  string
	archive string
	tool    string
	logPath string

	// Signing happened in the native build; these only name the material
	// the bundle was signed with in the log.
	identity string
	profile  string

	runner ports.CommandRunner
	log    zerolog.Logger
}

func NewPackage(opts PackageOptions) (*Package, error) {
	if opts.SigningIdentity == "" || opts.ProfilePath == "" {
		return nil, pipeline.Resolutionf("packaging requires a signing identity and a provisioning profile")
	}
	name := strings.TrimSuffix(filepath.Base(opts.AppBundle), filepath.Ext(opts.AppBundle))
	tool := opts.Tool
	if tool == "" {
		tool = ToolXcrun
	}
	return &Package{
		app:      opts.AppBundle,
		outDir:   opts.OutDir,
		archive:  filepath.Join(filepath.Dir(opts.AppBundle), name+".ipa"),
		identity: opts.SigningIdentity,
		profile:  opts.ProfilePath,
		tool:     tool,
		logPath:  opts.Layout.BuildLog("ipaBuild", opts.Started),
		runner:   opts.Runner,
		log:      opts.Log.With().Str("task", "package").Logger(),
	}, nil
}

func (t *Package) Name() string { return "package" }

// Archive is the .ipa path the task produces.
func (t *Package) Archive() string { return t.archive }

// LogPath is the file the packaging tool's output is written to.
func (t *Package) LogPath() string { return t.logPath }

// Args returns the packaging tool arguments.
func (t *Package) Args() []string {
	return []string{"-sdk", "iphoneos", "PackageApplication", "-v", t.app, "-o", t.archive}
}

func (t *Package) Launch(ctx context.Context) error {
	// The bundle exists only after the native build ran.
	if err := fsutil.CheckDir(t.app); err != nil {
		return pipeline.Resolutionf("application bundle: %v", err)
	}
	if err := fsutil.CheckDir(t.outDir); err != nil {
		return pipeline.Resolutionf("output directory: %v", err)
	}

	out, err := createToolLog(t.logPath)
	if err != nil {
		return fmt.Errorf("open package log: %w", err)
	}
	defer out.Close(t.log)

	t.log.Info().Str("app", t.app).Str("archive", t.archive).Str("identity", t.identity).Str("profile", t.profile).
		Str("log", t.logPath).Msg("packaging")
	cmd := ports.Command{Path: t.tool, Args: t.Args()}
	return runTool(ctx, t.runner, t.log, cmd, out.Line)
}
