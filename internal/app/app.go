// Package app wires together all adapters and domain logic.
// It turns a build request into an ordered task list, runs it, and records
// the outcome in the status file and the history ledger.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/moebuild/internal/adapters/ahocorasick"
	"github.com/corey/moebuild/internal/adapters/bbolt"
	"github.com/corey/moebuild/internal/config"
	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/domain/sanitizer"
	"github.com/corey/moebuild/internal/domain/status"
	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/corey/moebuild/internal/fsutil"
	"github.com/corey/moebuild/internal/ports"
	"github.com/corey/moebuild/internal/sdk"
	"github.com/corey/moebuild/internal/tasks"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductType selects the pipeline's final artifact.
type ProductType string

const (
	// ProductApp stops after the native build.
	ProductApp ProductType = "app"
	// ProductIPA also packages the application bundle.
	ProductIPA ProductType = "ipa"
)

// ParseProductType validates a product type name. Empty means ProductApp.
func ParseProductType(s string) (ProductType, error) {
	switch ProductType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProductApp:
		return ProductApp, nil
	case ProductIPA:
		return ProductIPA, nil
	}
	return "", fmt.Errorf("unknown product type %q (want %s or %s)", s, ProductApp, ProductIPA)
}

// Request is one pipeline invocation.
type Request struct {
	ModulePath string
	DexFiles   []string
	Mode       string
	Platform   string
	SourceSet  string

	ProfilePath     string
	SigningIdentity string
	ProductType     string

	SDKRoot   string   // overrides config
	XcodeArgs []string // extra native build arguments
}

// App is the top-level container wiring all components together.
type App struct {
	Config *config.Config
	Runner ports.CommandRunner
	Log    zerolog.Logger
	Out    io.Writer // tool output echoed to the console

	// Injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// New creates an App with the real clock and uuid run ids.
func New(cfg *config.Config, runner ports.CommandRunner, log zerolog.Logger, out io.Writer) *App {
	return &App{
		Config: cfg,
		Runner: runner,
		Log:    log,
		Out:    out,
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

// Plan is a fully resolved pipeline, ready to run.
type Plan struct {
	ID      string
	Started time.Time
	Paths   *Paths
	Mode    variant.Mode
	Target  variant.Target
	Product ProductType

	Runner  *pipeline.Runner
	Native  *tasks.NativeBuild
	Package *tasks.Package // nil unless Product is ProductIPA
}

// Close releases resources staged during planning. Safe to call repeatedly.
func (p *Plan) Close() error {
	if p.Native == nil {
		return nil
	}
	return p.Native.Close()
}

// Plan resolves every input and constructs the tasks in execution order:
// one AOT compile per architecture, UI validation, the native build and,
// for ProductIPA, packaging. Any error wraps pipeline.ErrResolution and
// nothing has been executed.
func (a *App) Plan(req Request, started time.Time) (*Plan, error) {
	if req.ModulePath == "" {
		return nil, pipeline.Resolutionf("module path is required")
	}
	module, err := filepath.Abs(req.ModulePath)
	if err != nil {
		return nil, pipeline.Resolutionf("module path: %v", err)
	}
	if err := fsutil.CheckDir(module); err != nil {
		return nil, pipeline.Resolutionf("module path: %v", err)
	}
	if req.SourceSet == "" {
		return nil, pipeline.Resolutionf("source set is required")
	}
	mode, err := variant.ModeByName(req.Mode)
	if err != nil {
		return nil, pipeline.Resolutionf("%v", err)
	}
	target, err := variant.TargetByPlatform(req.Platform)
	if err != nil {
		return nil, pipeline.Resolutionf("%v", err)
	}
	product, err := ParseProductType(req.ProductType)
	if err != nil {
		return nil, pipeline.Resolutionf("%v", err)
	}
	if product == ProductIPA && (req.ProfilePath == "" || req.SigningIdentity == "") {
		return nil, pipeline.Resolutionf("product type %s requires a provisioning profile and a signing identity", product)
	}

	root := req.SDKRoot
	if root == "" {
		root = a.Config.SDK
	}
	kit, err := sdk.Locate(root, a.Config.MainDexFiles)
	if err != nil {
		return nil, pipeline.Resolutionf("sdk: %v", err)
	}

	matcher, err := ahocorasick.NewMatcher(a.Config.ForbiddenKeywords...)
	if err != nil {
		return nil, pipeline.Resolutionf("forbidden keywords: %v", err)
	}
	scope, err := sanitizer.ParseScope(a.Config.ScanScope)
	if err != nil {
		return nil, pipeline.Resolutionf("%v", err)
	}

	plan := &Plan{
		ID:      a.NewID(),
		Started: started,
		Paths:   NewPaths(module),
		Mode:    mode,
		Target:  target,
		Product: product,
		Runner:  pipeline.NewRunner(a.Log),
	}
	l := plan.Paths.Layout

	for _, arch := range target.Archs() {
		t, err := tasks.NewAOTCompile(tasks.AOTOptions{
			SDK:         kit,
			Layout:      l,
			SourceSet:   req.SourceSet,
			Mode:        mode,
			Target:      target,
			Arch:        arch,
			DexFiles:    req.DexFiles,
			BaseAddress: a.Config.BaseAddress,
			Runner:      a.Runner,
			Log:         a.Log,
			Out:         a.Out,
		})
		if err != nil {
			return nil, err
		}
		plan.Runner.Add(t)
	}

	plan.Runner.Add(tasks.NewUIValidate(tasks.UIValidateOptions{
		Layout:    l,
		SourceSet: req.SourceSet,
		Deadline:  tasks.FixedDeadline(a.Config.UITimeout),
		Runner:    a.Runner,
		Log:       a.Log,
		Out:       a.Out,
	}))

	native, err := tasks.NewNativeBuild(tasks.NativeBuildOptions{
		Layout:          l,
		Mode:            mode,
		Target:          target,
		SigningIdentity: req.SigningIdentity,
		ProfilePath:     req.ProfilePath,
		ProfileDir:      a.Config.ProfileDir,
		Sanitizer: &sanitizer.Sanitizer{
			Start:   a.Config.Section.Start,
			End:     a.Config.Section.End,
			Matcher: matcher,
			Scope:   scope,
		},
		ExtraArgs: req.XcodeArgs,
		Started:   started,
		Runner:    a.Runner,
		Log:       a.Log,
	})
	if err != nil {
		return nil, err
	}
	plan.Native = native
	plan.Runner.Add(native)

	if product == ProductIPA {
		pkg, err := tasks.NewPackage(tasks.PackageOptions{
			Layout:          l,
			AppBundle:       native.AppBundle(),
			OutDir:          native.OutDir(),
			SigningIdentity: req.SigningIdentity,
			ProfilePath:     req.ProfilePath,
			Started:         started,
			Runner:          a.Runner,
			Log:             a.Log,
		})
		if err != nil {
			native.Close()
			return nil, err
		}
		plan.Package = pkg
		plan.Runner.Add(pkg)
	}
	return plan, nil
}

// Run plans and executes the pipeline. The returned record is never nil and
// describes the run even when planning failed. The error is the first
// failure; pipeline.ExitCode maps it to a process status.
func (a *App) Run(ctx context.Context, req Request) (*ports.RunRecord, error) {
	started := a.Now()
	rec := &ports.RunRecord{
		ModulePath:  req.ModulePath,
		StartedAt:   started,
		Mode:        req.Mode,
		Platform:    req.Platform,
		ProductType: req.ProductType,
	}

	plan, err := a.Plan(req, started)
	if err != nil {
		rec.ID = a.NewID()
		a.finish(nil, rec, err)
		return rec, err
	}
	defer plan.Close()

	rec.ID = plan.ID
	rec.ModulePath = plan.Paths.Module
	rec.Mode = plan.Mode.Name()
	rec.Platform = plan.Target.PlatformName()
	rec.ProductType = string(plan.Product)

	a.Log.Info().Str("run", plan.ID).Str("module", plan.Paths.Module).
		Str("variant", rec.Mode+"-"+rec.Platform).Int("tasks", len(plan.Runner.Tasks())).Msg("pipeline start")

	rec.Tasks, err = plan.Runner.RunAll(ctx)
	a.finish(plan.Paths, rec, err)
	return rec, err
}

// finish stamps the outcome and records it. Recording failures are logged.
func (a *App) finish(paths *Paths, rec *ports.RunRecord, err error) {
	rec.DurationMs = a.Now().Sub(rec.StartedAt).Milliseconds()
	rec.ExitCode = pipeline.ExitCode(err)
	if err != nil {
		rec.Error = err.Error()
	}

	ev := a.Log.Info()
	if err != nil {
		ev = a.Log.Error().Err(err)
	}
	ev.Str("run", rec.ID).Int("exit", rec.ExitCode).Int64("ms", rec.DurationMs).Msg("pipeline done")

	if paths == nil {
		// Planning failed; the module may not exist.
		return
	}
	if err := a.record(paths, rec); err != nil {
		a.Log.Warn().Err(err).Msg("run not recorded")
	}
}

func (a *App) record(paths *Paths, rec *ports.RunRecord) error {
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	paths.CleanStale()

	var errs []error
	if err := status.WriteJSON(paths.Status, status.Generate(rec)); err != nil {
		errs = append(errs, fmt.Errorf("status: %w", err))
	}
	if a.Config.History {
		if err := appendHistory(paths.History, rec); err != nil {
			errs = append(errs, fmt.Errorf("history: %w", err))
		}
	}
	return errors.Join(errs...)
}

func appendHistory(path string, rec *ports.RunRecord) error {
	store, err := bbolt.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Append(rec)
}

// OpenHistory opens the ledger of a module. The caller closes the store.
func OpenHistory(modulePath string) (*bbolt.Store, error) {
	paths := NewPaths(modulePath)
	if _, err := os.Stat(paths.History); err != nil {
		return nil, fmt.Errorf("no build history for %s: %w", modulePath, err)
	}
	return bbolt.NewStore(paths.History)
}
