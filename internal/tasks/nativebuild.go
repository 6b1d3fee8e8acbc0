package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/domain/sanitizer"
	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/corey/moebuild/internal/fsutil"
	"github.com/corey/moebuild/internal/ports"
	"github.com/rs/zerolog"
)

const projectBundleExt = ".xcodeproj"

// NativeBuildOptions configures the native build task.
type NativeBuildOptions struct {
	Layout *Layout
	Mode   variant.Mode
	Target variant.Target

	// Signing material. Signing settings are passed to the build only when
	// both are set and the profile UUID can be read.
	SigningIdentity string
	ProfilePath     string
	ProfileDir      string // where the build tool looks for installed profiles

	Sanitizer *sanitizer.Sanitizer
	ExtraArgs []string
	Tool      string // default xcodebuild
	Started   time.Time

	Runner ports.CommandRunner
	Log    zerolog.Logger
}

// NativeBuild sanitizes the project descriptor and invokes the native build
// tool for one mode and platform.
type NativeBuild struct {
	layout     *Layout
	mode       variant.Mode
	target     variant.Target
	projectDir string
	project    string // <name>.xcodeproj
	name       string
	identity   string
	profile    string // installed profile used for signing
	staged     string // profile copy owned by this build, removed by Close
	sanitizer  *sanitizer.Sanitizer
	extra      []string
	tool       string
	logPath    string

	runner ports.CommandRunner
	log    zerolog.Logger
}

// NewNativeBuild locates the native project, creates the build output
// directories and installs the provisioning profile.
func NewNativeBuild(opts NativeBuildOptions) (*NativeBuild, error) {
	l := opts.Layout
	log := opts.Log.With().Str("task", "native-build").Logger()

	if err := fsutil.CheckDir(l.Module); err != nil {
		return nil, pipeline.Resolutionf("module path: %v", err)
	}
	if err := fsutil.CheckDir(l.Build); err != nil {
		return nil, pipeline.Resolutionf("build directory: %v", err)
	}
	if opts.Sanitizer == nil {
		return nil, pipeline.Resolutionf("no sanitizer")
	}

	projectDir := ""
	for _, dir := range l.ProjectDirs {
		if fsutil.CheckDir(dir) == nil {
			projectDir = dir
			break
		}
	}
	if projectDir == "" {
		return nil, pipeline.Resolutionf("no native project directory (tried %s)", strings.Join(l.ProjectDirs, ", "))
	}

	found, err := fsutil.FindBreadthFirst(projectDir, func(_ string, d fs.DirEntry) bool {
		return d.IsDir() && strings.HasSuffix(d.Name(), projectBundleExt)
	})
	if err != nil {
		return nil, pipeline.Resolutionf("search %s: %v", projectDir, err)
	}
	if len(found) == 0 {
		return nil, pipeline.Resolutionf("no %s bundle under %s", projectBundleExt, projectDir)
	}
	if len(found) > 1 {
		log.Warn().Strs("candidates", found).Str("using", found[0]).Msg("multiple native projects")
	}
	project := found[0]

	if err := fsutil.MkdirAll(l.Dst, l.Obj, l.Sym); err != nil {
		return nil, pipeline.Resolutionf("build output directories: %v", err)
	}

	t := &NativeBuild{
		layout:     l,
		mode:       opts.Mode,
		target:     opts.Target,
		projectDir: projectDir,
		project:    project,
		name:       strings.TrimSuffix(filepath.Base(project), projectBundleExt),
		identity:   opts.SigningIdentity,
		sanitizer:  opts.Sanitizer,
		extra:      opts.ExtraArgs,
		tool:       opts.Tool,
		logPath:    l.BuildLog("xcodebuild", opts.Started),
		runner:     opts.Runner,
		log:        log,
	}
	if t.tool == "" {
		t.tool = ToolXcodeBuild
	}

	if opts.ProfilePath != "" {
		if err := fsutil.CheckFile(opts.ProfilePath); err != nil {
			return nil, pipeline.Resolutionf("provisioning profile: %v", err)
		}
		installed, copied, err := InstallProfile(opts.ProfilePath, opts.ProfileDir)
		if err != nil {
			return nil, pipeline.Resolutionf("install provisioning profile: %v", err)
		}
		t.profile = installed
		if copied {
			t.staged = installed
		} else {
			log.Debug().Str("profile", installed).Msg("provisioning profile already installed")
		}
	}
	return t, nil
}

func (t *NativeBuild) Name() string { return "native-build" }

// ProjectName is the project bundle name without its extension.
func (t *NativeBuild) ProjectName() string { return t.name }

// Project is the path of the project bundle.
func (t *NativeBuild) Project() string { return t.project }

// OutDir is the root of the native build outputs.
func (t *NativeBuild) OutDir() string { return t.layout.XcodeBuild }

// LogPath is the file the build tool's output is written to.
func (t *NativeBuild) LogPath() string { return t.logPath }

// StagedProfile is the profile copy this build installed, empty once
// removed or when the profile was already installed.
func (t *NativeBuild) StagedProfile() string { return t.staged }

// InstalledProfile is the profile path signing reads from.
func (t *NativeBuild) InstalledProfile() string { return t.profile }

// AppBundle is the application bundle the build produces:
// <sym>/<mode>-<platform>/<name>.app.
func (t *NativeBuild) AppBundle() string {
	return filepath.Join(t.layout.Sym, t.mode.Name()+"-"+t.target.PlatformName(), t.name+".app")
}

// Args returns the build tool arguments. uuid is the provisioning profile
// UUID, empty when signing settings are omitted.
func (t *NativeBuild) Args(uuid string) []string {
	args := []string{
		"-target", t.name,
		"-configuration", t.mode.Name(),
		"-sdk", t.target.PlatformName(),
		"-project", t.project,
	}
	args = append(args, t.extra...)
	args = append(args,
		"DSTROOT="+t.layout.Dst,
		"OBJROOT="+t.layout.Obj,
		"SYMROOT="+t.layout.Sym,
		"SHARED_PRECOMPS_DIR="+t.layout.Sym,
	)
	if uuid != "" && t.identity != "" {
		args = append(args,
			"PROVISIONING_PROFILE="+uuid,
			"CODE_SIGN_IDENTITY="+t.identity,
		)
	}
	return args
}

func (t *NativeBuild) Launch(ctx context.Context) error {
	defer t.Close()

	descriptor, fallback, err := sanitizer.LocateDescriptor(t.projectDir, t.name, t.layout.Module)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pipeline.Resolutionf("no project descriptor for %s", t.name)
		}
		return pipeline.Resolutionf("locate descriptor: %v", err)
	}
	if fallback {
		t.log.Warn().Str("descriptor", descriptor).Msg("descriptor not at conventional location")
	}

	res, err := t.sanitizer.Sanitize(descriptor)
	if err != nil {
		if errors.Is(err, sanitizer.ErrForbidden) {
			return fmt.Errorf("%w: %w", pipeline.ErrSecurity, err)
		}
		return err
	}
	t.log.Info().Str("descriptor", descriptor).Int("removed", res.Removed).Msg("sanitized")

	uuid := t.signingUUID()

	out, err := createToolLog(t.logPath)
	if err != nil {
		return fmt.Errorf("open build log: %w", err)
	}
	defer out.Close(t.log)

	t.log.Info().Str("target", t.name).Str("mode", t.mode.Name()).Str("sdk", t.target.PlatformName()).
		Str("log", t.logPath).Msg("building")
	cmd := ports.Command{Path: t.tool, Args: t.Args(uuid), Dir: t.projectDir}
	return runTool(ctx, t.runner, t.log, cmd, out.Line)
}

// Close removes the installed profile copy. It is safe to call repeatedly.
func (t *NativeBuild) Close() error {
	if t.staged == "" {
		return nil
	}
	err := os.Remove(t.staged)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.log.Warn().Err(err).Str("profile", t.staged).Msg("remove installed profile")
	} else {
		err = nil
	}
	t.staged = ""
	t.profile = ""
	return err
}

func (t *NativeBuild) signingUUID() string {
	if t.profile == "" || t.identity == "" {
		return ""
	}
	uuid, err := ProfileUUID(t.profile)
	if err != nil {
		t.log.Warn().Err(err).Msg("building without signing settings")
		return ""
	}
	return uuid
}
