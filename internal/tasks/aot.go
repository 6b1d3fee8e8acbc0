package tasks

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corey/moebuild/internal/domain/pipeline"
	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/corey/moebuild/internal/fsutil"
	"github.com/corey/moebuild/internal/ports"
	"github.com/corey/moebuild/internal/sdk"
	"github.com/rs/zerolog"
)

// AOTOptions configures an ahead-of-time compile for one architecture.
type AOTOptions struct {
	SDK       *sdk.SDK
	Layout    *Layout
	SourceSet string
	Mode      variant.Mode
	Target    variant.Target
	Arch      variant.Arch

	// DexFiles names the caller's archives under the dex directory,
	// without the .jar extension.
	DexFiles []string

	// BaseAddress resolves the image base for an architecture family.
	// Nil uses variant.BaseAddress.
	BaseAddress func(family string) (uint64, error)

	Runner ports.CommandRunner
	Log    zerolog.Logger
	Out    io.Writer // tool output; nil discards
}

// AOTCompile runs dex2oat for one architecture, producing <arch>.art and
// <arch>.oat in the output directory.
type AOTCompile struct {
	arch      variant.Arch
	base      uint64
	compiler  string
	preloaded string
	inputs    []string
	outDir    string
	image     string
	oat       string

	runner ports.CommandRunner
	log    zerolog.Logger
	out    io.Writer
}

// NewAOTCompile resolves and validates every input and creates the output
// directory.
func NewAOTCompile(opts AOTOptions) (*AOTCompile, error) {
	if opts.SDK == nil {
		return nil, pipeline.Resolutionf("no SDK")
	}
	if err := fsutil.CheckDir(opts.Layout.Module); err != nil {
		return nil, pipeline.Resolutionf("module path: %v", err)
	}
	if err := fsutil.CheckFile(opts.SDK.Dex2Oat); err != nil {
		return nil, pipeline.Resolutionf("dex2oat: %v", err)
	}
	if err := fsutil.CheckFile(opts.SDK.PreloadedClasses); err != nil {
		return nil, pipeline.Resolutionf("preloaded classes: %v", err)
	}

	baseOf := opts.BaseAddress
	if baseOf == nil {
		baseOf = variant.BaseAddress
	}
	base, err := baseOf(opts.Arch.Family())
	if err != nil {
		return nil, pipeline.Resolutionf("%v", err)
	}

	// Caller archives first, SDK main archives after.
	dexDir := opts.Layout.DexDir(opts.SourceSet, opts.Mode.Name())
	inputs := make([]string, 0, len(opts.DexFiles)+len(opts.SDK.MainDexFiles))
	for _, name := range opts.DexFiles {
		inputs = append(inputs, filepath.Join(dexDir, name+".jar"))
	}
	inputs = append(inputs, opts.SDK.MainDexFiles...)
	if len(inputs) == 0 {
		return nil, pipeline.Resolutionf("no dex inputs")
	}
	for _, in := range inputs {
		if err := fsutil.CheckFile(in); err != nil {
			return nil, pipeline.Resolutionf("dex input: %v", err)
		}
	}

	outDir := opts.Layout.AOTDir(opts.SourceSet, opts.Mode.Name(), opts.Target.PlatformName())
	if err := fsutil.MkdirAll(outDir); err != nil {
		return nil, pipeline.Resolutionf("output directory: %v", err)
	}

	name := opts.Arch.Name()
	return &AOTCompile{
		arch:      opts.Arch,
		base:      base,
		compiler:  opts.SDK.Dex2Oat,
		preloaded: opts.SDK.PreloadedClasses,
		inputs:    inputs,
		outDir:    outDir,
		image:     filepath.Join(outDir, name+".art"),
		oat:       filepath.Join(outDir, name+".oat"),
		runner:    opts.Runner,
		log:       opts.Log.With().Str("task", "aot-compile").Str("arch", name).Logger(),
		out:       opts.Out,
	}, nil
}

func (t *AOTCompile) Name() string { return "aot-compile[" + t.arch.Name() + "]" }

// Inputs returns the dex archives in the order they are passed to the compiler.
func (t *AOTCompile) Inputs() []string { return append([]string(nil), t.inputs...) }

// Image is the path of the produced .art file.
func (t *AOTCompile) Image() string { return t.image }

// Oat is the path of the produced .oat file.
func (t *AOTCompile) Oat() string { return t.oat }

// Base is the image base address.
func (t *AOTCompile) Base() uint64 { return t.base }

// Args returns the compiler arguments.
func (t *AOTCompile) Args() []string {
	return []string{
		"--instruction-set=" + t.arch.Family(),
		"--base=0x" + strconv.FormatUint(t.base, 16),
		"--compiler-backend=Quick",
		"--image=" + t.image,
		"--image-classes=" + t.preloaded,
		"--oat-file=" + t.oat,
		"--dex-file=" + strings.Join(t.inputs, ":"),
	}
}

func (t *AOTCompile) Launch(ctx context.Context) error {
	t.log.Info().Str("oat", t.oat).Msg("compiling")
	cmd := ports.Command{Path: t.compiler, Args: t.Args(), Dir: t.outDir}
	if err := runTool(ctx, t.runner, t.log, cmd, consoleLines(t.out)); err != nil {
		return fmt.Errorf("dex2oat %s: %w", t.arch.Name(), err)
	}
	return nil
}
