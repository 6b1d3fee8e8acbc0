package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corey/moebuild/internal/adapters/execrunner"
	"github.com/corey/moebuild/internal/app"
	"github.com/corey/moebuild/internal/config"
	"github.com/corey/moebuild/internal/domain/sanitizer"
	"github.com/corey/moebuild/internal/domain/variant"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// buildFlags are shared by build and watch.
type buildFlags struct {
	modulePath  string
	dexFiles    []string
	mode        string
	platform    string
	sourceSet   string
	profile     string
	identity    string
	productType string
	sdk         string
	uiTimeout   time.Duration
	scanScope   string
	noHistory   bool
	xcodeArgs   []string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.modulePath, "module-path", "", "Module root directory")
	fs.StringSliceVar(&f.dexFiles, "dex-files", nil, "Comma-separated dex archive names under build/moe/<source-set>/<mode>")
	fs.StringVar(&f.mode, "mode", "", "Build mode: Debug or Release")
	fs.StringVar(&f.platform, "platform", "", "Target platform: iphoneos or iphonesimulator")
	fs.StringVar(&f.sourceSet, "source-set", "", "Source set name, e.g. main")
	fs.StringVar(&f.profile, "prov-profile", "", "Provisioning profile path")
	fs.StringVar(&f.identity, "sign-identity", "", "Code signing identity")
	fs.StringVar(&f.productType, "product-type", string(app.ProductApp), "Product: app, or ipa to also package")
	fs.StringVar(&f.sdk, "sdk", "", "MOE SDK root (default: config, then $MOE_SDK_HOME)")
	fs.DurationVar(&f.uiTimeout, "ui-timeout", config.DefaultUITimeout, "Deadline for UI validation")
	fs.StringVar(&f.scanScope, "scan-scope", string(sanitizer.ScopeRemainder), "Forbidden keyword scan: remainder or original")
	fs.BoolVar(&f.noHistory, "no-history", false, "Do not record the run in the build history")
	fs.StringArrayVar(&f.xcodeArgs, "xcodebuild-arg", nil, "Extra argument for the native build (repeatable)")

	for _, name := range []string{"module-path", "dex-files", "mode", "platform", "source-set"} {
		cmd.MarkFlagRequired(name)
	}
}

// validate rejects unknown variant names before any work starts.
func (f *buildFlags) validate() error {
	if _, err := variant.ModeByName(f.mode); err != nil {
		return err
	}
	if _, err := variant.TargetByPlatform(f.platform); err != nil {
		return err
	}
	if _, err := app.ParseProductType(f.productType); err != nil {
		return err
	}
	_, err := sanitizer.ParseScope(f.scanScope)
	return err
}

// config loads the layered config and applies explicitly set flags on top.
func (f *buildFlags) config(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := loadConfig(f.modulePath)
	if err != nil {
		return nil, err
	}
	if fs.Changed("ui-timeout") {
		cfg.UITimeout = f.uiTimeout
	}
	if fs.Changed("scan-scope") {
		cfg.ScanScope = f.scanScope
	}
	if f.noHistory {
		cfg.History = false
	}
	return cfg, cfg.Validate()
}

func (f *buildFlags) request() app.Request {
	return app.Request{
		ModulePath:      f.modulePath,
		DexFiles:        f.dexFiles,
		Mode:            f.mode,
		Platform:        f.platform,
		SourceSet:       f.sourceSet,
		ProfilePath:     f.profile,
		SigningIdentity: f.identity,
		ProductType:     f.productType,
		SDKRoot:         f.sdk,
		XcodeArgs:       f.xcodeArgs,
	}
}

// newApp wires the pipeline with the real process runner.
func (f *buildFlags) newApp(cmd *cobra.Command) (*app.App, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	// Past this point failures are not usage errors.
	cmd.SilenceUsage = true

	cfg, err := f.config(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return app.New(cfg, execrunner.New(log), log, os.Stdout), nil
}

var buildOpts buildFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the build pipeline once",
	Long: "Compiles dex archives ahead of time for every architecture of the platform, validates\n" +
		"the main storyboard, sanitizes and builds the native project, and with --product-type ipa\n" +
		"packages the application. Exits with the failing tool's exit code.",
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildOpts.register(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := buildOpts.newApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := a.Run(ctx, buildOpts.request())
	if !quietFlag {
		fmt.Print(formatRun(rec, useColor()))
	}
	return err
}
