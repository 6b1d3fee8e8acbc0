package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/moebuild/internal/config"
	"github.com/corey/moebuild/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	quietFlag   bool
	noColorFlag bool
	configFlag  string
)

// log is configured from the persistent flags before any command runs.
var log = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "moebuild",
	Short: "moebuild: MOE executable builder",
	Long: "Builds an iOS executable from compiled dex archives: ahead-of-time compilation per\n" +
		"architecture, UI validation, the native build and optional .ipa packaging.",
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.Level(verboseFlag, quietFlag)
		log = logging.New(os.Stderr, level, !noColorFlag && isStderrTTY())
	},
}

// Execute runs the root command and reports the error, if any, on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorRed, colorReset, err)
		if isDBLockError(err) {
			fmt.Fprintln(os.Stderr, diagnoseDBLock())
		}
	}
	return err
}

// loadConfig layers the config files for a module.
func loadConfig(modulePath string) (*config.Config, error) {
	return config.Load(modulePath, configFlag)
}

// absModule resolves the module path flag, defaulting to the working directory.
func absModule(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Only warnings and errors")
	pf.BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	pf.StringVar(&configFlag, "config", "", "Extra config file layered over user and module config")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}
