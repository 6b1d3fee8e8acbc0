package cmd

import (
	"fmt"

	"github.com/corey/moebuild/internal/app"
	"github.com/corey/moebuild/internal/config"
	"github.com/spf13/cobra"
)

var configModule string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Prints the effective configuration after layering, the files it came from, and the module's build paths.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configModule, "module-path", "", "Module root directory (default: current directory)")
}

func runConfig(cmd *cobra.Command, args []string) error {
	module, err := absModule(configModule)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(module)
	if err != nil {
		return err
	}
	body, err := cfg.YAML()
	if err != nil {
		return err
	}
	paths := app.NewPaths(module)

	bold, reset := colorOn(colorBold), colorOn(colorReset)
	fmt.Printf("%smoebuild config%s\n", bold, reset)
	fmt.Printf("  Module:     %s\n", module)
	fmt.Printf("  User file:  %s\n", config.UserPath())
	if len(cfg.Sources) == 0 {
		fmt.Println("  Sources:    (defaults only)")
	}
	for _, src := range cfg.Sources {
		fmt.Printf("  Source:     %s\n", src)
	}
	fmt.Printf("  Logs:       %s\n", paths.Logs)
	fmt.Printf("  History:    %s\n", paths.History)
	fmt.Printf("  Status:     %s\n", paths.Status)
	fmt.Println()
	fmt.Print(body)
	return nil
}
