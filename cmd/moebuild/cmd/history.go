package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/corey/moebuild/internal/app"
	"github.com/spf13/cobra"
)

var (
	historyModule string
	historyLimit  int
	historyPrune  time.Duration
	historyClear  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded pipeline runs",
	Long:  "Lists the most recent pipeline runs of a module, newest first, from build/moe/history.db.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyModule, "module-path", "", "Module root directory (default: current directory)")
	f.IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show; 0 shows all")
	f.DurationVar(&historyPrune, "prune", 0, "Delete runs older than this age, e.g. 720h")
	f.BoolVar(&historyClear, "clear", false, "Delete every recorded run of the module")
}

func runHistory(cmd *cobra.Command, args []string) error {
	module, err := absModule(historyModule)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	store, err := app.OpenHistory(module)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("no recorded runs")
			return nil
		}
		return err
	}
	defer store.Close()

	if historyClear {
		if err := store.DeleteModule(module); err != nil {
			return err
		}
		fmt.Println("history cleared")
		return nil
	}
	if historyPrune > 0 {
		n, err := store.Prune(module, time.Now().Add(-historyPrune))
		if err != nil {
			return err
		}
		log.Info().Int("removed", n).Msg("history pruned")
	}

	runs, err := store.List(module, historyLimit)
	if err != nil {
		return err
	}
	fmt.Print(formatHistory(module, runs, useColor()))
	return nil
}
