package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	fsw "github.com/corey/moebuild/internal/adapters/fsnotify"
	"github.com/corey/moebuild/internal/app"
	"github.com/spf13/cobra"
)

var (
	watchOpts   buildFlags
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever module inputs change",
	Long: "Runs the build pipeline, then runs it again each time the dex archives or UI\n" +
		"resources of the module change. Every rebuild is a full pipeline run. Ctrl-C stops.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchSettle, "settle", app.DefaultSettle, "Quiet period before a rebuild starts")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := watchOpts.newApp(cmd)
	if err != nil {
		return err
	}

	w, err := fsw.NewWatcher()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Watch(ctx, watchOpts.request(), w, watchSettle)
}
