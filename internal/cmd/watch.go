package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jisaac01/health-stats/internal/logging"
	"github.com/jisaac01/health-stats/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [input]",
	Short: "Redraw the chart whenever the log changes",
	Long: `Render the chart, then watch the log file and render again every time
it is written or replaced. Rapid bursts of writes are debounced.

Examples:
  healthplot watch ~/Documents/health_stats.json --format png --open
  healthplot watch health_stats.json --mode per-field --format svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	addChartFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", 0, "wait this long after the last change before redrawing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Format == "json", logging.ParseLevel(cfg.LogLevel))

	// --- Set up context with graceful shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- Initialize watcher ---
	w, err := watcher.New(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	go w.Start(ctx)

	fmt.Fprintf(os.Stderr, "healthplot watching %s\n", cfg.Input)

	// A failed first render is not fatal: the file may appear later.
	if err := renderOnce(cfg, logger); err != nil {
		logger.Error("render failed", "error", err)
	}

	debounce := time.NewTimer(cfg.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\nhealthplot stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Debug("input changed", "path", ev.Path, "op", ev.Op.String())
			debounce.Reset(cfg.Debounce)

		case <-debounce.C:
			if err := renderOnce(cfg, logger); err != nil {
				logger.Error("render failed", "error", err)
			}
		}
	}
}
