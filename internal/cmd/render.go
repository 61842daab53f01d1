package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jisaac01/health-stats/internal/config"
	"github.com/jisaac01/health-stats/internal/logging"
	"github.com/jisaac01/health-stats/internal/output"
	"github.com/jisaac01/health-stats/internal/pipeline"
	"github.com/jisaac01/health-stats/internal/watcher"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [input]",
	Short: "Chart a symptom log once",
	Long: `Read the symptom log and draw it.

Examples:
  healthplot render ~/Documents/health_stats.json
  healthplot render health_stats.json --format png --out health.png --open
  healthplot render "exports/**/health_stats*.json.zst" --mode per-field --format svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	addChartFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

// addChartFlags registers the flags shared by render and watch.
func addChartFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("mode", "m", "", "display mode: faceted, per-field")
	f.StringP("format", "f", "", "output format: text, json, png, svg")
	f.StringP("out", "o", "", "image path for png/svg (default healthplot.<format>)")
	f.String("discovery", "", "field discovery: union, last, canonical")
	f.String("on-bad-line", "", "unparseable JSON line: abort, skip")
	f.Float64("width", 0, "image width in points")
	f.Float64("height", 0, "image height in points (default 180 per facet)")
	f.Bool("open", false, "open the image after writing it")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Format == "json", logging.ParseLevel(cfg.LogLevel))

	return renderOnce(cfg, logger)
}

// renderOnce runs the whole read, reshape and draw sequence.
func renderOnce(cfg config.Config, logger *slog.Logger) error {
	path, err := watcher.Resolve(cfg.Input)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(path, pipeline.Options{
		Mode:      cfg.Mode,
		Discovery: cfg.Discovery,
		Policy:    cfg.OnBadLine,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	logger.Info("chart ready",
		"source", path,
		"mode", res.Chart.Mode,
		"records", res.Read.Records,
		"skipped", res.Read.Skipped,
		"fields", len(res.Chart.Fields),
		"rows", res.Reshape.Rows,
		"days", res.Reshape.Days,
		"dropped", res.Reshape.Dropped,
	)

	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	if err := renderer.Render(res.Chart); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if img, ok := renderer.(*output.ImageRenderer); ok {
		for _, p := range img.Written() {
			logger.Info("wrote chart", "path", p)
			if cfg.Open {
				if err := output.Open(p); err != nil {
					logger.Warn("cannot open viewer", "path", p, "error", err)
				}
			}
		}
	}
	return nil
}

// newRenderer picks the renderer for the configured format.
func newRenderer(cfg config.Config) (output.Renderer, error) {
	switch cfg.Format {
	case "json":
		return output.NewJSONRenderer(), nil
	case "png", "svg":
		return output.NewImageRenderer(cfg.Out, cfg.Format, cfg.Width, cfg.Height)
	default:
		return output.NewTextRenderer(), nil
	}
}
