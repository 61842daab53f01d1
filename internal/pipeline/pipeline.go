package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/jisaac01/health-stats/internal/aggregator"
	"github.com/jisaac01/health-stats/internal/model"
	"github.com/jisaac01/health-stats/internal/reader"
	"github.com/jisaac01/health-stats/internal/schema"
)

// Options controls one run of the pipeline.
type Options struct {
	Mode      model.Mode
	Discovery schema.Strategy
	Policy    reader.Policy
	Logger    *slog.Logger
}

// Result is the chart dataset plus what each stage did to produce it.
type Result struct {
	Chart   model.Chart      `json:"chart"`
	Read    reader.Stats     `json:"read"`
	Reshape aggregator.Stats `json:"reshape"`
}

// Run reads path and reshapes its records into a chart dataset.
func Run(path string, opts Options) (Result, error) {
	records, rs, err := reader.Read(path, reader.Options{Policy: opts.Policy, Logger: opts.Logger})
	if err != nil {
		return Result{}, err
	}

	res, err := Build(records, path, opts)
	if err != nil {
		return Result{}, err
	}
	res.Read = rs
	return res, nil
}

// Build reshapes already-read records. source names the input in errors.
func Build(records []model.Record, source string, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s, err := schema.Discover(records, opts.Discovery)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", source, err)
	}
	logger.Debug("discovered fields", "strategy", opts.Discovery, "fields", s.Fields())

	agg := aggregator.New(s, source, logger)
	chart := model.Chart{Mode: opts.Mode, Source: source}

	switch opts.Mode {
	case model.ModePerField:
		series, err := agg.GroupByKey(records)
		if err != nil {
			return Result{}, err
		}
		chart.Fields = s.Fields()
		chart.Series = series

	case model.ModeFaceted, "":
		rows, fields, err := agg.Faceted(records)
		if err != nil {
			return Result{}, err
		}
		chart.Mode = model.ModeFaceted
		chart.Fields = fields
		chart.Rows = rows

	default:
		return Result{}, fmt.Errorf("unknown mode %q", opts.Mode)
	}

	return Result{Chart: chart, Reshape: agg.Snapshot()}, nil
}
