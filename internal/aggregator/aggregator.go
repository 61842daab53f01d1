package aggregator

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jisaac01/health-stats/internal/model"
	"github.com/jisaac01/health-stats/internal/parser"
	"github.com/jisaac01/health-stats/internal/schema"
)

// Stats holds a snapshot of what the last reshape did.
type Stats struct {
	Records int `json:"records"`
	Fields  int `json:"fields"`
	Cells   int `json:"cells"`   // melted cells kept
	Dropped int `json:"dropped"` // cells dropped as missing or non-numeric
	Rows    int `json:"rows"`
	Days    int `json:"days"`
}

// Aggregator reshapes records into long-form rows or per-field series.
type Aggregator struct {
	schema *schema.Schema
	source string
	logger *slog.Logger
	stats  Stats
}

// New creates an Aggregator over the fields of s. source names the input in
// parse errors.
func New(s *schema.Schema, source string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{schema: s, source: source, logger: logger}
}

// Snapshot returns the current stats.
func (a *Aggregator) Snapshot() Stats {
	return a.stats
}

// Coerce parses a raw score. Empty, non-numeric and non-finite values are
// rejected.
func Coerce(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Melt pivots each record into one cell per schema field, tagged with the
// record's calendar day. Timestamp is never a value. Missing and non-numeric
// values are dropped; a malformed Timestamp is fatal.
func (a *Aggregator) Melt(records []model.Record) ([]model.Cell, error) {
	fields := a.schema.Fields()
	cells := make([]model.Cell, 0, len(records)*len(fields))

	for _, rec := range records {
		ts, err := parser.Timestamp(rec, a.source)
		if err != nil {
			return nil, err
		}
		day := parser.Day(ts)

		for _, f := range fields {
			raw, ok := rec.Value(f)
			if !ok {
				a.drop(rec, f, "missing", "")
				continue
			}
			v, ok := Coerce(raw)
			if !ok {
				a.drop(rec, f, "not numeric", raw)
				continue
			}
			cells = append(cells, model.Cell{Day: day, Field: f, Value: v})
		}
	}

	a.stats.Records = len(records)
	a.stats.Fields = len(fields)
	a.stats.Cells = len(cells)
	return cells, nil
}

// Faceted melts and aggregates records into daily means. The returned field
// list holds only fields that produced at least one row, in display order.
func (a *Aggregator) Faceted(records []model.Record) ([]model.Row, []string, error) {
	cells, err := a.Melt(records)
	if err != nil {
		return nil, nil, err
	}
	rows := Aggregate(cells, a.schema)

	days := make(map[int64]bool)
	present := make(map[string]bool)
	for _, r := range rows {
		days[r.Day.Unix()] = true
		present[r.Field] = true
	}
	var fields []string
	for _, f := range a.schema.Fields() {
		if present[f] {
			fields = append(fields, f)
		}
	}

	a.stats.Rows = len(rows)
	a.stats.Days = len(days)
	return rows, fields, nil
}

// GroupByKey builds one series per schema field from every record in input
// order, keeping the full timestamp. A record without the field contributes
// a zero sample; a present but non-numeric value is dropped.
func (a *Aggregator) GroupByKey(records []model.Record) ([]model.Series, error) {
	fields := a.schema.Fields()
	series := make([]model.Series, len(fields))
	for i, f := range fields {
		series[i] = model.Series{Field: f, Points: make([]model.Point, 0, len(records))}
	}

	days := make(map[int64]bool)
	for _, rec := range records {
		ts, err := parser.Timestamp(rec, a.source)
		if err != nil {
			return nil, err
		}
		days[parser.Day(ts).Unix()] = true

		for i, f := range fields {
			var v float64
			if raw, ok := rec.Value(f); ok {
				var valid bool
				if v, valid = Coerce(raw); !valid {
					a.drop(rec, f, "not numeric", raw)
					continue
				}
			}
			series[i].Points = append(series[i].Points, model.Point{Timestamp: ts, Value: v})
			a.stats.Cells++
		}
	}

	a.stats.Records = len(records)
	a.stats.Fields = len(fields)
	a.stats.Days = len(days)
	return series, nil
}

// drop records a data-quality condition. It never fails the run.
func (a *Aggregator) drop(rec model.Record, field, reason, raw string) {
	a.stats.Dropped++
	a.logger.Debug("dropping cell", "line", rec.Line, "field", field, "reason", reason, "value", raw)
}

type groupKey struct {
	day   int64
	field string
}

type group struct {
	day   time.Time
	sum   float64
	count int
}

// Aggregate groups cells by (day, field) and computes the arithmetic mean of
// each group. Rows are sorted by day, then by the display order of s; fields
// unknown to s sort last by name.
func Aggregate(cells []model.Cell, s *schema.Schema) []model.Row {
	groups := make(map[groupKey]*group)
	for _, c := range cells {
		k := groupKey{day: c.Day.Unix(), field: c.Field}
		g, ok := groups[k]
		if !ok {
			g = &group{day: c.Day}
			groups[k] = g
		}
		g.sum += c.Value
		g.count++
	}

	rows := make([]model.Row, 0, len(groups))
	for k, g := range groups {
		rows = append(rows, model.Row{Day: g.day, Field: k.field, Value: g.sum / float64(g.count)})
	}

	rank := func(f string) int {
		if s == nil {
			return -1
		}
		if r := s.Rank(f); r >= 0 {
			return r
		}
		return s.Len()
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Day.Equal(rows[j].Day) {
			return rows[i].Day.Before(rows[j].Day)
		}
		ri, rj := rank(rows[i].Field), rank(rows[j].Field)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Field < rows[j].Field
	})
	return rows
}

// Cells turns rows back into cells, one per row.
func Cells(rows []model.Row) []model.Cell {
	out := make([]model.Cell, len(rows))
	for i, r := range rows {
		out[i] = model.Cell{Day: r.Day, Field: r.Field, Value: r.Value}
	}
	return out
}
