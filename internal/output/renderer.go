package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jisaac01/health-stats/internal/model"
)

// Renderer draws a chart dataset somewhere.
type Renderer interface {
	Render(chart model.Chart) error
}

// FacetLabel strips a "name=" prefix from a facet title, keeping the text
// after the last '='.
func FacetLabel(s string) string {
	if i := strings.LastIndex(s, "="); i >= 0 {
		return s[i+1:]
	}
	return s
}

// scaleMax is the bar length reference: scores run 0-10, but anything
// larger stretches the scale.
func scaleMax(c model.Chart) float64 {
	max := 10.0
	for _, r := range c.Rows {
		max = math.Max(max, r.Value)
	}
	for _, s := range c.Series {
		for _, p := range s.Points {
			max = math.Max(max, p.Value)
		}
	}
	return max
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal bars)
// ---------------------------------------------------------------------------

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Underline(true)
	styleAxis  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true) // gray
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	facetColors = []lipgloss.Color{"39", "208", "42", "196", "171", "220", "45", "214", "141", "203", "118", "250"}
)

// TextRenderer prints one block of horizontal bars per facet.
type TextRenderer struct {
	w     io.Writer
	width int // bar length of the scale maximum, in cells
}

// NewTextRenderer returns a Renderer that writes colorized bars to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout, width: 40}
}

func (r *TextRenderer) Render(c model.Chart) error {
	max := scaleMax(c)

	if c.Mode == model.ModePerField {
		for i, s := range c.Series {
			if err := r.header(s.Field); err != nil {
				return err
			}
			for _, p := range s.Points {
				if err := r.bar(i, p.Timestamp.Format("2006-01-02 15:04:05"), p.Value, max); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i, f := range c.Fields {
		if err := r.header(f); err != nil {
			return err
		}
		for _, row := range c.RowsFor(f) {
			if err := r.bar(i, row.Day.Format("2006-01-02"), row.Value, max); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *TextRenderer) header(field string) error {
	_, err := fmt.Fprintln(r.w, styleTitle.Render(FacetLabel(field)))
	return err
}

func (r *TextRenderer) bar(facet int, label string, v, max float64) error {
	n := int(math.Round(v / max * float64(r.width)))
	if n < 0 {
		n = 0
	}
	style := lipgloss.NewStyle().Foreground(facetColors[facet%len(facetColors)])
	line := fmt.Sprintf("  %s %s %s", styleAxis.Render(label), style.Render(strings.Repeat("█", n)), styleValue.Render(fmt.Sprintf("%.2f", v)))
	_, err := fmt.Fprintln(r.w, line)
	return err
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

type jsonRow struct {
	Day   string  `json:"day"`
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

type jsonPoint struct {
	Timestamp string  `json:"timestamp"`
	Field     string  `json:"field"`
	Value     float64 `json:"value"`
}

// JSONRenderer prints each row (faceted) or sample (per-field) as one JSON
// object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to stdout.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(os.Stdout)}
}

func (r *JSONRenderer) Render(c model.Chart) error {
	if c.Mode == model.ModePerField {
		for _, s := range c.Series {
			for _, p := range s.Points {
				if err := r.enc.Encode(jsonPoint{Timestamp: p.Timestamp.Format("2006-01-02T15:04:05Z07:00"), Field: s.Field, Value: p.Value}); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, row := range c.Rows {
		if err := r.enc.Encode(jsonRow{Day: row.Day.Format("2006-01-02"), Field: row.Field, Value: row.Value}); err != nil {
			return err
		}
	}
	return nil
}
