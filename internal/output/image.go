package output

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jisaac01/health-stats/internal/model"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	facetHeight  = 180 // points per facet when no height is configured
	seriesHeight = 320 // points per per-field chart when no height is configured
)

// ErrEmptyChart is returned when there is no facet to draw.
var ErrEmptyChart = errors.New("chart has no fields to draw")

var plotColors = []color.Color{
	colornames.Steelblue,
	colornames.Darkorange,
	colornames.Seagreen,
	colornames.Crimson,
	colornames.Mediumpurple,
	colornames.Sienna,
	colornames.Hotpink,
	colornames.Gray,
	colornames.Olive,
	colornames.Darkturquoise,
	colornames.Royalblue,
	colornames.Goldenrod,
}

// ImageRenderer writes the chart as PNG or SVG. Faceted charts become one
// image with the facets stacked in a single column; per-field charts become
// one image per field next to the configured path.
type ImageRenderer struct {
	path    string
	format  string
	width   vg.Length
	height  vg.Length
	written []string
}

// NewImageRenderer returns a renderer writing to path. width and height are
// in points; a zero height is derived from the number of facets.
func NewImageRenderer(path, format string, width, height float64) (*ImageRenderer, error) {
	format = strings.ToLower(format)
	if format != "png" && format != "svg" {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if path == "" {
		return nil, errors.New("image output needs a path")
	}
	if width <= 0 {
		width = 800
	}
	return &ImageRenderer{path: path, format: format, width: vg.Length(width), height: vg.Length(height)}, nil
}

// Written lists the files produced by the last Render.
func (r *ImageRenderer) Written() []string {
	return r.written
}

func (r *ImageRenderer) Render(c model.Chart) error {
	r.written = r.written[:0]
	if len(c.Fields) == 0 {
		return ErrEmptyChart
	}
	if c.Mode == model.ModePerField {
		return r.renderSeries(c)
	}
	return r.renderFacets(c)
}

// renderFacets draws one bar plot per field over the shared list of days.
func (r *ImageRenderer) renderFacets(c model.Chart) error {
	var days []int64
	index := make(map[int64]int)
	var labels []string
	for _, row := range c.Rows {
		k := row.Day.Unix()
		if _, ok := index[k]; ok {
			continue
		}
		index[k] = len(days)
		days = append(days, k)
		labels = append(labels, row.Day.Format("Jan 02"))
	}

	barWidth := r.width / vg.Length(len(days)+1) * 0.6
	if barWidth < vg.Points(2) {
		barWidth = vg.Points(2)
	}
	if barWidth > vg.Points(30) {
		barWidth = vg.Points(30)
	}

	plots := make([][]*plot.Plot, len(c.Fields))
	for i, f := range c.Fields {
		vals := make(plotter.Values, len(days))
		for _, row := range c.RowsFor(f) {
			vals[index[row.Day.Unix()]] = row.Value
		}

		p := plot.New()
		p.Title.Text = FacetLabel(f)
		p.Y.Label.Text = ""
		p.Y.Min = 0

		bars, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return fmt.Errorf("facet %s: %w", f, err)
		}
		bars.Color = plotColors[i%len(plotColors)]
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.NominalX(labels...)

		plots[i] = []*plot.Plot{p}
	}

	height := r.height
	if height <= 0 {
		height = vg.Length(facetHeight * len(plots))
	}
	if err := writeTiles(r.path, r.format, plots, r.width, height); err != nil {
		return err
	}
	r.written = append(r.written, r.path)
	return nil
}

// renderSeries draws one connected line per field against raw timestamps.
func (r *ImageRenderer) renderSeries(c model.Chart) error {
	height := r.height
	if height <= 0 {
		height = seriesHeight
	}

	for i, s := range c.Series {
		if len(s.Points) == 0 {
			slog.Warn("no samples to draw", "field", s.Field)
			continue
		}

		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Timestamp.Unix())
			xys[j].Y = pt.Value
		}

		p := plot.New()
		p.Title.Text = FacetLabel(s.Field)
		p.Y.Label.Text = ""
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Field, err)
		}
		col := plotColors[i%len(plotColors)]
		line.Color = col
		points.Color = col
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)

		path := SeriesPath(r.path, s.Field)
		if err := writeTiles(path, r.format, [][]*plot.Plot{{p}}, r.width, height); err != nil {
			return err
		}
		r.written = append(r.written, path)
	}
	return nil
}

// SeriesPath derives the per-field file name: out.png → out-stomach-pain.png.
func SeriesPath(base, field string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + slug(field) + ext
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// writeTiles lays plots out in a grid and writes the canvas to path.
func writeTiles(path, format string, plots [][]*plot.Plot, w, h vg.Length) error {
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return err
	}
	dc := draw.New(c)

	t := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(12),
		PadY:      vg.Points(8),
	}
	canvases := plot.Align(plots, t, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
