package report

import (
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// ChartOptions controls the bar chart.
type ChartOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	DPI    float64
}

// DefaultChartOptions returns a 12x6in chart at 150 dpi.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Title:  "Top 10 suspicious events",
		Width:  12 * vg.Inch,
		Height: 6 * vg.Inch,
		DPI:    150,
	}
}

// WriteChart renders entries as a PNG bar chart to path.
func WriteChart(path string, entries []models.RankedEntry, opts ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := RenderChart(f, entries, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderChart draws one bar per entry, colored by source label, in ranking order.
func RenderChart(w io.Writer, entries []models.RankedEntry, opts ChartOptions) error {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Event / Domain"
	p.Y.Label.Text = "Count"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Legend.Left = false

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Key
	}

	// One series per source, zero-filled elsewhere, so bars share positions
	// and the legend maps colors to sources.
	for i, label := range sourceOrder(entries) {
		values := make(plotter.Values, len(entries))
		for j, e := range entries {
			if e.Source == label {
				values[j] = float64(e.Count)
			}
		}
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return fmt.Errorf("build bars for %s: %w", label, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(label, bars)
	}

	if len(names) > 0 {
		p.NominalX(names...)
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	canvas := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(int(opts.DPI)))
	p.Draw(draw.New(canvas))

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

// sourceOrder lists source labels in order of first appearance.
func sourceOrder(entries []models.RankedEntry) []string {
	seen := make(map[string]bool)
	labels := make([]string, 0)
	for _, e := range entries {
		if !seen[e.Source] {
			seen[e.Source] = true
			labels = append(labels, e.Source)
		}
	}
	return labels
}
