// Package plotting renders optional PNG charts of a run.
package plotting

import (
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/outcomecv/internal/importance"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Suffixes appended to --output_prefix.
const (
	PredictionsSuffix = "-predictions.png"
	ImportanceSuffix  = "-importance.png"
)

// MaxBars caps the importance chart.
const MaxBars = 20

// Predictions plots held-out predictions against the true outcome, with
// the identity line for reference, and writes the chart to w as PNG.
func Predictions(w io.Writer, title string, yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) || len(yTrue) == 0 {
		return errors.NewDimensionError("plotting.Predictions", len(yTrue), len(yPred), 0)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "true"
	p.Y.Label.Text = "held-out prediction"

	pts := make(plotter.XYs, len(yTrue))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range yTrue {
		pts[i].X = yTrue[i]
		pts[i].Y = yPred[i]
		lo = math.Min(lo, math.Min(yTrue[i], yPred[i]))
		hi = math.Max(hi, math.Max(yTrue[i], yPred[i]))
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "prediction scatter")
	}
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "identity line")
	}
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(scatter, identity, plotter.NewGrid())

	return render(w, p, 5*vg.Inch, 5*vg.Inch)
}

// Importance draws the top MaxBars ranked scores as a PNG bar chart.
func Importance(w io.Writer, title string, records []importance.Record) error {
	if len(records) == 0 {
		return errors.NewValueError("plotting.Importance", "no records to plot")
	}
	if len(records) > MaxBars {
		records = records[:MaxBars]
	}

	values := make(plotter.Values, len(records))
	names := make([]string, len(records))
	for i, r := range records {
		values[i] = r.Score
		names[i] = r.Feature
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "score"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return errors.Wrap(err, "importance bars")
	}
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = -1.2
	p.X.Tick.Label.YAlign = -0.5

	width := vg.Length(len(records))*vg.Points(24) + 2*vg.Inch
	return render(w, p, width, 4*vg.Inch)
}

func render(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	canvas, err := p.WriterTo(width, height, "png")
	if err != nil {
		return errors.Wrap(err, "png canvas")
	}
	if _, err := canvas.WriteTo(w); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}
