// Package report renders feature attributions as charts.
package report

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgsvg"
)

var (
	positiveColor = color.RGBA{R: 0xff, G: 0x00, B: 0x51, A: 0xff}
	negativeColor = color.RGBA{R: 0x00, G: 0x8b, B: 0xfb, A: 0xff}
)

// Chart is a rendered attribution plot.
type Chart struct {
	plot   *plot.Plot
	width  vg.Length
	height vg.Length
}

// BarChart plots one bar per feature, positive attributions in red and
// negative ones in blue. labels may be nil, in which case features are
// named by index.
func BarChart(values []float64, labels []string, title string) (*Chart, error) {
	if len(values) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "BarChart")
	}
	if labels == nil {
		labels = make([]string, len(values))
		for j := range labels {
			labels[j] = fmt.Sprintf("x%d", j)
		}
	}
	if len(labels) != len(values) {
		return nil, errors.NewShapeMismatchError("BarChart", len(values), len(labels), 1)
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "attribution"
	p.Add(plotter.NewGrid())

	pos := make(plotter.Values, len(values))
	neg := make(plotter.Values, len(values))
	for j, v := range values {
		if v >= 0 {
			pos[j] = v
		} else {
			neg[j] = v
		}
	}

	width := vg.Points(20)
	for _, series := range []struct {
		values plotter.Values
		color  color.Color
	}{
		{pos, positiveColor},
		{neg, negativeColor},
	} {
		bars, err := plotter.NewBarChart(series.values, width)
		if err != nil {
			return nil, errors.Wrap(err, "BarChart")
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = series.color
		p.Add(bars)
	}
	p.NominalX(labels...)

	chartWidth := vg.Length(len(values)) * vg.Inch / 2
	if chartWidth < 4*vg.Inch {
		chartWidth = 4 * vg.Inch
	}
	return &Chart{plot: p, width: chartWidth, height: 4 * vg.Inch}, nil
}

// Save writes the chart to path. The format follows the extension and
// must be .png or .svg.
func (c *Chart) Save(path string) error {
	if _, err := format(path); err != nil {
		return err
	}
	if err := c.plot.Save(c.width, c.height, path); err != nil {
		return errors.Wrapf(err, "save chart to %s", path)
	}
	return nil
}

// Encode writes the chart to w in the given format ("png" or "svg").
func (c *Chart) Encode(w io.Writer, formatName string) error {
	f, err := format("." + formatName)
	if err != nil {
		return err
	}
	wt, err := c.plot.WriterTo(c.width, c.height, f)
	if err != nil {
		return errors.Wrap(err, "encode chart")
	}
	_, err = wt.WriteTo(w)
	return err
}

func format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg":
		return ext, nil
	default:
		return "", errors.NewInvalidArgumentError("path", "chart format must be png or svg", path)
	}
}
