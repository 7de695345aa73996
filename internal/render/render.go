// Package render turns numeric analysis outputs into PNG chart bytes. Every
// renderer is deterministic for identical input, and every failure degrades to
// a placeholder image instead of an error reaching the caller.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Chart is one rendered artifact.
type Chart struct {
	Name        string
	Category    string
	Description string
	PNG         []byte
	Placeholder bool
	Reason      string // set when Placeholder is true
}

// Options controls chart geometry. Zero values fall back to defaults.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns the standard report chart size.
func DefaultOptions() Options {
	return Options{Width: 900, Height: 560}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 560
	}
	return o
}

// Fixed palette shared by every chart so report figures stay visually
// consistent run to run.
var (
	colorUp      = drawing.Color{R: 0xd6, G: 0x2b, B: 0x2b, A: 0xff}
	colorDown    = drawing.Color{R: 0x2b, G: 0x5f, B: 0xd6, A: 0xff}
	colorNeutral = drawing.Color{R: 0x9a, G: 0x9a, B: 0x9a, A: 0xff}
	colorAccent  = drawing.Color{R: 0x2b, G: 0xa8, B: 0x7a, A: 0xff}

	clusterPalette = []drawing.Color{
		{R: 0x2b, G: 0x5f, B: 0xd6, A: 0xff},
		{R: 0xd6, G: 0x2b, B: 0x2b, A: 0xff},
		{R: 0x2b, G: 0xa8, B: 0x7a, A: 0xff},
		{R: 0xe0, G: 0x8c, B: 0x1f, A: 0xff},
		{R: 0x8c, G: 0x4b, B: 0xc9, A: 0xff},
		{R: 0x5a, G: 0x5a, B: 0x5a, A: 0xff},
	}
)

func clusterColor(i int) drawing.Color {
	if i < 0 {
		i = -i
	}
	return clusterPalette[i%len(clusterPalette)]
}

// pointStyle renders dots only, no connecting stroke.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// dashedLine marks threshold cut lines on scatter charts.
func dashedLine(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth:     1,
		StrokeColor:     col,
		StrokeDashArray: []float64{4, 4},
	}
}

// paddedRange widens a degenerate axis range so the chart engine never sees a
// zero-width domain.
func paddedRange(min, max float64) *chart.ContinuousRange {
	if min > max {
		min, max = max, min
	}
	if max-min < 1e-9 {
		min -= 1
		max += 1
	} else {
		pad := (max - min) * 0.05
		min -= pad
		max += pad
	}
	return &chart.ContinuousRange{Min: min, Max: max}
}

func renderPNG(c chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderBarPNG(c chart.BarChart) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// guard wraps a renderer so panics and errors both degrade to a placeholder.
func guard(name, category, description string, opt Options, fn func() ([]byte, error)) Chart {
	c := Chart{Name: name, Category: category, Description: description}
	pngBytes, err := func() (b []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("renderer panicked: %v", r)
			}
		}()
		return fn()
	}()
	if err != nil {
		c.Placeholder = true
		c.Reason = err.Error()
		c.PNG = placeholderPNG(opt, name, err.Error())
		return c
	}
	c.PNG = pngBytes
	return c
}

// placeholderPNG draws a labeled gray panel. It must never fail, so it builds
// the image directly instead of going through the chart engine.
func placeholderPNG(opt Options, name, reason string) []byte {
	opt = opt.withDefaults()
	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0xf2, 0xf2, 0xf2, 0xff}}, image.Point{}, draw.Src)

	border := color.RGBA{0xc0, 0xc0, 0xc0, 0xff}
	for x := 0; x < opt.Width; x++ {
		img.Set(x, 0, border)
		img.Set(x, opt.Height-1, border)
	}
	for y := 0; y < opt.Height; y++ {
		img.Set(0, y, border)
		img.Set(opt.Width-1, y, border)
	}

	drawLabel(img, 20, opt.Height/2-10, fmt.Sprintf("%s unavailable", name))
	drawLabel(img, 20, opt.Height/2+10, reason)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{color.RGBA{0x40, 0x40, 0x40, 0xff}},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
