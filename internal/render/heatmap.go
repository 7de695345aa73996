package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/genelens/genelens-cli/internal/battery"
	"github.com/genelens/genelens-cli/internal/tabular"
)

// Heatmaps are rasterized directly: the chart engine has no matrix series, so
// cells are painted into an RGBA image with the shared palette and encoded as
// PNG by hand.

const (
	heatLeftMargin   = 130
	heatTopMargin    = 40
	heatBottomMargin = 50
	heatRightMargin  = 20
)

// ExpressionHeatmap draws per-gene z-scored expression for the selected
// record indices, one row per gene and one column per sample.
func ExpressionHeatmap(tbl *tabular.Table, rowIdx []int, opt Options) Chart {
	opt = opt.withDefaults()
	return guard("expression_heatmap", "deg", "z-scored expression of top genes across samples", opt, func() ([]byte, error) {
		if tbl == nil || len(rowIdx) == 0 || len(tbl.SampleColumns) == 0 {
			return nil, fmt.Errorf("no expression values to plot")
		}
		expr := tbl.ExpressionMatrix()
		ids := tbl.GeneIDs()

		rows := make([][]float64, len(rowIdx))
		labels := make([]string, len(rowIdx))
		for i, ri := range rowIdx {
			if ri < 0 || ri >= len(expr) {
				return nil, fmt.Errorf("row index %d out of range", ri)
			}
			rows[i] = zscoreRow(expr[ri])
			labels[i] = ids[ri]
		}

		img := newPanel(opt)
		plotW := opt.Width - heatLeftMargin - heatRightMargin
		plotH := opt.Height - heatTopMargin - heatBottomMargin
		cellW := plotW / len(tbl.SampleColumns)
		cellH := plotH / len(rows)
		if cellW < 1 || cellH < 1 {
			return nil, fmt.Errorf("too many cells for a %dx%d chart", opt.Width, opt.Height)
		}

		drawLabel(img, heatLeftMargin, 20, "Expression heatmap (row z-score)")
		for i, row := range rows {
			y0 := heatTopMargin + i*cellH
			drawLabel(img, 8, y0+cellH/2+4, truncateLabel(labels[i], 16))
			for j, v := range row {
				fillRect(img, heatLeftMargin+j*cellW, y0, cellW-1, cellH-1, divergingColor(v/2))
			}
		}
		for j, name := range tbl.SampleColumns {
			drawLabel(img, heatLeftMargin+j*cellW, opt.Height-heatBottomMargin+18, truncateLabel(name, cellW/7))
		}
		return encodePNG(img)
	})
}

// ConfusionHeatmap draws a classifier confusion matrix with cell counts.
func ConfusionHeatmap(algorithm string, res *battery.ClassificationResult, opt Options) Chart {
	opt = opt.withDefaults()
	name := algorithm + "_confusion"
	return guard(name, "battery", algorithm+" confusion matrix", opt, func() ([]byte, error) {
		if res == nil || len(res.Confusion) == 0 {
			return nil, fmt.Errorf("no confusion matrix")
		}
		n := len(res.Confusion)
		maxCount := 0
		for _, row := range res.Confusion {
			for _, c := range row {
				if c > maxCount {
					maxCount = c
				}
			}
		}
		if maxCount == 0 {
			maxCount = 1
		}

		img := newPanel(opt)
		plotW := opt.Width - heatLeftMargin - heatRightMargin
		plotH := opt.Height - heatTopMargin - heatBottomMargin
		cellW := plotW / n
		cellH := plotH / n

		drawLabel(img, heatLeftMargin, 20, fmt.Sprintf("%s confusion matrix (rows: truth, cols: predicted)", algorithm))
		for i, row := range res.Confusion {
			y0 := heatTopMargin + i*cellH
			drawLabel(img, 8, y0+cellH/2+4, fmt.Sprintf("true %d", i))
			for j, count := range row {
				x0 := heatLeftMargin + j*cellW
				frac := float64(count) / float64(maxCount)
				fillRect(img, x0, y0, cellW-1, cellH-1, intensityColor(frac))
				drawLabel(img, x0+cellW/2-4, y0+cellH/2+4, fmt.Sprintf("%d", count))
			}
		}
		for j := 0; j < n; j++ {
			drawLabel(img, heatLeftMargin+j*cellW+cellW/2-20, opt.Height-heatBottomMargin+18, fmt.Sprintf("pred %d", j))
		}
		return encodePNG(img)
	})
}

func newPanel(opt Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, x, y, w, h int, c color.Color) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), &image.Uniform{c}, image.Point{}, draw.Src)
}

func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// zscoreRow standardizes one gene across samples; constant rows become zeros.
func zscoreRow(row []float64) []float64 {
	out := make([]float64, len(row))
	var sum float64
	for _, v := range row {
		sum += v
	}
	mean := sum / float64(len(row))
	var ss float64
	for _, v := range row {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(row)))
	if std == 0 {
		return out
	}
	for i, v := range row {
		out[i] = (v - mean) / std
	}
	return out
}

// divergingColor maps v in [-1,1] onto a blue-white-red ramp, clamping
// out-of-range values.
func divergingColor(v float64) color.RGBA {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	if v < 0 {
		t := -v
		return color.RGBA{
			R: uint8(255 - t*(255-float64(colorDown.R))),
			G: uint8(255 - t*(255-float64(colorDown.G))),
			B: uint8(255 - t*(255-float64(colorDown.B))),
			A: 0xff,
		}
	}
	t := v
	return color.RGBA{
		R: uint8(255 - t*(255-float64(colorUp.R))),
		G: uint8(255 - t*(255-float64(colorUp.G))),
		B: uint8(255 - t*(255-float64(colorUp.B))),
		A: 0xff,
	}
}

// intensityColor maps frac in [0,1] onto white-to-accent.
func intensityColor(frac float64) color.RGBA {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return color.RGBA{
		R: uint8(255 - frac*(255-float64(colorAccent.R))),
		G: uint8(255 - frac*(255-float64(colorAccent.G))),
		B: uint8(255 - frac*(255-float64(colorAccent.B))),
		A: 0xff,
	}
}
