package render

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// SVG layout constants.
const (
	svgMarginLeft   = 200
	svgMarginTop    = 80
	svgMarginBottom = 40
	svgMarginRight  = 24
	svgBarGap       = 2
)

// WriteSVG renders the chart as a static SVG document. It draws the
// same layout as the HTML sink but needs no browser, so it suits
// embedding in pages or further conversion.
func WriteSVG(w io.Writer, c Chart) error {
	width, height := c.Width, c.Height
	if width <= 0 {
		width = 1920
	}
	if height <= 0 {
		height = 1080
	}

	rows := c.rows()
	plotW := width - svgMarginLeft - svgMarginRight
	plotH := height - svgMarginTop - svgMarginBottom
	rowH := 36
	if len(rows) > 0 && plotH/len(rows) > 0 {
		rowH = plotH / len(rows)
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#ffffff")

	if c.Footer != "" {
		canvas.Text(16, 24, c.Footer, "font-family:sans-serif;font-size:13px;fill:#202020")
	}
	canvas.Text(width/2, 40, c.Title,
		"font-family:sans-serif;font-size:28px;font-weight:bold;fill:#000000;text-anchor:middle")

	for i, row := range rows {
		y := svgMarginTop + i*rowH

		if row.GroupLabel != "" {
			canvas.Text(svgMarginLeft-10, y+rowH/2+4, row.GroupLabel,
				"font-family:sans-serif;font-size:13px;font-weight:bold;fill:#000000;text-anchor:end")
		}
		canvas.Line(svgMarginLeft, y+rowH, svgMarginLeft+plotW, y+rowH, "stroke:#f0f0f0;stroke-width:1")

		for _, bar := range row.Bars {
			x := svgMarginLeft + int(bar.LeftPct*float64(plotW)/100)
			bw := int(bar.WidthPct * float64(plotW) / 100)
			if bw < 2 {
				bw = 2
			}
			canvas.Rect(x, y+svgBarGap, bw, rowH-2*svgBarGap, "fill:"+bar.Color)

			// Single-line label; the SVG sink does not stack lines.
			label := strings.ReplaceAll(bar.Label, "\n", "")
			canvas.Text(x+bw/2, y+rowH/2+4, label,
				"font-family:sans-serif;font-size:10px;fill:#ffffff;text-anchor:middle")
		}
	}

	axisY := svgMarginTop + len(rows)*rowH
	for _, tick := range c.yearTicks(maxAxisTicks) {
		x := svgMarginLeft + int(tick.LeftPct*float64(plotW)/100)
		canvas.Line(x, svgMarginTop, x, axisY, "stroke:#e8e8e8;stroke-width:1")
		canvas.Text(x, axisY+18, fmt.Sprint(tick.Year),
			"font-family:sans-serif;font-size:11px;fill:#606060;text-anchor:middle")
	}

	canvas.End()
	return nil
}
