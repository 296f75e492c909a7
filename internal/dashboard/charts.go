// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const (
	chartWidth  = 420
	chartHeight = 180
	chartPad    = 10
)

// lineChartSVG renders one series as a static SVG polyline, scaled to the
// chart box.
func lineChartSVG(points []DataPoint, sel func(DataPoint) float64, stroke string) template.HTML {
	if len(points) == 0 {
		return template.HTML(fmt.Sprintf(
			`<svg width="%d" height="%d"></svg>`, chartWidth, chartHeight))
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		v := sel(p)
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	span := maxV - minV
	if span == 0 {
		span = 1
	}

	var coords []string
	innerW := float64(chartWidth - 2*chartPad)
	innerH := float64(chartHeight - 2*chartPad)
	den := float64(len(points) - 1)
	if den == 0 {
		den = 1
	}
	for i, p := range points {
		x := chartPad + innerW*float64(i)/den
		y := chartPad + innerH*(1-(sel(p)-minV)/span)
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", x, y))
	}

	svg := fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="%d" height="%d" fill="#fafafa" stroke="#ddd"/>`+
			`<polyline points="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+
			`</svg>`,
		chartWidth, chartHeight, chartWidth, chartHeight,
		chartWidth, chartHeight,
		strings.Join(coords, " "), stroke)
	return template.HTML(svg)
}
