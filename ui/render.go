package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pyrostat/domain/gamma"
)

// PlotMarker is a vertical reference line on the density plot
type PlotMarker struct {
	X      float64 `json:"x"`
	Label  string  `json:"label"`
	Dashed bool    `json:"dashed"`
}

// PlotSpec describes the explorer plot. This package only builds the
// description; drawing happens client-side.
type PlotSpec struct {
	XLabel  string             `json:"x_label"`
	YLabel  string             `json:"y_label"`
	XMax    float64            `json:"x_max"`
	Filled  bool               `json:"filled"`
	Curve   []gamma.CurvePoint `json:"curve"`
	Markers []PlotMarker       `json:"markers"`
}

// BuildPlotSpec renders the derived quantities into a plot description:
// the filled density curve, a solid marker at the threshold, and a dashed
// marker at the current mean.
func BuildPlotSpec(d *gamma.Derived) PlotSpec {
	return PlotSpec{
		XLabel: "Value",
		YLabel: "Density",
		XMax:   d.XMax,
		Filled: true,
		Curve:  d.Curve,
		Markers: []PlotMarker{
			{X: d.Threshold, Label: "Max mean ROS", Dashed: false},
			{X: d.Mean, Label: fmt.Sprintf("Mean = %.2f", d.Mean), Dashed: true},
		},
	}
}

// BuildSummaryText renders the four-line summary block. Values are rounded
// to 3 decimals with trailing zeros trimmed, so a mean of 5.000 prints
// as "5".
func BuildSummaryText(d *gamma.Derived) string {
	var b strings.Builder
	b.WriteString("Mean: " + round3(d.Mean) + "\n")
	b.WriteString("Mode: " + round3(d.Mode) + "\n")
	b.WriteString("Central 90% interval: [" + round3(d.IntervalLo) + ", " + round3(d.IntervalHi) + "]\n")
	b.WriteString(fmt.Sprintf("Probability of exceeding upper ROS value (%.1f): %s%%",
		d.Threshold, round3(d.TailProbability*100)))
	return b.String()
}

// round3 rounds to 3 decimal places and drops trailing zeros
func round3(v float64) string {
	rounded := math.Round(v*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
