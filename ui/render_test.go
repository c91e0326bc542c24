package ui

import (
	"strings"
	"testing"

	"pyrostat/domain/gamma"
)

func mustCompute(t *testing.T, p gamma.Params, threshold float64) *gamma.Derived {
	t.Helper()
	d, err := gamma.Compute(p, threshold)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	return d
}

// TestBuildSummaryText_ReferenceOutput pins the exact four-line block for
// the default slider position. shape=1 makes the distribution Exponential
// with rate 0.2, so every line has a closed form.
func TestBuildSummaryText_ReferenceOutput(t *testing.T) {
	d := mustCompute(t, gamma.Params{Mean: 5, Shape: 1}, 15)

	got := BuildSummaryText(d)
	want := "Mean: 5\n" +
		"Mode: 0\n" +
		"Central 90% interval: [0.256, 14.979]\n" +
		"Probability of exceeding upper ROS value (15.0): 4.979%"
	if got != want {
		t.Errorf("summary text mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildSummaryText_LineOrder(t *testing.T) {
	d := mustCompute(t, gamma.Params{Mean: 7.5, Shape: 3.4}, 15)

	lines := strings.Split(BuildSummaryText(d), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	prefixes := []string{
		"Mean: ",
		"Mode: ",
		"Central 90% interval: [",
		"Probability of exceeding upper ROS value (15.0): ",
	}
	for i, prefix := range prefixes {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if !strings.HasSuffix(lines[3], "%") {
		t.Errorf("tail line should end with %%, got %q", lines[3])
	}
}

func TestBuildPlotSpec(t *testing.T) {
	d := mustCompute(t, gamma.Params{Mean: 5, Shape: 2}, 15)

	plot := BuildPlotSpec(d)
	if plot.XLabel != "Value" || plot.YLabel != "Density" {
		t.Errorf("axis labels = %q/%q", plot.XLabel, plot.YLabel)
	}
	if !plot.Filled {
		t.Error("curve should be filled")
	}
	if plot.XMax != d.XMax {
		t.Errorf("plot x_max = %v, want %v", plot.XMax, d.XMax)
	}
	if len(plot.Curve) != gamma.CurvePoints {
		t.Errorf("plot curve has %d points", len(plot.Curve))
	}

	if len(plot.Markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(plot.Markers))
	}
	thresholdMarker, meanMarker := plot.Markers[0], plot.Markers[1]
	if thresholdMarker.X != 15 || thresholdMarker.Label != "Max mean ROS" || thresholdMarker.Dashed {
		t.Errorf("threshold marker = %+v", thresholdMarker)
	}
	if meanMarker.X != 5 || meanMarker.Label != "Mean = 5.00" || !meanMarker.Dashed {
		t.Errorf("mean marker = %+v", meanMarker)
	}
}

func TestRound3(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{5.0, "5"},
		{0.0, "0"},
		{4.9787068, "4.979"},
		{14.9786614, "14.979"},
		{0.2564664, "0.256"},
		{1.23456, "1.235"},
		{2.5001, "2.5"},
	}
	for _, c := range cases {
		if got := round3(c.in); got != c.want {
			t.Errorf("round3(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
