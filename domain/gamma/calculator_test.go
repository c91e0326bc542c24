package gamma

import (
	"math"
	"testing"
)

const threshold = 15.0

// TestRateFromMean verifies the moment-matched rate is positive across the
// full slider grid
func TestRateFromMean(t *testing.T) {
	for mean := MeanMin; mean <= MeanMax; mean += 1.0 {
		for shape := ShapeMin; shape <= ShapeMax; shape += 5.0 {
			rate, err := RateFromMean(mean, shape)
			if err != nil {
				t.Fatalf("RateFromMean(%v, %v) failed: %v", mean, shape, err)
			}
			if rate <= 0 {
				t.Errorf("rate should be positive, got %v for mean=%v shape=%v", rate, mean, shape)
			}
		}
	}

	if _, err := RateFromMean(0, 1); err == nil {
		t.Error("expected error for zero mean")
	}
	if _, err := RateFromMean(5, -1); err == nil {
		t.Error("expected error for negative shape")
	}
}

func TestCompute_DomainInvariants(t *testing.T) {
	cases := []Params{
		{Mean: 5, Shape: 1},
		{Mean: 1, Shape: 1},
		{Mean: 15, Shape: 50},
		{Mean: 1, Shape: 50},
		{Mean: 7.3, Shape: 2.5},
	}

	for _, p := range cases {
		d, err := Compute(p, threshold)
		if err != nil {
			t.Fatalf("Compute(%+v) failed: %v", p, err)
		}

		if d.XMax < threshold+1 {
			t.Errorf("x_max %v should be at least threshold+1", d.XMax)
		}

		if len(d.Curve) != CurvePoints {
			t.Fatalf("expected %d curve points, got %d", CurvePoints, len(d.Curve))
		}
		if d.Curve[0].X != 0 {
			t.Errorf("curve should start at x=0, got %v", d.Curve[0].X)
		}
		if d.Curve[len(d.Curve)-1].X != d.XMax {
			t.Errorf("curve should end at x_max %v, got %v", d.XMax, d.Curve[len(d.Curve)-1].X)
		}
		for i := 1; i < len(d.Curve); i++ {
			if d.Curve[i].X <= d.Curve[i-1].X {
				t.Fatalf("curve x values must be strictly increasing at index %d", i)
			}
			if d.Curve[i].Density < 0 {
				t.Fatalf("density must be non-negative at index %d", i)
			}
		}

		if d.Mode < 0 {
			t.Errorf("mode should be non-negative, got %v", d.Mode)
		}
		if p.Shape <= 1 && d.Mode != 0 {
			t.Errorf("mode should be 0 for shape<=1, got %v", d.Mode)
		}
		if p.Shape > 1 {
			want := (p.Shape - 1) / d.Rate
			if math.Abs(d.Mode-want) > 1e-12 {
				t.Errorf("mode = %v, want %v", d.Mode, want)
			}
		}

		if d.IntervalLo > d.IntervalHi {
			t.Errorf("interval inverted: [%v, %v]", d.IntervalLo, d.IntervalHi)
		}
		if d.TailProbability < 0 || d.TailProbability > 1 {
			t.Errorf("tail probability out of [0,1]: %v", d.TailProbability)
		}
	}
}

// TestCompute_ExponentialScenario checks the shape=1 case, where the Gamma
// reduces to an Exponential with rate 0.2 and the tail has a closed form
func TestCompute_ExponentialScenario(t *testing.T) {
	d, err := Compute(Params{Mean: 5, Shape: 1}, threshold)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(d.Rate-0.2) > 1e-12 {
		t.Errorf("rate = %v, want 0.2", d.Rate)
	}
	if d.Mode != 0 {
		t.Errorf("mode = %v, want 0", d.Mode)
	}

	want := math.Exp(-0.2 * threshold) // ≈ 0.049787
	if math.Abs(d.TailProbability-want) > 1e-9 {
		t.Errorf("tail probability = %v, want %v", d.TailProbability, want)
	}
}

// TestCompute_ConcentratedScenarios covers the tight-distribution corners of
// the slider grid
func TestCompute_ConcentratedScenarios(t *testing.T) {
	// Mean at threshold, low variance: roughly half the mass beyond it.
	atThreshold, err := Compute(Params{Mean: 15, Shape: 50}, threshold)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(atThreshold.Rate-50.0/15.0) > 1e-12 {
		t.Errorf("rate = %v, want %v", atThreshold.Rate, 50.0/15.0)
	}
	if atThreshold.TailProbability < 0.4 || atThreshold.TailProbability > 0.6 {
		t.Errorf("tail probability should be near 0.5, got %v", atThreshold.TailProbability)
	}

	// Mean far below threshold, low variance: essentially no tail mass.
	farBelow, err := Compute(Params{Mean: 1, Shape: 50}, threshold)
	if err != nil {
		t.Fatal(err)
	}
	if farBelow.Rate != 50 {
		t.Errorf("rate = %v, want 50", farBelow.Rate)
	}
	if farBelow.TailProbability > 1e-6 {
		t.Errorf("tail probability should be ~0, got %v", farBelow.TailProbability)
	}
}

// TestCompute_TailMonotoneInMean: with shape fixed, raising the mean shifts
// mass rightward past the fixed threshold
func TestCompute_TailMonotoneInMean(t *testing.T) {
	for _, shape := range []float64{1, 2, 10, 50} {
		prev := -1.0
		for mean := MeanMin; mean <= MeanMax; mean += 0.5 {
			d, err := Compute(Params{Mean: mean, Shape: shape}, threshold)
			if err != nil {
				t.Fatal(err)
			}
			if d.TailProbability < prev-1e-12 {
				t.Fatalf("tail probability decreased at mean=%v shape=%v: %v -> %v",
					mean, shape, prev, d.TailProbability)
			}
			prev = d.TailProbability
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	p := Params{Mean: 7.7, Shape: 3.2}
	a, err := Compute(p, threshold)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(p, threshold)
	if err != nil {
		t.Fatal(err)
	}

	if a.Rate != b.Rate || a.XMax != b.XMax || a.Mode != b.Mode ||
		a.IntervalLo != b.IntervalLo || a.IntervalHi != b.IntervalHi ||
		a.TailProbability != b.TailProbability {
		t.Error("recomputation with identical inputs should be bit-identical")
	}
	for i := range a.Curve {
		if a.Curve[i] != b.Curve[i] {
			t.Fatalf("curve differs at index %d", i)
		}
	}
}

func TestCompute_RejectsInvalidInputs(t *testing.T) {
	if _, err := Compute(Params{Mean: 0, Shape: 1}, threshold); err == nil {
		t.Error("expected error for zero mean")
	}
	if _, err := Compute(Params{Mean: 5, Shape: 0}, threshold); err == nil {
		t.Error("expected error for zero shape")
	}
	if _, err := Compute(Params{Mean: 5, Shape: 1}, 0); err == nil {
		t.Error("expected error for zero threshold")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		in   Params
		want Params
	}{
		{Params{Mean: 0.2, Shape: 0.5}, Params{Mean: MeanMin, Shape: ShapeMin}},
		{Params{Mean: 99, Shape: 200}, Params{Mean: MeanMax, Shape: ShapeMax}},
		{Params{Mean: 5, Shape: 1}, Params{Mean: 5, Shape: 1}},
	}
	for _, c := range cases {
		if got := c.in.Clamp(); got != c.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", c.in, got, c.want)
		}
	}
}
