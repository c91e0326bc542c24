package gamma

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"pyrostat/internal/errors"
)

// CurvePoints is the number of (x, density) samples in a plotted curve.
const CurvePoints = 1000

// CurvePoint is one sample of the density curve
type CurvePoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// Derived holds every quantity recomputed from the current parameters.
// Values are pure functions of (mean, shape, threshold); nothing here is
// cached across recomputations.
type Derived struct {
	Mean      float64 `json:"mean"`
	Shape     float64 `json:"shape"`
	Rate      float64 `json:"rate"`
	Threshold float64 `json:"threshold"`

	XMax       float64      `json:"x_max"`
	Curve      []CurvePoint `json:"curve"`
	Mode       float64      `json:"mode"`
	IntervalLo float64      `json:"interval_lo"`
	IntervalHi float64      `json:"interval_hi"`

	// TailProbability is the mass above the threshold, 1 - CDF(threshold).
	TailProbability float64 `json:"tail_probability"`
}

// RateFromMean moment-matches the rate parameter of a Gamma(shape, rate)
// distribution with the given mean
func RateFromMean(mean, shape float64) (float64, error) {
	if mean <= 0 || shape <= 0 {
		return 0, errors.DomainError("rate requires positive mean and shape")
	}
	return shape / mean, nil
}

// Compute derives all explorer quantities for the given parameters and
// threshold. Every distribution evaluation uses the same shape/rate
// parameterization (distuv.Gamma Alpha=shape, Beta=rate); mixing in a
// shape/scale call anywhere would silently corrupt the results.
func Compute(p Params, threshold float64) (*Derived, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		return nil, errors.DomainError("threshold must be positive")
	}

	rate, err := RateFromMean(p.Mean, p.Shape)
	if err != nil {
		return nil, err
	}

	dist := distuv.Gamma{Alpha: p.Shape, Beta: rate}

	// The plotted domain always extends at least one unit past the
	// threshold, even when the distribution sits far below it.
	xMax := math.Max(threshold+1, dist.Quantile(0.99))

	curve := make([]CurvePoint, CurvePoints)
	step := xMax / float64(CurvePoints-1)
	for i := range curve {
		x := float64(i) * step
		if i == CurvePoints-1 {
			x = xMax
		}
		curve[i] = CurvePoint{X: x, Density: dist.Prob(x)}
	}

	// Mode sits at the left boundary when shape <= 1 (density is
	// monotonically decreasing); the source convention reports it as 0.
	mode := 0.0
	if p.Shape > 1 {
		mode = (p.Shape - 1) / rate
	}

	return &Derived{
		Mean:            p.Mean,
		Shape:           p.Shape,
		Rate:            rate,
		Threshold:       threshold,
		XMax:            xMax,
		Curve:           curve,
		Mode:            mode,
		IntervalLo:      dist.Quantile(0.05),
		IntervalHi:      dist.Quantile(0.95),
		TailProbability: 1 - dist.CDF(threshold),
	}, nil
}
