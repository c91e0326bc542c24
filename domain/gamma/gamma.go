package gamma

import (
	"pyrostat/internal/errors"
)

// Slider bounds for the exceedance explorer. The input surface clamps to
// these before anything reaches the calculator, so mean and shape are
// always strictly positive.
const (
	MeanMin     = 1.0
	MeanMax     = 15.0
	MeanDefault = 5.0

	ShapeMin     = 1.0
	ShapeMax     = 50.0
	ShapeDefault = 1.0

	Step = 0.1
)

// Params holds the two user-controlled inputs of the explorer. The fixed
// threshold lives in configuration, not here.
type Params struct {
	Mean  float64 `json:"mean"`
	Shape float64 `json:"shape"`
}

// DefaultParams returns the slider defaults
func DefaultParams() Params {
	return Params{Mean: MeanDefault, Shape: ShapeDefault}
}

// Clamp snaps parameters into the declared slider ranges
func (p Params) Clamp() Params {
	if p.Mean < MeanMin {
		p.Mean = MeanMin
	}
	if p.Mean > MeanMax {
		p.Mean = MeanMax
	}
	if p.Shape < ShapeMin {
		p.Shape = ShapeMin
	}
	if p.Shape > ShapeMax {
		p.Shape = ShapeMax
	}
	return p
}

// Validate enforces the Gamma-distribution domain invariant. A failure here
// is a programming-contract violation, not a user error.
func (p Params) Validate() error {
	if p.Mean <= 0 {
		return errors.DomainError("gamma mean must be positive")
	}
	if p.Shape <= 0 {
		return errors.DomainError("gamma shape must be positive")
	}
	return nil
}
