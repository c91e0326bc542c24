package ports

import (
	"context"

	"pyrostat/domain/ros"
)

// Draws holds posterior draws keyed by parameter name. All chains are
// flattened into a single slice per parameter.
type Draws map[string][]float64

// SampleOptions configures one invocation of the inference engine
type SampleOptions struct {
	Chains     int
	Iterations int
	Seed       int64
}

// Sampler is the external inference engine boundary. Implementations hand
// the declarative model spec and data dictionary to a pre-built engine and
// return whatever draws it produced; nothing in this repository samples.
type Sampler interface {
	Sample(ctx context.Context, spec ros.ModelSpec, data map[string]interface{}, opts SampleOptions) (Draws, error)

	// Engine identifies the backing implementation for logs and run records.
	Engine() string
}
