package ports

import (
	"context"

	"pyrostat/domain/ros"
)

// DatasetReader loads weather/fire observation tables from a source file
type DatasetReader interface {
	Read(ctx context.Context, path string) (*ros.ObservationSet, error)
}
