package ports

import (
	"context"

	"github.com/google/uuid"

	"pyrostat/models"
)

// RunRepository persists completed fit runs. The explorer never writes
// here; only the fit pipeline does, and only when a ledger is configured.
type RunRepository interface {
	CreateRun(ctx context.Context, run *models.FitRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.FitRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.FitRun, error)
}
