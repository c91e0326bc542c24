package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pyrostat/internal/errors"
	"pyrostat/models"
	"pyrostat/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// CreateRun inserts a completed fit run
func (r *RunRepositoryImpl) CreateRun(ctx context.Context, run *models.FitRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fit_runs (id, model, engine, data_source, observations, chains, iterations, draw_count, summaries, exceedance_prob, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, run.ID, run.Model, run.Engine, run.DataSource, run.Observations, run.Chains,
		run.Iterations, run.DrawCount, run.Summaries, run.ExceedanceProb, run.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to insert fit run")
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id uuid.UUID) (*models.FitRun, error) {
	var run models.FitRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, model, engine, data_source, observations, chains, iterations, draw_count, summaries, exceedance_prob, created_at
		FROM fit_runs
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("fit run")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load fit run")
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*models.FitRun, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []*models.FitRun
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, model, engine, data_source, observations, chains, iterations, draw_count, summaries, exceedance_prob, created_at
		FROM fit_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list fit runs")
	}
	return runs, nil
}
