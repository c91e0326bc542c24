package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ParameterSummary is the posterior summary of one named model parameter
type ParameterSummary struct {
	Parameter  string  `json:"parameter"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`
	Q5         float64 `json:"q5"`
	Q95        float64 `json:"q95"`
	Draws      int     `json:"draws"`
	MCStdError float64 `json:"mc_std_error"`
}

// SummaryList is a JSONB-backed slice of parameter summaries
type SummaryList []ParameterSummary

// Value implements driver.Valuer interface
func (s SummaryList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface
func (s *SummaryList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = nil
		return nil
	}

	if len(bytes) == 0 {
		*s = nil
		return nil
	}

	var result SummaryList
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*s = result
	return nil
}

// FitRun records one completed model fit: which model ran against which
// dataset, what the engine produced, and the per-parameter summaries.
type FitRun struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Model        string      `json:"model" db:"model"`
	Engine       string      `json:"engine" db:"engine"`
	DataSource   string      `json:"data_source" db:"data_source"`
	Observations int         `json:"observations" db:"observations"`
	Chains       int         `json:"chains" db:"chains"`
	Iterations   int         `json:"iterations" db:"iterations"`
	DrawCount    int         `json:"draw_count" db:"draw_count"`
	Summaries    SummaryList `json:"summaries" db:"summaries"`

	// ExceedanceProb is the posterior-mean probability of spreading faster
	// than the configured ROS threshold, when the fit supports it.
	ExceedanceProb *float64 `json:"exceedance_prob,omitempty" db:"exceedance_prob"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewFitRun creates a run record with a fresh identity
func NewFitRun(model, engine, dataSource string) *FitRun {
	return &FitRun{
		ID:         uuid.New(),
		Model:      model,
		Engine:     engine,
		DataSource: dataSource,
		CreatedAt:  time.Now().UTC(),
	}
}
