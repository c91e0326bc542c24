package ui

import (
	"sync"

	"pyrostat/domain/gamma"
)

// Controller status values. The controller is Idle except during the
// synchronous recompute pass a parameter write triggers.
const (
	StatusIdle        = "idle"
	StatusRecomputing = "recomputing"
)

// ExplorerState is the atomically published output of one recompute pass
type ExplorerState struct {
	Params      gamma.Params `json:"params"`
	Plot        PlotSpec     `json:"plot"`
	SummaryText string       `json:"summary_text"`
}

// ExplorerController wires parameter writes to recomputation and
// re-render. Each write runs one full pass over the calculator and the
// render surface; readers only ever observe a complete state, never a
// partial one. If a recompute fails the previously published state stays
// visible.
type ExplorerController struct {
	threshold float64

	// writeMu serializes recompute passes; last write wins.
	writeMu sync.Mutex

	stateMu sync.RWMutex
	state   *ExplorerState
	status  string
}

// NewExplorerController creates a controller and publishes the initial
// state computed from the slider defaults
func NewExplorerController(threshold float64) (*ExplorerController, error) {
	c := &ExplorerController{
		threshold: threshold,
		status:    StatusIdle,
	}
	if _, err := c.SetParams(gamma.DefaultParams()); err != nil {
		return nil, err
	}
	return c, nil
}

// SetParams clamps the parameters to the slider ranges, recomputes every
// derived quantity, and publishes the new render
func (c *ExplorerController) SetParams(p gamma.Params) (*ExplorerState, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.setStatus(StatusRecomputing)
	defer c.setStatus(StatusIdle)

	p = p.Clamp()
	derived, err := gamma.Compute(p, c.threshold)
	if err != nil {
		// Contract violation: abort the pass and keep the previous render.
		return c.State(), err
	}

	next := &ExplorerState{
		Params:      p,
		Plot:        BuildPlotSpec(derived),
		SummaryText: BuildSummaryText(derived),
	}

	c.stateMu.Lock()
	c.state = next
	c.stateMu.Unlock()
	return next, nil
}

// State returns the most recently published render
func (c *ExplorerController) State() *ExplorerState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Status reports whether a recompute pass is in flight
func (c *ExplorerController) Status() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.status
}

// Threshold returns the fixed ROS threshold the controller was built with
func (c *ExplorerController) Threshold() float64 {
	return c.threshold
}

func (c *ExplorerController) setStatus(status string) {
	c.stateMu.Lock()
	c.status = status
	c.stateMu.Unlock()
}
