package app

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"pyrostat/domain/gamma"
	"pyrostat/domain/ros"
	"pyrostat/internal"
	"pyrostat/internal/errors"
	"pyrostat/models"
	"pyrostat/ports"
)

// FitService orchestrates one model fit end to end: load the observation
// table, build the engine's data dictionary, invoke the external sampler,
// summarize the draws, and optionally record the run in the ledger.
type FitService struct {
	reader    ports.DatasetReader
	sampler   ports.Sampler
	runs      ports.RunRepository // nil when no ledger is configured
	threshold float64
	logger    *internal.Logger
}

// NewFitService creates a fit service. runs may be nil; fits then complete
// without being persisted.
func NewFitService(reader ports.DatasetReader, sampler ports.Sampler, runs ports.RunRepository, threshold float64) *FitService {
	return &FitService{
		reader:    reader,
		sampler:   sampler,
		runs:      runs,
		threshold: threshold,
		logger:    internal.NewDefaultLogger("fit"),
	}
}

// FitRequest names the model and data for one fit
type FitRequest struct {
	Model    string
	DataFile string
	Options  ports.SampleOptions
}

// Fit runs one complete fit and returns the run record
func (s *FitService) Fit(ctx context.Context, req FitRequest) (*models.FitRun, error) {
	if s.sampler == nil {
		return nil, errors.ConfigInvalid("no sampler configured")
	}

	spec, err := ros.FindModel(req.Model)
	if err != nil {
		return nil, err
	}

	set, err := s.reader.Read(ctx, req.DataFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load observation table")
	}
	if set.SkippedRows > 0 {
		s.logger.Warn("skipped %d unparseable rows in %s", set.SkippedRows, set.Source)
	}

	dict, err := spec.DataDict(set)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sampling %s: %d observations, %d chains x %d iterations",
		spec.Name, set.Len(), req.Options.Chains, req.Options.Iterations)
	draws, err := s.sampler.Sample(ctx, spec, dict, req.Options)
	if err != nil {
		return nil, err
	}

	summaries, err := s.summarize(ctx, spec.Parameters(), draws)
	if err != nil {
		return nil, err
	}

	run := models.NewFitRun(spec.Name, s.sampler.Engine(), set.Source)
	run.Observations = set.Len()
	run.Chains = req.Options.Chains
	run.Iterations = req.Options.Iterations
	run.DrawCount = len(draws[spec.Parameters()[0]])
	run.Summaries = summaries

	if p, err := s.exceedanceProbability(set); err == nil {
		run.ExceedanceProb = &p
	} else {
		s.logger.Warn("exceedance probability unavailable: %v", err)
	}

	if s.runs != nil {
		if err := s.runs.CreateRun(ctx, run); err != nil {
			return nil, errors.Wrap(err, "failed to record fit run")
		}
		s.logger.Info("recorded fit run %s", run.ID)
	}

	return run, nil
}

// summarize computes per-parameter posterior summaries, one goroutine per
// parameter
func (s *FitService) summarize(ctx context.Context, params []string, draws ports.Draws) (models.SummaryList, error) {
	summaries := make(models.SummaryList, len(params))

	g, _ := errgroup.WithContext(ctx)
	for i, param := range params {
		i, param := i, param
		g.Go(func() error {
			sample := draws[param]
			if len(sample) == 0 {
				return errors.InternalError("no draws for parameter " + param)
			}

			mean, err := stats.Mean(sample)
			if err != nil {
				return errors.Wrapf(err, "failed to summarize %s", param)
			}
			median, _ := stats.Median(sample)
			sd, _ := stats.StandardDeviationSample(sample)
			q5, _ := stats.Percentile(sample, 5)
			q95, _ := stats.Percentile(sample, 95)

			summaries[i] = models.ParameterSummary{
				Parameter:  param,
				Mean:       mean,
				Median:     median,
				StdDev:     sd,
				Q5:         q5,
				Q95:        q95,
				Draws:      len(sample),
				MCStdError: sd / math.Sqrt(float64(len(sample))),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// exceedanceProbability moment-matches a Gamma distribution to the observed
// ROS sample and reports the mass above the configured threshold. This is
// the same computation the interactive explorer performs, anchored to data
// instead of slider values.
func (s *FitService) exceedanceProbability(set *ros.ObservationSet) (float64, error) {
	sample := set.Column(ros.ColumnROS)
	mean, err := stats.Mean(sample)
	if err != nil {
		return 0, errors.Wrap(err, "failed to compute sample mean")
	}
	variance, err := stats.VarS(sample)
	if err != nil || variance <= 0 {
		return 0, errors.DomainError("sample variance unusable for moment matching")
	}

	shape := mean * mean / variance
	derived, err := gamma.Compute(gamma.Params{Mean: mean, Shape: shape}, s.threshold)
	if err != nil {
		return 0, err
	}
	return derived.TailProbability, nil
}

// DatasetOverview summarizes the configured observation table for the UI
type DatasetOverview struct {
	Source       string             `json:"source"`
	Observations int                `json:"observations"`
	SkippedRows  int                `json:"skipped_rows"`
	Sites        []string           `json:"sites"`
	Columns      map[string]Summary `json:"columns"`
}

// Summary is a five-number overview of one column
type Summary struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Overview loads and summarizes the observation table at path
func (s *FitService) Overview(ctx context.Context, path string) (*DatasetOverview, error) {
	set, err := s.reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	overview := &DatasetOverview{
		Source:       set.Source,
		Observations: set.Len(),
		SkippedRows:  set.SkippedRows,
		Sites:        set.Sites(),
		Columns:      make(map[string]Summary, 3),
	}
	sort.Strings(overview.Sites)

	for _, col := range []string{ros.ColumnWindSpeed, ros.ColumnRelHumidity, ros.ColumnROS} {
		sample := set.Column(col)
		mean, _ := stats.Mean(sample)
		min, _ := stats.Min(sample)
		max, _ := stats.Max(sample)
		median, _ := stats.Median(sample)
		sd, _ := stats.StandardDeviationSample(sample)
		overview.Columns[col] = Summary{Mean: mean, Min: min, Max: max, Median: median, StdDev: sd}
	}
	return overview, nil
}
