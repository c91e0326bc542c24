package sampler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"pyrostat/domain/ros"
	"pyrostat/internal/errors"
	"pyrostat/ports"
)

// ExternalEngine invokes a pre-built inference engine binary. The engine
// receives the declarative model spec and data dictionary as a JSON job
// file and writes posterior draws as CSV: one column per parameter, one
// row per draw, chains already flattened.
type ExternalEngine struct {
	binary string
}

// NewExternalEngine creates an adapter for the engine at the given path
func NewExternalEngine(binary string) (*ExternalEngine, error) {
	if binary == "" {
		return nil, errors.ConfigInvalid("SAMPLER_BIN is required to run fits")
	}
	if _, err := os.Stat(binary); err != nil {
		return nil, errors.ConfigInvalid("sampler binary not found: " + binary)
	}
	return &ExternalEngine{binary: binary}, nil
}

// Engine identifies the backing implementation
func (e *ExternalEngine) Engine() string {
	return filepath.Base(e.binary)
}

type jobFile struct {
	Model      ros.ModelSpec          `json:"model"`
	Data       map[string]interface{} `json:"data"`
	Chains     int                    `json:"chains"`
	Iterations int                    `json:"iterations"`
	Seed       int64                  `json:"seed"`
}

// Sample runs one engine invocation and parses its draws
func (e *ExternalEngine) Sample(ctx context.Context, spec ros.ModelSpec, data map[string]interface{}, opts ports.SampleOptions) (ports.Draws, error) {
	workDir, err := os.MkdirTemp("", "pyrostat-fit-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sampler work directory")
	}
	defer os.RemoveAll(workDir)

	jobPath := filepath.Join(workDir, "job.json")
	drawsPath := filepath.Join(workDir, "draws.csv")

	job := jobFile{
		Model:      spec,
		Data:       data,
		Chains:     opts.Chains,
		Iterations: opts.Iterations,
		Seed:       opts.Seed,
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode sampler job")
	}
	if err := os.WriteFile(jobPath, encoded, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write sampler job file")
	}

	cmd := exec.CommandContext(ctx, e.binary, "fit", "--job", jobPath, "--out", drawsPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.SamplerError(e.Engine(),
			errors.Wrapf(err, "engine failed: %s", string(output)))
	}

	draws, err := readDrawsCSV(drawsPath)
	if err != nil {
		return nil, errors.SamplerError(e.Engine(), err)
	}

	// The engine must return draws for every declared parameter; a partial
	// result is unusable for summarization.
	for _, param := range spec.Parameters() {
		if len(draws[param]) == 0 {
			return nil, errors.SamplerError(e.Engine(),
				errors.InternalError("engine returned no draws for "+param))
		}
	}
	return draws, nil
}

func readDrawsCSV(path string) (ports.Draws, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "engine produced no draws file")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse draws CSV")
	}
	if len(rows) < 2 {
		return nil, errors.InternalError("draws CSV has no draw rows")
	}

	header := rows[0]
	draws := make(ports.Draws, len(header))
	for _, name := range header {
		draws[name] = make([]float64, 0, len(rows)-1)
	}

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.InternalError("draws CSV row " + strconv.Itoa(i+1) + " has wrong width")
		}
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bad draw value at row %d column %s", i+1, header[j])
			}
			draws[header[j]] = append(draws[header[j]], v)
		}
	}
	return draws, nil
}
