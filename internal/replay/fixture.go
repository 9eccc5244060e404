// Package replay re-executes solves from persisted parameter sets and
// compares the recomputed trajectories against stored ones. It backs the
// replay CLI in both database mode (params_json from a runs row) and
// fixture mode (a standalone JSON file).
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/qanneal/internal/schedule"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

// #region run-spec

// RunSpec is the complete JSON-serializable description of one solve: the
// problem instance, schedule, integrator configuration and the solve mode.
// It is what gets content-hashed and persisted alongside a run.
type RunSpec struct {
	// Kind selects the evolution: "pure" or "mixed".
	Kind string `json:"kind"`
	// Wavefunction selects the initial state: "true" or "transverse".
	Wavefunction string `json:"wavefunction"`
	// NGrid is the pure-state checkpoint count; ignored for mixed runs.
	NGrid int `json:"ngrid,omitempty"`
	// Temp and TempLocal are bath temperatures in kelvin; mixed runs only.
	Temp      float64 `json:"temp,omitempty"`
	TempLocal float64 `json:"temp_local,omitempty"`

	Problem  solver.Problem  `json:"problem"`
	Schedule schedule.Params `json:"schedule"`
	Config   solver.Config   `json:"config"`
	Rates    solver.Rates    `json:"rates,omitempty"`
}

// Validate checks the mode fields; problem and schedule validation happens
// at solver construction.
func (sp RunSpec) Validate() error {
	switch sp.Kind {
	case "pure", "mixed":
	default:
		return fmt.Errorf("replay: unknown run kind %q", sp.Kind)
	}
	if _, err := solver.ParseWaveKind(sp.Wavefunction); err != nil {
		return err
	}
	if sp.Kind == "pure" && sp.NGrid != 0 && sp.NGrid < 2 {
		return fmt.Errorf("replay: ngrid must be at least 2, got %d", sp.NGrid)
	}
	return nil
}

// #endregion run-spec

// #region loading

// ParseSpec decodes a RunSpec from JSON, typically the params_json column
// of a stored run.
func ParseSpec(data []byte) (RunSpec, error) {
	var spec RunSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return RunSpec{}, fmt.Errorf("replay: decode run spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return RunSpec{}, err
	}
	return spec, nil
}

// LoadFixture reads a RunSpec from a standalone JSON file.
func LoadFixture(path string) (RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunSpec{}, fmt.Errorf("replay: read fixture: %w", err)
	}
	return ParseSpec(data)
}

// #endregion loading
