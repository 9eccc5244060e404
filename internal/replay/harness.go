package replay

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/qanneal/internal/schedule"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

// #region execute

// defaultNGrid matches the checkpoint count used by the anneal CLI when a
// spec leaves it unset.
const defaultNGrid = 11

// Execute runs the solve a RunSpec describes and returns its trajectory.
func Execute(spec RunSpec) (*solver.Trajectory, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	sched, err := schedule.New(spec.Schedule, spec.Problem.N)
	if err != nil {
		return nil, err
	}
	sv, err := solver.New(spec.Problem, sched, spec.Config)
	if err != nil {
		return nil, err
	}
	kind, err := solver.ParseWaveKind(spec.Wavefunction)
	if err != nil {
		return nil, err
	}

	switch spec.Kind {
	case "pure":
		psi0, err := sv.InitWavefunction(kind)
		if err != nil {
			return nil, err
		}
		ngrid := spec.NGrid
		if ngrid == 0 {
			ngrid = defaultNGrid
		}
		return sv.SolvePure(psi0, ngrid)
	case "mixed":
		rho0, bath, err := sv.InitDensityMatrix(spec.Temp, spec.TempLocal, kind)
		if err != nil {
			return nil, err
		}
		return sv.SolveMixed(rho0, bath, spec.Rates)
	default:
		return nil, fmt.Errorf("replay: unknown run kind %q", spec.Kind)
	}
}

// #endregion execute

// #region compare

// Report summarizes a trajectory comparison.
type Report struct {
	Samples      int
	MaxTimeDiff  float64
	MaxStateDiff float64
	Match        bool
	Mismatch     string
}

// Compare checks two trajectories sample by sample against a tolerance on
// the largest componentwise deviation.
func Compare(stored, recomputed *solver.Trajectory, tol float64) Report {
	rep := Report{Samples: stored.Len()}
	if stored.Len() != recomputed.Len() {
		rep.Mismatch = fmt.Sprintf("sample count: stored %d, recomputed %d", stored.Len(), recomputed.Len())
		return rep
	}
	for k := range stored.T {
		if d := math.Abs(stored.T[k] - recomputed.T[k]); d > rep.MaxTimeDiff {
			rep.MaxTimeDiff = d
		}
		if len(stored.Y[k]) != len(recomputed.Y[k]) {
			rep.Mismatch = fmt.Sprintf("sample %d: stored %d components, recomputed %d", k, len(stored.Y[k]), len(recomputed.Y[k]))
			return rep
		}
		for a := range stored.Y[k] {
			re := real(stored.Y[k][a] - recomputed.Y[k][a])
			im := imag(stored.Y[k][a] - recomputed.Y[k][a])
			if d := math.Hypot(re, im); d > rep.MaxStateDiff {
				rep.MaxStateDiff = d
			}
		}
	}
	if rep.MaxStateDiff <= tol && rep.MaxTimeDiff <= tol {
		rep.Match = true
	} else {
		rep.Mismatch = fmt.Sprintf("max state diff %.3e, max time diff %.3e, tolerance %.3e", rep.MaxStateDiff, rep.MaxTimeDiff, tol)
	}
	return rep
}

// #endregion compare
