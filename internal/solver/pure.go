package solver

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/qanneal/internal/ode"
)

// pureSamplesPerLeg is the dense output grid size inside each
// renormalization subinterval.
const pureSamplesPerLeg = 100

// #region solve-pure

// SolvePure integrates the Schrödinger equation dψ/ds = -i H(s) ψ across
// the anneal interval, split into ngrid-1 subintervals. The state is
// renormalized at every subinterval boundary to undo the norm drift of
// the non-unitary numerical integrator. A failure in any subinterval
// aborts the whole solve; the error carries the partial trajectory.
func (sv *Solver) SolvePure(psi0 []complex128, ngrid int) (*Trajectory, error) {
	if len(psi0) != sv.ops.Dim {
		return nil, fmt.Errorf("solver: initial state has %d components, Fock space needs %d", len(psi0), sv.ops.Dim)
	}
	if ngrid < 2 {
		return nil, fmt.Errorf("solver: checkpoint grid needs at least 2 points, got %d", ngrid)
	}

	s0, s1 := sv.cfg.Interval[0], sv.cfg.Interval[1]
	grid := linspace(s0, s1, ngrid)
	cfg := sv.odeConfig()

	traj := &Trajectory{Dim: sv.ops.Dim}
	y := append([]complex128(nil), psi0...)

	for leg := 0; leg < ngrid-1; leg++ {
		renormalize(y)
		res, err := ode.Solve(sv.applyH, grid[leg], grid[leg+1], y, linspace(grid[leg], grid[leg+1], pureSamplesPerLeg), cfg)

		// Keep whatever was accepted so the failure is inspectable.
		appendSamples(traj, res, leg > 0)
		traj.Stats.Steps += res.Stats.Steps
		traj.Stats.Rejected += res.Stats.Rejected
		traj.Stats.Evals += res.Stats.Evals
		if err != nil {
			return traj, fmt.Errorf("solver: pure solve leg %d of %d: %w", leg+1, ngrid-1, err)
		}
		y = append(y[:0], res.Y[len(res.Y)-1]...)
	}
	return traj, nil
}

// applyH computes dψ = -i H(s) ψ.
func (sv *Solver) applyH(s float64, y, dy []complex128) {
	sv.AnnealingH(s).MulVec(dy, y)
	for i, v := range dy {
		dy[i] = -1i * v
	}
}

func (sv *Solver) odeConfig() ode.Config {
	return ode.Config{
		Method:   sv.cfg.Method,
		RTol:     sv.cfg.RTol,
		ATol:     sv.cfg.ATol,
		MaxSteps: sv.cfg.MaxSteps,
	}
}

// appendSamples concatenates a subinterval result onto the trajectory,
// dropping the duplicated boundary sample on every leg after the first.
func appendSamples(traj *Trajectory, res ode.Result, dropFirst bool) {
	start := 0
	if dropFirst && len(res.T) > 0 {
		start = 1
	}
	traj.T = append(traj.T, res.T[start:]...)
	traj.Y = append(traj.Y, res.Y[start:]...)
}

func renormalize(y []complex128) {
	norm := 0.0
	for _, v := range y {
		norm += real(v)*real(v) + imag(v)*imag(v)
	}
	if norm == 0 {
		return
	}
	inv := complex(1/math.Sqrt(norm), 0)
	for i := range y {
		y[i] *= inv
	}
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	out[n-1] = b
	return out
}

// #endregion solve-pure
