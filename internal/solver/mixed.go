package solver

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/ode"
)

// mixedSamples is the dense output grid size for a mixed solve.
const mixedSamples = 100

// #region solve-mixed

// SolveMixed integrates the Lindblad master equation
//
//	dρ/ds = -i [H(s), ρ] + L_global(ρ) + L_local(ρ)
//
// for a row-major flattened density matrix across the whole anneal
// interval in one integrator call. Unlike the pure-state path there are
// no renormalization substeps; trace preservation is approximate and not
// actively corrected. Channels with a zero rate are skipped entirely.
func (sv *Solver) SolveMixed(rho0 []complex128, bath Bath, rates Rates) (*Trajectory, error) {
	dim := sv.ops.Dim
	if len(rho0) != dim*dim {
		return nil, fmt.Errorf("solver: density matrix has %d components, Fock space needs %d", len(rho0), dim*dim)
	}

	var global Dissipator
	if rates.Naive {
		global = NewGlobalDissipator(sv, bath)
	} else {
		global = NewGlobalDissipatorFast(sv, bath)
	}
	local := NewLocalDissipator(sv, bath)

	s0, s1 := sv.cfg.Interval[0], sv.cfg.Interval[1]
	res, err := ode.Solve(
		sv.masterEquation(global, local, rates),
		s0, s1, rho0,
		linspace(s0, s1, mixedSamples),
		sv.odeConfig(),
	)

	traj := &Trajectory{T: res.T, Y: res.Y, Dim: dim, Stats: res.Stats}
	if err != nil {
		return traj, fmt.Errorf("solver: mixed solve: %w", err)
	}
	return traj, nil
}

// masterEquation returns the vectorized right hand side of the Lindblad
// equation. The flattened state is reshaped in place; the commutator and
// dissipator terms are computed on the square form and flattened back.
func (sv *Solver) masterEquation(global, local Dissipator, rates Rates) ode.Func {
	dim := sv.ops.Dim
	return func(s float64, y, dy []complex128) {
		rho := linalg.WrapCMat(dim, y)
		h := sv.AnnealingH(s)

		// -i (Hρ - ρH)
		f := h.MulCMat(rho)
		f.AddScaled(-1, rho.MulSparse(h))
		f.Scale(-1i)

		if rates.Gamma != 0 {
			f.AddScaled(1, global.Apply(rho, rates.Gamma, h, s))
		}
		if rates.GammaLocal != 0 {
			f.AddScaled(1, local.Apply(rho, rates.GammaLocal, h, s))
		}
		copy(dy, f.Data())
	}
}

// #endregion solve-mixed

// #region trace

// TraceDrift returns the largest deviation of the sample traces from 1,
// a cheap sanity diagnostic for mixed trajectories.
func (tr *Trajectory) TraceDrift() float64 {
	var worst float64
	for k := range tr.Y {
		d := math.Abs(real(tr.DensityAt(k).Trace()) - 1)
		if d > worst {
			worst = d
		}
	}
	return worst
}

// #endregion trace
