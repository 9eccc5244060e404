package solver

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/pauli"
	"github.com/danielpatrickdp/qanneal/internal/schedule"
)

// #region interface

// Dissipator computes one Lindblad superoperator contribution to dρ/dt
// given the current density matrix, rate, instantaneous Hamiltonian and
// normalized time. A zero rate must short-circuit to a zero matrix
// without touching the eigensolver.
type Dissipator interface {
	Apply(rho *linalg.CMat, gamma float64, h *linalg.Sparse, s float64) *linalg.CMat
}

// #endregion interface

// #region local

// LocalDissipator models independent thermal relaxation channels per
// qubit, keyed on the sign of the static field. It needs no
// diagonalization: the level gap of qubit i is 2|h_i| and the thermal
// counter-term is Boltzmann-weighted with the instantaneous B_i(s).
type LocalDissipator struct {
	ops       *pauli.OperatorSet
	fields    []float64
	sched     schedule.Provider
	betaLocal float64
}

// NewLocalDissipator binds the per-qubit channel to a solver and bath.
func NewLocalDissipator(sv *Solver, bath Bath) *LocalDissipator {
	return &LocalDissipator{
		ops:       sv.ops,
		fields:    sv.prob.H,
		sched:     sv.sched,
		betaLocal: bath.BetaLocal,
	}
}

// Apply accumulates, for each qubit, the dominant relaxation pair and its
// Boltzmann-suppressed reverse process.
func (d *LocalDissipator) Apply(rho *linalg.CMat, gamma float64, h *linalg.Sparse, s float64) *linalg.CMat {
	out := linalg.NewCMat(rho.Dim())
	if gamma == 0 {
		return out
	}
	b := d.sched.B(s)
	for i := range d.fields {
		gap := 2 * math.Abs(d.fields[i])
		e := complex(math.Exp(-d.betaLocal*b[i]*gap), 0)

		up, down := d.ops.Raising[i], d.ops.Lowering[i]
		p0, p1 := d.ops.Proj0[i], d.ops.Proj1[i]
		if d.fields[i] > 0 {
			// Field pushes toward |1>: relax upward, counter-term downward.
			accumulateChannel(out, rho, up, down, p0, 1)
			accumulateChannel(out, rho, down, up, p1, e)
		} else {
			accumulateChannel(out, rho, down, up, p1, 1)
			accumulateChannel(out, rho, up, down, p0, e)
		}
	}
	return out.Scale(complex(gamma, 0))
}

// accumulateChannel adds w * (2 L ρ L† - L†L ρ - ρ L†L) where the jump
// operator L and its normalization L†L (a projector here) are supplied by
// the caller.
func accumulateChannel(out, rho *linalg.CMat, jump, jumpAdj, proj *linalg.Sparse, w complex128) {
	out.AddScaled(2*w, jump.MulCMat(rho).MulSparse(jumpAdj))
	out.AddScaled(-w, proj.MulCMat(rho))
	out.AddScaled(-w, rho.MulSparse(proj))
}

// #endregion local

// #region global-naive

// GlobalDissipator is the reference wide-band-limit formulation: it
// diagonalizes H and accumulates the Lindblad double-commutator form over
// explicit eigenbasis transition operators for every level pair. It is
// O(D³) per pair and exists as the cross-check for the optimized variant.
type GlobalDissipator struct {
	energyScale float64
	beta        float64
	// onEigensolve fires before every diagonalization; tests hook it to
	// verify the zero-rate short-circuit.
	onEigensolve func()
}

// NewGlobalDissipator binds the naive wide-band channel to a solver and bath.
func NewGlobalDissipator(sv *Solver, bath Bath) *GlobalDissipator {
	return &GlobalDissipator{energyScale: sv.prob.EnergyScale, beta: bath.Beta}
}

func (d *GlobalDissipator) Apply(rho *linalg.CMat, gamma float64, h *linalg.Sparse, s float64) *linalg.CMat {
	out := linalg.NewCMat(rho.Dim())
	if gamma == 0 {
		return out
	}
	if d.onEigensolve != nil {
		d.onEigensolve()
	}
	values, vectors, err := linalg.SymEigen(h)
	if err != nil {
		panic(fmt.Sprintf("solver: dissipator eigensolve: %v", err))
	}

	for j := range values {
		vj := linalg.ColumnReal(vectors, j)
		for i := 0; i < j; i++ {
			vi := linalg.ColumnReal(vectors, i)
			gap := values[j] - values[i]
			e := complex(math.Exp(-d.beta*gap/d.energyScale), 0)

			lowering := linalg.OuterReal(vi, vj)
			raising := lowering.Adjoint()

			rhoRaising := rho.Mul(raising)
			rhoLowering := rho.Mul(lowering)
			raisingRho := raising.Mul(rho)
			loweringRho := lowering.Mul(rho)

			// lowering (2 ρ raising - e raising ρ)
			t := rhoRaising.Copy().Scale(2).AddScaled(-e, raisingRho)
			out.AddScaled(1, lowering.Mul(t))
			// raising (2e ρ lowering - lowering ρ)
			t = rhoLowering.Copy().Scale(2 * e).AddScaled(-1, loweringRho)
			out.AddScaled(1, raising.Mul(t))

			out.AddScaled(-1, rhoRaising.Mul(lowering))
			out.AddScaled(-e, rhoLowering.Mul(raising))
		}
	}
	return out.Scale(complex(gamma, 0))
}

// #endregion global-naive

// #region global-fast

// GlobalDissipatorFast is algebraically identical to GlobalDissipator but
// precomputes per-eigenstate expectation values and projector tensors once
// per call, replacing the per-pair matrix products with scaled tensor
// accumulation. Equivalence with the naive form is enforced by property
// tests, not assumed.
type GlobalDissipatorFast struct {
	energyScale  float64
	beta         float64
	onEigensolve func()
}

// NewGlobalDissipatorFast binds the optimized wide-band channel to a
// solver and bath.
func NewGlobalDissipatorFast(sv *Solver, bath Bath) *GlobalDissipatorFast {
	return &GlobalDissipatorFast{energyScale: sv.prob.EnergyScale, beta: bath.Beta}
}

func (d *GlobalDissipatorFast) Apply(rho *linalg.CMat, gamma float64, h *linalg.Sparse, s float64) *linalg.CMat {
	out := linalg.NewCMat(rho.Dim())
	if gamma == 0 {
		return out
	}
	if d.onEigensolve != nil {
		d.onEigensolve()
	}
	values, vectors, err := linalg.SymEigen(h)
	if err != nil {
		panic(fmt.Sprintf("solver: dissipator eigensolve: %v", err))
	}

	dim := rho.Dim()
	// Per-eigenstate precomputation: diagonal expectation values plus the
	// three projector-shaped tensors the pair loop combines.
	rhoDiag := make([]complex128, dim)
	proj := make([]*linalg.CMat, dim)
	projRho := make([]*linalg.CMat, dim)
	rhoProj := make([]*linalg.CMat, dim)
	for i := 0; i < dim; i++ {
		vi := linalg.ColumnReal(vectors, i)
		left := make([]complex128, dim)  // ρ v_i
		right := make([]complex128, dim) // v_i† ρ
		for a := 0; a < dim; a++ {
			var l, r complex128
			for c := 0; c < dim; c++ {
				l += rho.At(a, c) * complex(vi[c], 0)
				r += complex(vi[c], 0) * rho.At(c, a)
			}
			left[a] = l
			right[a] = r
		}
		var diag complex128
		for a := 0; a < dim; a++ {
			diag += complex(vi[a], 0) * right[a]
		}
		rhoDiag[i] = diag
		proj[i] = linalg.OuterReal(vi, vi)
		projRho[i] = columnTimesRow(vi, right)
		rhoProj[i] = colTimesRealRow(left, vi)
	}

	for j := 0; j < dim; j++ {
		for i := 0; i < j; i++ {
			gap := values[j] - values[i]
			e := complex(math.Exp(-d.beta*gap/d.energyScale), 0)

			out.AddScaled(2*rhoDiag[j], proj[i])
			out.AddScaled(2*e*rhoDiag[i], proj[j])
			out.AddScaled(-1, projRho[j])
			out.AddScaled(-1, rhoProj[j])
			out.AddScaled(-e, projRho[i])
			out.AddScaled(-e, rhoProj[i])
		}
	}
	return out.Scale(complex(gamma, 0))
}

// columnTimesRow forms v * rᵀ for a real column and complex row.
func columnTimesRow(v []float64, r []complex128) *linalg.CMat {
	n := len(v)
	out := linalg.NewCMat(n)
	for a := 0; a < n; a++ {
		if v[a] == 0 {
			continue
		}
		va := complex(v[a], 0)
		for b := 0; b < n; b++ {
			out.Set(a, b, va*r[b])
		}
	}
	return out
}

// colTimesRealRow forms c * vᵀ for a complex column and real row.
func colTimesRealRow(c []complex128, v []float64) *linalg.CMat {
	n := len(c)
	out := linalg.NewCMat(n)
	for a := 0; a < n; a++ {
		if c[a] == 0 {
			continue
		}
		for b := 0; b < n; b++ {
			out.Set(a, b, c[a]*complex(v[b], 0))
		}
	}
	return out
}

// #endregion global-fast
