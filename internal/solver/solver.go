// Package solver builds time-dependent annealing Hamiltonians over the
// many-body Fock space and integrates either the Schrödinger equation
// (pure states) or a Lindblad master equation (mixed states) across the
// anneal schedule.
//
// A Solver instance owns its operator cache and the Hamiltonians built at
// construction. It must not be shared between concurrent solves; per-solve
// scalars travel in explicit Bath and Rates values instead of fields.
package solver

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/pauli"
	"github.com/danielpatrickdp/qanneal/internal/schedule"
)

// #region solver

// Solver is a time-dependent Schrödinger/Lindblad equation solver for one
// problem instance and one schedule.
type Solver struct {
	prob  Problem
	sched schedule.Provider
	cfg   Config

	ops *pauli.OperatorSet

	// isingH is the problem Hamiltonian with the offset-scaled couplings
	// at s = 1; isingHExact uses the bare couplings. Both are built once.
	isingH      *linalg.Sparse
	isingHExact *linalg.Sparse

	// aOffset is the additive transverse offset carried by the schedule.
	aOffset float64
}

// New validates the problem, builds the embedded operator cache and the
// final-time Ising Hamiltonians.
func New(prob Problem, sched schedule.Provider, cfg Config) (*Solver, error) {
	if err := prob.Validate(); err != nil {
		return nil, err
	}
	if n := len(sched.Offsets()); n != prob.N {
		return nil, fmt.Errorf("solver: schedule covers %d qubits, problem has %d", n, prob.N)
	}
	cfg = cfg.withDefaults()
	if cfg.Interval[1] <= cfg.Interval[0] {
		return nil, fmt.Errorf("solver: empty anneal interval [%g, %g]", cfg.Interval[0], cfg.Interval[1])
	}

	ops, err := pauli.NewOperatorSet(prob.N)
	if err != nil {
		return nil, err
	}

	sv := &Solver{prob: prob, sched: sched, cfg: cfg, ops: ops}
	if ao, ok := sched.(interface{ AOffset() float64 }); ok {
		sv.aOffset = ao.AOffset()
	}

	b1 := sched.B(1)
	sv.isingH = sv.BuildIsing(scaleCouplings(bij(b1), prob.J), scaleFields(b1, prob.H))
	sv.isingHExact = sv.BuildIsing(prob.J, prob.H)
	return sv, nil
}

// Ops exposes the embedded operator cache (read-only by convention).
func (sv *Solver) Ops() *pauli.OperatorSet { return sv.ops }

// Dim returns the Fock-space dimension 2^n.
func (sv *Solver) Dim() int { return sv.ops.Dim }

// Problem returns the problem instance.
func (sv *Solver) Problem() Problem { return sv.prob }

// Interval returns the normalized anneal interval.
func (sv *Solver) Interval() (s0, s1 float64) {
	return sv.cfg.Interval[0], sv.cfg.Interval[1]
}

// IsingH returns the offset-scaled problem Hamiltonian at s = 1.
func (sv *Solver) IsingH() *linalg.Sparse { return sv.isingH }

// IsingHExact returns the problem Hamiltonian with the bare couplings.
func (sv *Solver) IsingHExact() *linalg.Sparse { return sv.isingHExact }

// Schedule returns the schedule provider.
func (sv *Solver) Schedule() schedule.Provider { return sv.sched }

// #endregion solver

// #region assembler

// BuildTransverse assembles sum_i hx[i] * X_i.
func (sv *Solver) BuildTransverse(hx []float64) *linalg.Sparse {
	if len(hx) != sv.prob.N {
		panic(fmt.Sprintf("solver: transverse fields have %d entries for %d qubits", len(hx), sv.prob.N))
	}
	var entries []linalg.Entry
	for i := 0; i < sv.prob.N; i++ {
		entries = sv.ops.X[i].AppendScaled(entries, hx[i])
	}
	return linalg.NewSparse(sv.ops.Dim, sv.ops.Dim, entries)
}

// BuildIsing assembles sum_i h[i] * Z_i + sum_{i<j} J[i][j] * Z_i Z_j.
// Entries of J on or below the diagonal are ignored.
func (sv *Solver) BuildIsing(J [][]float64, h []float64) *linalg.Sparse {
	if len(J) != sv.prob.N || len(h) != sv.prob.N {
		panic(fmt.Sprintf("solver: J has %d rows, h has %d entries for %d qubits", len(J), len(h), sv.prob.N))
	}
	var entries []linalg.Entry
	for i := 0; i < sv.prob.N; i++ {
		entries = sv.ops.Z[i].AppendScaled(entries, h[i])
		for j := 0; j < i; j++ {
			entries = sv.ops.ZZ[j][i].AppendScaled(entries, J[j][i])
		}
	}
	return linalg.NewSparse(sv.ops.Dim, sv.ops.Dim, entries)
}

// AnnealingH builds H(s) = energyscale * (-transverse(A(s)+aOffset) +
// ising(Bij(s)∘J, B(s)∘h)). It runs at every integrator stage and stays
// sparse throughout.
func (sv *Solver) AnnealingH(s float64) *linalg.Sparse {
	a := sv.sched.A(s)
	hx := make([]float64, len(a))
	for i, ai := range a {
		hx[i] = ai + sv.aOffset
	}
	b := sv.sched.B(s)

	var entries []linalg.Entry
	scale := sv.prob.EnergyScale
	entries = sv.BuildTransverse(hx).AppendScaled(entries, -scale)
	entries = sv.BuildIsing(scaleCouplings(bij(b), sv.prob.J), scaleFields(b, sv.prob.H)).AppendScaled(entries, scale)
	return linalg.NewSparse(sv.ops.Dim, sv.ops.Dim, entries)
}

// bij returns the effective coupling scales sqrt(B[i]*B[j]), the geometric
// mean that encodes per-qubit annealing offsets in the pair couplings.
func bij(b []float64) [][]float64 {
	n := len(b)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = math.Sqrt(b[i] * b[j])
		}
	}
	return out
}

func scaleCouplings(scales, J [][]float64) [][]float64 {
	out := make([][]float64, len(J))
	for i := range J {
		out[i] = make([]float64, len(J[i]))
		for j := range J[i] {
			out[i][j] = scales[i][j] * J[i][j]
		}
	}
	return out
}

func scaleFields(scales, h []float64) []float64 {
	out := make([]float64, len(h))
	for i := range h {
		out[i] = scales[i] * h[i]
	}
	return out
}

// #endregion assembler
