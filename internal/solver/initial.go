package solver

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
)

// #region init-eigen

// InitEigen diagonalizes the initial Hamiltonian for the chosen kind:
// the full annealing Hamiltonian at the interval start in units of the
// energy scale (TrueGround), or the bare negated transverse term
// (TransverseGround).
func (sv *Solver) InitEigen(kind WaveKind) (values []float64, vectors *mat.Dense, err error) {
	switch kind {
	case TrueGround:
		h := sv.AnnealingH(sv.cfg.Interval[0]).Scale(1 / sv.prob.EnergyScale)
		return linalg.SymEigen(h)
	case TransverseGround:
		t := sv.BuildTransverse(sv.sched.A(0)).Scale(-1)
		return linalg.SymEigen(t)
	default:
		return nil, nil, fmt.Errorf("solver: unknown initial wavefunction kind %v", kind)
	}
}

// InitWavefunction returns the normalized ground state of the initial
// Hamiltonian of the given kind.
func (sv *Solver) InitWavefunction(kind WaveKind) ([]complex128, error) {
	_, vectors, err := sv.InitEigen(kind)
	if err != nil {
		return nil, err
	}
	return linalg.Column(vectors, 0), nil
}

// #endregion init-eigen

// #region init-density

// InitDensityMatrix builds the thermal state
// rho(s0) = exp(-beta H(s0)) / Tr(exp(-beta H(s0))) over the eigenbasis of
// the initial Hamiltonian, flattened row-major to length Dim². The derived
// Bath must be passed on to SolveMixed.
func (sv *Solver) InitDensityMatrix(temp, tempLocal float64, kind WaveKind) ([]complex128, Bath, error) {
	bath, err := NewBath(temp, tempLocal)
	if err != nil {
		return nil, Bath{}, err
	}
	values, vectors, err := sv.InitEigen(kind)
	if err != nil {
		return nil, Bath{}, err
	}

	// Boltzmann weights relative to the ground state energy.
	weights := make([]float64, len(values))
	var total float64
	for i, v := range values {
		weights[i] = math.Exp(-bath.Beta * (v - values[0]))
		total += weights[i]
	}

	rho := linalg.NewCMat(sv.ops.Dim)
	for i := range weights {
		w := weights[i] / total
		if w == 0 {
			continue
		}
		col := linalg.Column(vectors, i)
		rho.AddScaled(complex(w, 0), linalg.OuterC(col, col))
	}
	return rho.Data(), bath, nil
}

// #endregion init-density

// #region diagnostics

// GroundStateDegeneracy diagonalizes H and returns the indices of all
// eigenstates degenerate with the ground state within tol, together with
// the full spectrum.
func GroundStateDegeneracy(h *linalg.Sparse, tol float64) (idx []int, values []float64, vectors *mat.Dense, err error) {
	values, vectors, err = linalg.SymEigen(h)
	if err != nil {
		return nil, nil, nil, err
	}
	ref := math.Max(1, math.Abs(values[0]))
	for i, v := range values {
		if math.Abs(v-values[0]) <= tol*ref {
			idx = append(idx, i)
		}
	}
	return idx, values, vectors, nil
}

// Overlap sums |<v_k|psi>|² over the eigenvector columns named by idx,
// which measures ground-state probability in presence of degeneracy.
func Overlap(vectors *mat.Dense, psi []complex128, idx []int) float64 {
	var total float64
	for _, k := range idx {
		amp := linalg.Dot(linalg.Column(vectors, k), psi)
		a := cmplx.Abs(amp)
		total += a * a
	}
	return total
}

// #endregion diagnostics
