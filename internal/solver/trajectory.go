package solver

import (
	"fmt"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/ode"
)

// #region trajectory

// Trajectory is an ordered sequence of (time, state) samples. For pure
// solves Y[k] is a state vector of length Dim; for mixed solves it is a
// row-major flattened density matrix of length Dim². Trajectories are
// immutable once returned.
type Trajectory struct {
	T     []float64
	Y     [][]complex128
	Dim   int
	Stats ode.Statistics
}

// Len returns the number of samples.
func (tr *Trajectory) Len() int { return len(tr.T) }

// Final returns the last sample.
func (tr *Trajectory) Final() []complex128 {
	if len(tr.Y) == 0 {
		return nil
	}
	return tr.Y[len(tr.Y)-1]
}

// FinalProbability returns the total probability ⟨ψ|ψ⟩ of the last pure
// sample, a drift diagnostic that should stay near 1.
func (tr *Trajectory) FinalProbability() float64 {
	psi := tr.Final()
	if psi == nil {
		return 0
	}
	n := linalg.Norm(psi)
	return n * n
}

// DensityAt reshapes mixed-state sample k to a Dim x Dim matrix sharing
// the sample's buffer.
func (tr *Trajectory) DensityAt(k int) *linalg.CMat {
	if k < 0 || k >= len(tr.Y) {
		panic(fmt.Sprintf("solver: trajectory sample %d out of range [0,%d)", k, len(tr.Y)))
	}
	return linalg.WrapCMat(tr.Dim, tr.Y[k])
}

// #endregion trajectory
