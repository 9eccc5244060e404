// Package observable computes equal-time and two-time correlation
// functions and entanglement measures from solver trajectories. All
// expectation values are taken against density matrices; pure states are
// promoted to rank-1 density matrices by the caller.
package observable

import (
	"fmt"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/pauli"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

// #region correlator

// Correlator evaluates single- and two-qubit observables against density
// matrices using a shared embedded operator cache.
type Correlator struct {
	ops *pauli.OperatorSet
}

// NewCorrelator wraps an operator cache. The cache is typically the one
// the solver already built.
func NewCorrelator(ops *pauli.OperatorSet) *Correlator {
	return &Correlator{ops: ops}
}

func (c *Correlator) checkQubit(i int) {
	if i < 0 || i >= c.ops.N {
		panic(fmt.Sprintf("observable: qubit %d out of range [0,%d)", i, c.ops.N))
	}
}

// Z returns ⟨Z_i⟩ = Tr(Z_i ρ).
func (c *Correlator) Z(rho *linalg.CMat, i int) float64 {
	c.checkQubit(i)
	return real(c.ops.Z[i].TraceMulCMat(rho))
}

// Occupation0 returns the population of |0⟩ on qubit i.
func (c *Correlator) Occupation0(rho *linalg.CMat, i int) float64 {
	c.checkQubit(i)
	return real(c.ops.Proj0[i].TraceMulCMat(rho))
}

// Occupation1 returns the population of |1⟩ on qubit i.
func (c *Correlator) Occupation1(rho *linalg.CMat, i int) float64 {
	c.checkQubit(i)
	return real(c.ops.Proj1[i].TraceMulCMat(rho))
}

// ZZ returns ⟨Z_i Z_j⟩.
func (c *Correlator) ZZ(rho *linalg.CMat, i, j int) float64 {
	c.checkQubit(i)
	c.checkQubit(j)
	return real(c.ops.ZZ[i][j].TraceMulCMat(rho))
}

// ZZConnected returns the connected correlator ⟨Z_i Z_j⟩ - ⟨Z_i⟩⟨Z_j⟩.
func (c *Correlator) ZZConnected(rho *linalg.CMat, i, j int) float64 {
	return c.ZZ(rho, i, j) - c.Z(rho, i)*c.Z(rho, j)
}

// #endregion correlator

// #region two-time

// PerturbForTwoTime left-multiplies Z_j into sample k of a mixed
// trajectory and returns the flattened product as the initial condition
// for the secondary solve of the two-time protocol. The product is not a
// density matrix (it is not Hermitian), which is expected: the evolved
// operator carries the correlation.
func (c *Correlator) PerturbForTwoTime(tr *solver.Trajectory, k, j int) []complex128 {
	c.checkQubit(j)
	return c.ops.Z[j].MulCMat(tr.DensityAt(k)).Data()
}

// ZTwoTime returns the two-time correlator ⟨Z_i(t_k) Z_j(t_0)⟩ = Tr(Z_i ρ₂(t_k))
// against the secondary trajectory started from a Z_j-perturbed state.
// The result is complex in general.
func (c *Correlator) ZTwoTime(tr2 *solver.Trajectory, k, i int) complex128 {
	c.checkQubit(i)
	return c.ops.Z[i].TraceMulCMat(tr2.DensityAt(k))
}

// ZZTwoTimeConnected subtracts the disconnected product of equal-time
// expectations from the two-time correlator: ⟨Z_i(t_k) Z_j(t_kj)⟩ -
// ⟨Z_i(t_k)⟩⟨Z_j(t_kj)⟩, with the first term evaluated on the secondary
// trajectory and the expectations on the primary one.
func (c *Correlator) ZZTwoTimeConnected(tr, tr2 *solver.Trajectory, k, i, kj, j int) complex128 {
	return c.ZTwoTime(tr2, k, i) - complex(c.Z(tr.DensityAt(k), i)*c.Z(tr.DensityAt(kj), j), 0)
}

// #endregion two-time
