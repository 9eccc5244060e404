// Package pauli builds single-qubit spin operators and their embeddings
// into the full 2^n-dimensional tensor-product space.
//
// Qubit 0 occupies the most significant bit of the basis-state index: the
// embedding of a local operator at site i is I ⊗ ... ⊗ op ⊗ ... ⊗ I with
// Kronecker factors ordered left to right by site. The partial traces in
// the observable package rely on the same convention.
package pauli

import (
	"fmt"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
)

// #region constants

// Single-qubit operators in the {|0>, |1>} basis.
var (
	I2       = linalg.Identity(2)
	X        = linalg.NewSparse(2, 2, []linalg.Entry{{Row: 0, Col: 1, V: 1}, {Row: 1, Col: 0, V: 1}})
	Z        = linalg.NewSparse(2, 2, []linalg.Entry{{Row: 0, Col: 0, V: 1}, {Row: 1, Col: 1, V: -1}})
	Proj0    = linalg.NewSparse(2, 2, []linalg.Entry{{Row: 0, Col: 0, V: 1}})
	Proj1    = linalg.NewSparse(2, 2, []linalg.Entry{{Row: 1, Col: 1, V: 1}})
	Raising  = linalg.NewSparse(2, 2, []linalg.Entry{{Row: 1, Col: 0, V: 1}})
	Lowering = linalg.NewSparse(2, 2, []linalg.Entry{{Row: 0, Col: 1, V: 1}})
)

// #endregion constants

// MaxQubits is the practical ceiling on the qubit count. Mixed-state
// evolution carries 4^n-component vectors and the optimized wide-band
// dissipator holds 8^n-element projector tensors, so memory runs out far
// below the integer index limit.
const MaxQubits = 14

// #region operator-set

// OperatorSet caches the embedded operator family for an n-qubit system.
// It is built once per solver instance and never mutated afterwards.
type OperatorSet struct {
	N   int
	Dim int

	X        []*linalg.Sparse
	Z        []*linalg.Sparse
	Proj0    []*linalg.Sparse
	Proj1    []*linalg.Sparse
	Raising  []*linalg.Sparse
	Lowering []*linalg.Sparse

	// ZZ[i][j] is the embedded product Z_i * Z_j, including i == j.
	ZZ [][]*linalg.Sparse
}

// NewOperatorSet embeds every single-qubit operator at every site and
// builds the pairwise ZZ family.
func NewOperatorSet(n int) (*OperatorSet, error) {
	if n < 1 {
		return nil, fmt.Errorf("pauli: qubit count must be positive, got %d", n)
	}
	if n > MaxQubits {
		return nil, fmt.Errorf("pauli: qubit count %d exceeds ceiling %d", n, MaxQubits)
	}

	ops := &OperatorSet{
		N:        n,
		Dim:      1 << n,
		X:        make([]*linalg.Sparse, n),
		Z:        make([]*linalg.Sparse, n),
		Proj0:    make([]*linalg.Sparse, n),
		Proj1:    make([]*linalg.Sparse, n),
		Raising:  make([]*linalg.Sparse, n),
		Lowering: make([]*linalg.Sparse, n),
		ZZ:       make([][]*linalg.Sparse, n),
	}

	for i := 0; i < n; i++ {
		ops.X[i] = Embed(X, i, n)
		ops.Z[i] = Embed(Z, i, n)
		ops.Proj0[i] = Embed(Proj0, i, n)
		ops.Proj1[i] = Embed(Proj1, i, n)
		ops.Raising[i] = Embed(Raising, i, n)
		ops.Lowering[i] = Embed(Lowering, i, n)
	}
	for i := 0; i < n; i++ {
		ops.ZZ[i] = make([]*linalg.Sparse, n)
		for j := 0; j < n; j++ {
			ops.ZZ[i][j] = ops.Z[i].Mul(ops.Z[j])
		}
	}
	return ops, nil
}

// #endregion operator-set

// #region embed

// Embed places a 2x2 operator at site i of an n-qubit chain, with identity
// on every other site.
func Embed(local *linalg.Sparse, i, n int) *linalg.Sparse {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("pauli: site %d out of range for %d qubits", i, n))
	}
	fock := linalg.Identity(1)
	for j := 0; j < n; j++ {
		if j == i {
			fock = fock.Kron(local)
		} else {
			fock = fock.Kron(I2)
		}
	}
	return fock
}

// #endregion embed
