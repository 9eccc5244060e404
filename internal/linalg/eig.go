package linalg

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// #region sym-eigen

// SymEigen densifies a real symmetric sparse matrix and returns its
// eigendecomposition with eigenvalues in ascending order. Column i of the
// returned matrix is the eigenvector for values[i]. The anneal Hamiltonians
// are real symmetric (X and Z embeddings are real), so this covers every
// eigensolve on the evolution path.
func SymEigen(s *Sparse) (values []float64, vectors *mat.Dense, err error) {
	if s.rows != s.cols {
		return nil, nil, fmt.Errorf("symeigen: matrix is %dx%d, not square", s.rows, s.cols)
	}
	sym := mat.NewSymDense(s.rows, nil)
	for i := 0; i < s.rows; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			j := s.colInd[k]
			if j >= i {
				sym.SetSym(i, j, s.val[k])
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, fmt.Errorf("symeigen: factorization failed for %dx%d matrix", s.rows, s.cols)
	}
	values = es.Values(nil)
	vectors = mat.NewDense(s.rows, s.rows, nil)
	es.VectorsTo(vectors)
	return values, vectors, nil
}

// Column extracts column j of a dense matrix as a complex vector.
func Column(m *mat.Dense, j int) []complex128 {
	rows, _ := m.Dims()
	out := make([]complex128, rows)
	for i := range out {
		out[i] = complex(m.At(i, j), 0)
	}
	return out
}

// ColumnReal extracts column j of a dense matrix as a real vector.
func ColumnReal(m *mat.Dense, j int) []float64 {
	rows, _ := m.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = m.At(i, j)
	}
	return out
}

// #endregion sym-eigen

// #region herm-eigen

// HermEigenvalues returns the eigenvalues of a complex Hermitian matrix in
// ascending order. The matrix M = A + iB is embedded as the real symmetric
// [[A, -B], [B, A]], whose spectrum is that of M with every eigenvalue
// doubled; one value per pair is kept.
func HermEigenvalues(m *CMat) ([]float64, error) {
	n := m.n
	emb := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := m.At(i, j)
			emb.SetSym(i, j, real(v))
			emb.SetSym(n+i, n+j, real(v))
			// Antisymmetric block: only the upper triangle is written.
			emb.SetSym(i, n+j, -imag(v))
			if i != j {
				emb.SetSym(j, n+i, imag(v))
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(emb, false); !ok {
		return nil, fmt.Errorf("hermeigen: factorization failed for %dx%d matrix", n, n)
	}
	all := es.Values(nil)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = all[2*i]
	}
	return vals, nil
}

// IsHermitian reports whether m equals its conjugate transpose within tol.
func (m *CMat) IsHermitian(tol float64) bool {
	for i := 0; i < m.n; i++ {
		for j := i; j < m.n; j++ {
			if cmplx.Abs(m.At(i, j)-cmplx.Conj(m.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

// #endregion herm-eigen
