package linalg

import (
	"fmt"
	"math"
	"math/cmplx"
)

// #region cmat
// CMat is a square complex dense matrix in row-major order. Density
// matrices and dissipator terms live here; Hamiltonians stay in Sparse.
type CMat struct {
	n    int
	data []complex128
}

// NewCMat returns a zero n x n complex matrix.
func NewCMat(n int) *CMat {
	if n <= 0 {
		panic(fmt.Sprintf("linalg: invalid cmat dimension %d", n))
	}
	return &CMat{n: n, data: make([]complex128, n*n)}
}

// WrapCMat wraps an existing flattened row-major buffer of length n*n.
// The matrix shares the buffer; mutations are visible both ways.
func WrapCMat(n int, data []complex128) *CMat {
	if len(data) != n*n {
		panic(fmt.Sprintf("linalg: buffer length %d does not match %dx%d", len(data), n, n))
	}
	return &CMat{n: n, data: data}
}

// #endregion cmat

// #region basic

// Dim returns the matrix dimension.
func (m *CMat) Dim() int { return m.n }

// Data returns the underlying row-major buffer.
func (m *CMat) Data() []complex128 { return m.data }

// At returns the element at (i, j).
func (m *CMat) At(i, j int) complex128 { return m.data[i*m.n+j] }

// Set assigns the element at (i, j).
func (m *CMat) Set(i, j int, v complex128) { m.data[i*m.n+j] = v }

// Copy returns a deep copy of m.
func (m *CMat) Copy() *CMat {
	out := NewCMat(m.n)
	copy(out.data, m.data)
	return out
}

// Zero clears all elements in place.
func (m *CMat) Zero() {
	clear(m.data)
}

// #endregion basic

// #region arithmetic

// AddScaled performs m += c * a in place and returns m.
func (m *CMat) AddScaled(c complex128, a *CMat) *CMat {
	if a.n != m.n {
		panic(fmt.Sprintf("linalg: add dimension mismatch %d vs %d", m.n, a.n))
	}
	for i, v := range a.data {
		m.data[i] += c * v
	}
	return m
}

// Scale performs m *= c in place and returns m.
func (m *CMat) Scale(c complex128) *CMat {
	for i := range m.data {
		m.data[i] *= c
	}
	return m
}

// Mul returns the matrix product m * b.
func (m *CMat) Mul(b *CMat) *CMat {
	if b.n != m.n {
		panic(fmt.Sprintf("linalg: mul dimension mismatch %d vs %d", m.n, b.n))
	}
	n := m.n
	out := NewCMat(n)
	for i := 0; i < n; i++ {
		arow := m.data[i*n : (i+1)*n]
		orow := out.data[i*n : (i+1)*n]
		for k, av := range arow {
			if av == 0 {
				continue
			}
			brow := b.data[k*n : (k+1)*n]
			for j, bv := range brow {
				orow[j] += av * bv
			}
		}
	}
	return out
}

// MulSparse returns the product m * s for a real sparse matrix s.
func (m *CMat) MulSparse(s *Sparse) *CMat {
	if s.rows != m.n {
		panic(fmt.Sprintf("linalg: mulsparse dimension mismatch: dense %d, sparse %dx%d", m.n, s.rows, s.cols))
	}
	n := m.n
	out := NewCMat(n)
	for i := 0; i < n; i++ {
		arow := m.data[i*n : (i+1)*n]
		orow := out.data[i*n : (i+1)*n]
		for k, av := range arow {
			if av == 0 {
				continue
			}
			for l := s.rowPtr[k]; l < s.rowPtr[k+1]; l++ {
				orow[s.colInd[l]] += av * complex(s.val[l], 0)
			}
		}
	}
	return out
}

// Adjoint returns the conjugate transpose of m.
func (m *CMat) Adjoint() *CMat {
	out := NewCMat(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.data[j*m.n+i] = cmplx.Conj(m.data[i*m.n+j])
		}
	}
	return out
}

// Trace returns the sum of diagonal elements.
func (m *CMat) Trace() complex128 {
	var tr complex128
	for i := 0; i < m.n; i++ {
		tr += m.data[i*m.n+i]
	}
	return tr
}

// #endregion arithmetic

// #region constructors

// OuterC returns the outer product u * v† as an n x n matrix.
func OuterC(u, v []complex128) *CMat {
	if len(u) != len(v) {
		panic(fmt.Sprintf("linalg: outer dimension mismatch %d vs %d", len(u), len(v)))
	}
	n := len(u)
	out := NewCMat(n)
	for i, uv := range u {
		if uv == 0 {
			continue
		}
		row := out.data[i*n : (i+1)*n]
		for j, vv := range v {
			row[j] = uv * cmplx.Conj(vv)
		}
	}
	return out
}

// OuterReal returns the outer product u * vᵀ of two real vectors as a CMat.
func OuterReal(u, v []float64) *CMat {
	if len(u) != len(v) {
		panic(fmt.Sprintf("linalg: outer dimension mismatch %d vs %d", len(u), len(v)))
	}
	n := len(u)
	out := NewCMat(n)
	for i, uv := range u {
		if uv == 0 {
			continue
		}
		row := out.data[i*n : (i+1)*n]
		for j, vv := range v {
			row[j] = complex(uv*vv, 0)
		}
	}
	return out
}

// #endregion constructors

// #region vectors

// Dot returns the inner product u† · v.
func Dot(u, v []complex128) complex128 {
	if len(u) != len(v) {
		panic(fmt.Sprintf("linalg: dot dimension mismatch %d vs %d", len(u), len(v)))
	}
	var sum complex128
	for i, uv := range u {
		sum += cmplx.Conj(uv) * v[i]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v []complex128) float64 {
	var sum float64
	for _, x := range v {
		sum += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(sum)
}

// #endregion vectors
