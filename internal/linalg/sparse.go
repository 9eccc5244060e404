package linalg

import (
	"fmt"
	"sort"
)

// #region entry
// Entry is a single coordinate-format matrix element used to build a Sparse.
type Entry struct {
	Row, Col int
	V        float64
}

// #endregion entry

// #region sparse
// Sparse is a real matrix in compressed sparse row format. Hamiltonian
// operators stay sparse for the whole anneal; only eigensolves densify.
type Sparse struct {
	rows, cols int
	rowPtr     []int
	colInd     []int
	val        []float64
}

// NewSparse builds a CSR matrix from coordinate entries. Duplicate
// coordinates are summed; entries that cancel to zero are dropped.
func NewSparse(rows, cols int, entries []Entry) *Sparse {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("linalg: invalid sparse dimensions %dx%d", rows, cols))
	}
	es := make([]Entry, len(entries))
	copy(es, entries)
	sort.Slice(es, func(i, j int) bool {
		if es[i].Row != es[j].Row {
			return es[i].Row < es[j].Row
		}
		return es[i].Col < es[j].Col
	})

	s := &Sparse{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1),
	}
	for k := 0; k < len(es); {
		e := es[k]
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			panic(fmt.Sprintf("linalg: entry (%d,%d) out of range for %dx%d", e.Row, e.Col, rows, cols))
		}
		v := e.V
		k++
		for k < len(es) && es[k].Row == e.Row && es[k].Col == e.Col {
			v += es[k].V
			k++
		}
		if v != 0 {
			s.colInd = append(s.colInd, e.Col)
			s.val = append(s.val, v)
			s.rowPtr[e.Row+1]++
		}
	}
	for i := 0; i < rows; i++ {
		s.rowPtr[i+1] += s.rowPtr[i]
	}
	return s
}

// Identity returns the n-dimensional identity matrix.
func Identity(n int) *Sparse {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Row: i, Col: i, V: 1}
	}
	return NewSparse(n, n, entries)
}

// Zeros returns an empty rows x cols matrix.
func Zeros(rows, cols int) *Sparse {
	return NewSparse(rows, cols, nil)
}

// #endregion sparse

// #region accessors

// Dims returns the matrix dimensions.
func (s *Sparse) Dims() (rows, cols int) {
	return s.rows, s.cols
}

// NNZ returns the number of stored nonzero elements.
func (s *Sparse) NNZ() int {
	return len(s.val)
}

// At returns the element at (row, col).
func (s *Sparse) At(row, col int) float64 {
	if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
		panic(fmt.Sprintf("linalg: index (%d,%d) out of range for %dx%d", row, col, s.rows, s.cols))
	}
	start, end := s.rowPtr[row], s.rowPtr[row+1]
	pos := sort.SearchInts(s.colInd[start:end], col) + start
	if pos < end && s.colInd[pos] == col {
		return s.val[pos]
	}
	return 0
}

// #endregion accessors

// #region arithmetic

// Scale returns c * s as a new matrix.
func (s *Sparse) Scale(c float64) *Sparse {
	out := &Sparse{
		rows:   s.rows,
		cols:   s.cols,
		rowPtr: append([]int(nil), s.rowPtr...),
		colInd: append([]int(nil), s.colInd...),
		val:    make([]float64, len(s.val)),
	}
	for i, v := range s.val {
		out.val[i] = c * v
	}
	return out
}

// AppendScaled appends c * s to a coordinate entry list. Assembling a
// Hamiltonian as one entry list followed by a single NewSparse is much
// cheaper than repeated sparse additions.
func (s *Sparse) AppendScaled(entries []Entry, c float64) []Entry {
	if c == 0 {
		return entries
	}
	for i := 0; i < s.rows; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			entries = append(entries, Entry{Row: i, Col: s.colInd[k], V: c * s.val[k]})
		}
	}
	return entries
}

// Mul returns the sparse product s * b.
func (s *Sparse) Mul(b *Sparse) *Sparse {
	if s.cols != b.rows {
		panic(fmt.Sprintf("linalg: mul dimension mismatch %dx%d by %dx%d", s.rows, s.cols, b.rows, b.cols))
	}
	var entries []Entry
	acc := make(map[int]float64)
	for i := 0; i < s.rows; i++ {
		clear(acc)
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			j := s.colInd[k]
			v := s.val[k]
			for l := b.rowPtr[j]; l < b.rowPtr[j+1]; l++ {
				acc[b.colInd[l]] += v * b.val[l]
			}
		}
		for col, v := range acc {
			entries = append(entries, Entry{Row: i, Col: col, V: v})
		}
	}
	return NewSparse(s.rows, b.cols, entries)
}

// Kron returns the Kronecker product s ⊗ b.
func (s *Sparse) Kron(b *Sparse) *Sparse {
	entries := make([]Entry, 0, s.NNZ()*b.NNZ())
	for i := 0; i < s.rows; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			j := s.colInd[k]
			v := s.val[k]
			for bi := 0; bi < b.rows; bi++ {
				for bk := b.rowPtr[bi]; bk < b.rowPtr[bi+1]; bk++ {
					entries = append(entries, Entry{
						Row: i*b.rows + bi,
						Col: j*b.cols + b.colInd[bk],
						V:   v * b.val[bk],
					})
				}
			}
		}
	}
	return NewSparse(s.rows*b.rows, s.cols*b.cols, entries)
}

// #endregion arithmetic

// #region complex-ops

// MulVec computes dst = s * x for a complex vector x.
func (s *Sparse) MulVec(dst, x []complex128) {
	if len(x) != s.cols || len(dst) != s.rows {
		panic(fmt.Sprintf("linalg: mulvec dimension mismatch: matrix %dx%d, x %d, dst %d", s.rows, s.cols, len(x), len(dst)))
	}
	for i := 0; i < s.rows; i++ {
		var sum complex128
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			sum += complex(s.val[k], 0) * x[s.colInd[k]]
		}
		dst[i] = sum
	}
}

// MulCMat returns the product s * m for a complex dense matrix m.
func (s *Sparse) MulCMat(m *CMat) *CMat {
	if s.cols != m.n {
		panic(fmt.Sprintf("linalg: mulcmat dimension mismatch: sparse %dx%d, dense %d", s.rows, s.cols, m.n))
	}
	out := NewCMat(s.rows)
	for i := 0; i < s.rows; i++ {
		row := out.data[i*m.n : (i+1)*m.n]
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			v := complex(s.val[k], 0)
			mrow := m.data[s.colInd[k]*m.n : (s.colInd[k]+1)*m.n]
			for j, mv := range mrow {
				row[j] += v * mv
			}
		}
	}
	return out
}

// TraceMulCMat computes trace(s * m) without forming the product.
func (s *Sparse) TraceMulCMat(m *CMat) complex128 {
	if s.rows != s.cols || s.cols != m.n {
		panic(fmt.Sprintf("linalg: trace dimension mismatch: sparse %dx%d, dense %d", s.rows, s.cols, m.n))
	}
	var tr complex128
	for i := 0; i < s.rows; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			tr += complex(s.val[k], 0) * m.At(s.colInd[k], i)
		}
	}
	return tr
}

// #endregion complex-ops

// #region symmetry

// IsSymmetric reports whether s equals its transpose within tol.
func (s *Sparse) IsSymmetric(tol float64) bool {
	if s.rows != s.cols {
		return false
	}
	for i := 0; i < s.rows; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			j := s.colInd[k]
			d := s.val[k] - s.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}

// #endregion symmetry
