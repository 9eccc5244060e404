package observable

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
)

// negEigTol bounds how negative a reduced-density eigenvalue (or a final
// entropy) may be before the computation is reported as ill conditioned
// rather than clamped.
const negEigTol = 1e-9

// #region partition

// Partition names the qubits kept in subsystem A and the complement that
// gets traced out.
type Partition struct {
	Keep  []int
	Trace []int
}

// SplitByOffset derives the entanglement partition from per-qubit
// annealing offsets: qubits with a negative offset are traced out, the
// rest form subsystem A. Degenerate offset windows are handled upstream
// by the schedule's partition-offset substitution.
func SplitByOffset(offsets []float64) Partition {
	var p Partition
	for i, off := range offsets {
		if off < 0 {
			p.Trace = append(p.Trace, i)
		} else {
			p.Keep = append(p.Keep, i)
		}
	}
	return p
}

// Complement returns the partition with the two subsystems swapped.
func (p Partition) Complement() Partition {
	return Partition{Keep: p.Trace, Trace: p.Keep}
}

// #endregion partition

// #region partial-trace

// PartialTrace contracts the complement of keep out of an n-qubit density
// matrix. Qubit 0 occupies the most significant bit of the basis index,
// matching the operator embedding order, and the kept qubits retain their
// relative order in the reduced matrix.
func PartialTrace(rho *linalg.CMat, n int, keep []int) (*linalg.CMat, error) {
	dim := 1 << n
	if rho.Dim() != dim {
		return nil, fmt.Errorf("observable: density matrix is %d-dimensional, %d qubits need %d", rho.Dim(), n, dim)
	}
	seen := make(map[int]bool, len(keep))
	for _, q := range keep {
		if q < 0 || q >= n {
			return nil, fmt.Errorf("observable: kept qubit %d out of range [0,%d)", q, n)
		}
		if seen[q] {
			return nil, fmt.Errorf("observable: qubit %d kept twice", q)
		}
		seen[q] = true
	}
	kept := append([]int(nil), keep...)
	sort.Ints(kept)
	var traced []int
	for q := 0; q < n; q++ {
		if !seen[q] {
			traced = append(traced, q)
		}
	}

	nA := len(kept)
	dimA := 1 << nA
	dimE := 1 << (n - nA)
	// bit(q) is the position of qubit q inside a full basis index.
	bit := func(q int) int { return n - 1 - q }

	out := linalg.NewCMat(dimA)
	for a := 0; a < dimA; a++ {
		for b := 0; b < dimA; b++ {
			// Scatter the reduced indices onto the kept qubit positions.
			var baseA, baseB int
			for k, q := range kept {
				if a>>(nA-1-k)&1 == 1 {
					baseA |= 1 << bit(q)
				}
				if b>>(nA-1-k)&1 == 1 {
					baseB |= 1 << bit(q)
				}
			}
			var sum complex128
			for e := 0; e < dimE; e++ {
				env := 0
				for k, q := range traced {
					if e>>(len(traced)-1-k)&1 == 1 {
						env |= 1 << bit(q)
					}
				}
				sum += rho.At(baseA|env, baseB|env)
			}
			out.Set(a, b, sum)
		}
	}
	return out, nil
}

// #endregion partial-trace

// #region entropy

// spectralEntropy evaluates -Tr(m log2 m) after adding reg to the
// diagonal, through the eigenvalue spectrum rather than an explicit
// matrix logarithm. Eigenvalues below -negEigTol are reported as an
// ill-conditioned input.
func spectralEntropy(m *linalg.CMat, reg float64) (float64, error) {
	r := m.Copy()
	for i := 0; i < r.Dim(); i++ {
		r.Set(i, i, r.At(i, i)+complex(reg, 0))
	}
	values, err := linalg.HermEigenvalues(r)
	if err != nil {
		return 0, fmt.Errorf("observable: entropy eigensolve: %w", err)
	}
	var s float64
	for _, v := range values {
		if v < -negEigTol {
			return 0, fmt.Errorf("observable: reduced density matrix has negative eigenvalue %g", v)
		}
		if v > 0 {
			s -= v * math.Log2(v)
		}
	}
	if s < -negEigTol {
		return 0, fmt.Errorf("observable: entropy %g below zero beyond tolerance", s)
	}
	return s, nil
}

// EntanglementEntropy traces out the complement of keep and returns the
// von Neumann entropy of the reduced state in bits.
func EntanglementEntropy(rho *linalg.CMat, n int, keep []int, reg float64) (float64, error) {
	rhoA, err := PartialTrace(rho, n, keep)
	if err != nil {
		return 0, err
	}
	return spectralEntropy(rhoA, reg)
}

// VonNeumannEntropy returns -Tr(ρ log2 ρ) of the full state in bits.
func VonNeumannEntropy(rho *linalg.CMat, reg float64) (float64, error) {
	return spectralEntropy(rho, reg)
}

// MutualInformation returns S(A) + S(B) - S(AB) across the partition.
func MutualInformation(rho *linalg.CMat, n int, p Partition, reg float64) (float64, error) {
	sa, err := EntanglementEntropy(rho, n, p.Keep, reg)
	if err != nil {
		return 0, err
	}
	sb, err := EntanglementEntropy(rho, n, p.Trace, reg)
	if err != nil {
		return 0, err
	}
	sab, err := VonNeumannEntropy(rho, reg)
	if err != nil {
		return 0, err
	}
	return sa + sb - sab, nil
}

// #endregion entropy
