package observable

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/pauli"
)

const reg = 1e-12

func pureDensity(psi []complex128) *linalg.CMat {
	return linalg.OuterC(psi, psi)
}

// |00> for two qubits.
func basisState(dim, k int) []complex128 {
	psi := make([]complex128, dim)
	psi[k] = 1
	return psi
}

func bellState() []complex128 {
	// (|00> + |11>)/sqrt(2)
	s := complex(1/math.Sqrt2, 0)
	return []complex128{s, 0, 0, s}
}

func mustOps(t *testing.T, n int) *pauli.OperatorSet {
	t.Helper()
	ops, err := pauli.NewOperatorSet(n)
	if err != nil {
		t.Fatalf("operator set: %v", err)
	}
	return ops
}

func TestCorrelatorOnBasisStates(t *testing.T) {
	c := NewCorrelator(mustOps(t, 2))

	// |00>: both qubits point up.
	rho := pureDensity(basisState(4, 0))
	for i := 0; i < 2; i++ {
		if got := c.Z(rho, i); math.Abs(got-1) > 1e-14 {
			t.Fatalf("<Z_%d> on |00>: got %v want 1", i, got)
		}
		if got := c.Occupation0(rho, i); math.Abs(got-1) > 1e-14 {
			t.Fatalf("occupation0 qubit %d: got %v want 1", i, got)
		}
		if got := c.Occupation1(rho, i); math.Abs(got) > 1e-14 {
			t.Fatalf("occupation1 qubit %d: got %v want 0", i, got)
		}
	}

	// |10>: qubit 0 down, qubit 1 up (qubit 0 is the most significant bit).
	rho = pureDensity(basisState(4, 2))
	if got := c.Z(rho, 0); math.Abs(got+1) > 1e-14 {
		t.Fatalf("<Z_0> on |10>: got %v want -1", got)
	}
	if got := c.Z(rho, 1); math.Abs(got-1) > 1e-14 {
		t.Fatalf("<Z_1> on |10>: got %v want 1", got)
	}
	if got := c.ZZ(rho, 0, 1); math.Abs(got+1) > 1e-14 {
		t.Fatalf("<Z_0 Z_1> on |10>: got %v want -1", got)
	}
	// Product state: connected correlator vanishes.
	if got := c.ZZConnected(rho, 0, 1); math.Abs(got) > 1e-14 {
		t.Fatalf("connected correlator on product state: got %v want 0", got)
	}
}

func TestCorrelatorOnBellState(t *testing.T) {
	c := NewCorrelator(mustOps(t, 2))
	rho := pureDensity(bellState())

	for i := 0; i < 2; i++ {
		if got := c.Z(rho, i); math.Abs(got) > 1e-14 {
			t.Fatalf("<Z_%d> on Bell state: got %v want 0", i, got)
		}
	}
	if got := c.ZZ(rho, 0, 1); math.Abs(got-1) > 1e-14 {
		t.Fatalf("<Z_0 Z_1> on Bell state: got %v want 1", got)
	}
	if got := c.ZZConnected(rho, 0, 1); math.Abs(got-1) > 1e-14 {
		t.Fatalf("connected correlator on Bell state: got %v want 1", got)
	}
}

func TestSplitByOffset(t *testing.T) {
	p := SplitByOffset([]float64{-0.05, 0.05, -0.01, 0})
	if got, want := p.Trace, []int{0, 2}; !equalInts(got, want) {
		t.Fatalf("traced qubits: got %v want %v", got, want)
	}
	if got, want := p.Keep, []int{1, 3}; !equalInts(got, want) {
		t.Fatalf("kept qubits: got %v want %v", got, want)
	}
	comp := p.Complement()
	if !equalInts(comp.Keep, []int{0, 2}) || !equalInts(comp.Trace, []int{1, 3}) {
		t.Fatalf("complement: got %+v", comp)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPartialTraceValidation(t *testing.T) {
	rho := pureDensity(basisState(4, 0))
	if _, err := PartialTrace(rho, 3, []int{0}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if _, err := PartialTrace(rho, 2, []int{2}); err == nil {
		t.Fatal("expected out-of-range error")
	}
	if _, err := PartialTrace(rho, 2, []int{0, 0}); err == nil {
		t.Fatal("expected duplicate-qubit error")
	}
}

func TestPartialTraceOfBellState(t *testing.T) {
	rho := pureDensity(bellState())
	for q := 0; q < 2; q++ {
		rhoA, err := PartialTrace(rho, 2, []int{q})
		if err != nil {
			t.Fatalf("partial trace: %v", err)
		}
		// Each subsystem of a Bell pair is maximally mixed.
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				want := complex(0, 0)
				if i == j {
					want = 0.5
				}
				if got := rhoA.At(i, j); math.Abs(real(got-want)) > 1e-14 || math.Abs(imag(got)) > 1e-14 {
					t.Fatalf("reduced(%d,%d) for qubit %d: got %v want %v", i, j, q, got, want)
				}
			}
		}
	}
}

func TestEntropyOfPureState(t *testing.T) {
	rho := pureDensity(basisState(4, 1))
	s, err := VonNeumannEntropy(rho, reg)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	if math.Abs(s) > 1e-9 {
		t.Fatalf("pure state entropy %v, want 0", s)
	}
	// A product pure state has no entanglement across any cut.
	s, err = EntanglementEntropy(rho, 2, []int{0}, reg)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	if math.Abs(s) > 1e-9 {
		t.Fatalf("product state entanglement %v, want 0", s)
	}
}

func TestBellStateEntanglement(t *testing.T) {
	rho := pureDensity(bellState())
	s, err := EntanglementEntropy(rho, 2, []int{0}, reg)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	if math.Abs(s-1) > 1e-6 {
		t.Fatalf("Bell subsystem entropy %v, want 1 bit", s)
	}
	mi, err := MutualInformation(rho, 2, Partition{Keep: []int{0}, Trace: []int{1}}, reg)
	if err != nil {
		t.Fatalf("mutual information: %v", err)
	}
	if math.Abs(mi-2) > 1e-6 {
		t.Fatalf("Bell mutual information %v, want 2 bits", mi)
	}
}

func TestMaximallyMixedEntropy(t *testing.T) {
	// I/4 on two qubits: 2 bits overall, 1 bit per subsystem.
	rho := linalg.NewCMat(4)
	for i := 0; i < 4; i++ {
		rho.Set(i, i, 0.25)
	}
	s, err := VonNeumannEntropy(rho, reg)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	if math.Abs(s-2) > 1e-6 {
		t.Fatalf("maximally mixed entropy %v, want 2 bits", s)
	}
	s, err = EntanglementEntropy(rho, 2, []int{1}, reg)
	if err != nil {
		t.Fatalf("entropy: %v", err)
	}
	if math.Abs(s-1) > 1e-6 {
		t.Fatalf("subsystem entropy %v, want 1 bit", s)
	}
}

func TestEntropyRejectsUnphysicalInput(t *testing.T) {
	rho := linalg.NewCMat(2)
	rho.Set(0, 0, 1.5)
	rho.Set(1, 1, -0.5)
	if _, err := VonNeumannEntropy(rho, reg); err == nil {
		t.Fatal("expected error for negative eigenvalue")
	}
}
