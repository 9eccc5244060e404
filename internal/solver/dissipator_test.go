package solver

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
)

func randomHermitian(rng *rand.Rand, dim int) *linalg.CMat {
	m := linalg.NewCMat(dim)
	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			m.Set(a, b, complex(rng.NormFloat64(), rng.NormFloat64()))
		}
	}
	out := linalg.NewCMat(dim)
	out.AddScaled(0.5, m)
	out.AddScaled(0.5, m.Adjoint())
	// Normalize the trace so magnitudes stay comparable across runs.
	tr := out.Trace()
	if tr != 0 {
		out.Scale(1 / tr)
	}
	return out
}

func maxAbsDiff(a, b *linalg.CMat) float64 {
	var worst float64
	for i := 0; i < a.Dim(); i++ {
		for j := 0; j < a.Dim(); j++ {
			if d := cmplx.Abs(a.At(i, j) - b.At(i, j)); d > worst {
				worst = d
			}
		}
	}
	return worst
}

func TestGlobalDissipatorFormulationsAgree(t *testing.T) {
	sv := newTestSolver(t, twoQubitProblem(), Config{})
	bath, err := NewBath(15e-3, 15e-3)
	if err != nil {
		t.Fatalf("bath: %v", err)
	}
	naive := NewGlobalDissipator(sv, bath)
	fast := NewGlobalDissipatorFast(sv, bath)

	rng := rand.New(rand.NewSource(7))
	for _, s := range []float64{0.2, 0.4, 0.9} {
		rho := randomHermitian(rng, sv.Dim())
		h := sv.AnnealingH(s)
		a := naive.Apply(rho, 0.3, h, s)
		b := fast.Apply(rho, 0.3, h, s)
		if d := maxAbsDiff(a, b); d > 1e-10 {
			t.Fatalf("formulations disagree at s=%g: max diff %v", s, d)
		}
	}
}

func TestZeroRateSkipsEigensolve(t *testing.T) {
	sv := newTestSolver(t, twoQubitProblem(), Config{})
	bath, err := NewBath(15e-3, 15e-3)
	if err != nil {
		t.Fatalf("bath: %v", err)
	}
	rho := randomHermitian(rand.New(rand.NewSource(1)), sv.Dim())
	h := sv.AnnealingH(0.5)

	var calls int
	naive := NewGlobalDissipator(sv, bath)
	naive.onEigensolve = func() { calls++ }
	fast := NewGlobalDissipatorFast(sv, bath)
	fast.onEigensolve = func() { calls++ }

	for _, d := range []Dissipator{naive, fast} {
		out := d.Apply(rho, 0, h, 0.5)
		for i := 0; i < out.Dim(); i++ {
			for j := 0; j < out.Dim(); j++ {
				if out.At(i, j) != 0 {
					t.Fatalf("zero rate produced nonzero output at (%d,%d)", i, j)
				}
			}
		}
	}
	if calls != 0 {
		t.Fatalf("zero rate still diagonalized %d times", calls)
	}
}

func TestDissipatorsAreTraceFree(t *testing.T) {
	sv := newTestSolver(t, twoQubitProblem(), Config{})
	bath, err := NewBath(15e-3, 20e-3)
	if err != nil {
		t.Fatalf("bath: %v", err)
	}
	rng := rand.New(rand.NewSource(3))
	rho := randomHermitian(rng, sv.Dim())
	h := sv.AnnealingH(0.6)

	channels := []Dissipator{
		NewLocalDissipator(sv, bath),
		NewGlobalDissipator(sv, bath),
		NewGlobalDissipatorFast(sv, bath),
	}
	for i, d := range channels {
		out := d.Apply(rho, 0.5, h, 0.6)
		if tr := cmplx.Abs(out.Trace()); tr > 1e-10 {
			t.Fatalf("channel %d: trace of dissipator output is %v", i, tr)
		}
		if !out.IsHermitian(1e-10) {
			t.Fatalf("channel %d: output not Hermitian", i)
		}
	}
}

func TestGibbsStateIsStationaryUnderGlobalChannel(t *testing.T) {
	// Detailed balance: the Gibbs state of H at the bath temperature is a
	// fixed point of the wide-band channel.
	prob := twoQubitProblem()
	sv := newTestSolver(t, prob, Config{})
	bath, err := NewBath(15e-3, 15e-3)
	if err != nil {
		t.Fatalf("bath: %v", err)
	}
	h := sv.AnnealingH(0.7)
	values, vectors, err := linalg.SymEigen(h)
	if err != nil {
		t.Fatalf("eigensolve: %v", err)
	}

	rho := linalg.NewCMat(sv.Dim())
	var z float64
	weights := make([]float64, len(values))
	for i, v := range values {
		weights[i] = math.Exp(-bath.Beta * (v - values[0]) / prob.EnergyScale)
		z += weights[i]
	}
	for i := range weights {
		col := linalg.ColumnReal(vectors, i)
		rho.AddScaled(complex(weights[i]/z, 0), linalg.OuterReal(col, col))
	}

	for _, d := range []Dissipator{NewGlobalDissipator(sv, bath), NewGlobalDissipatorFast(sv, bath)} {
		out := d.Apply(rho, 1, h, 0.7)
		var worst float64
		for a := 0; a < out.Dim(); a++ {
			for b := 0; b < out.Dim(); b++ {
				if v := cmplx.Abs(out.At(a, b)); v > worst {
					worst = v
				}
			}
		}
		if worst > 1e-10 {
			t.Fatalf("Gibbs state not stationary: max |dρ| = %v", worst)
		}
	}
}

func TestSolveMixedClosedSystemMatchesPure(t *testing.T) {
	prob := twoQubitProblem()
	cfg := Config{RTol: 1e-9, ATol: 1e-11}
	sv := newTestSolver(t, prob, cfg)

	psi0, err := sv.InitWavefunction(TrueGround)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	pure, err := sv.SolvePure(psi0, 2)
	if err != nil {
		t.Fatalf("pure solve: %v", err)
	}

	rho0 := linalg.OuterC(psi0, psi0).Data()
	bath, err := NewBath(15e-3, 15e-3)
	if err != nil {
		t.Fatalf("bath: %v", err)
	}
	mixed, err := sv.SolveMixed(rho0, bath, Rates{})
	if err != nil {
		t.Fatalf("mixed solve: %v", err)
	}

	psi := pure.Final()
	rho := mixed.DensityAt(mixed.Len() - 1)
	for a := 0; a < sv.Dim(); a++ {
		want := real(psi[a] * cmplx.Conj(psi[a]))
		got := real(rho.At(a, a))
		if math.Abs(want-got) > 1e-5 {
			t.Fatalf("population %d: pure %v, mixed %v", a, want, got)
		}
	}
}

func TestSolveMixedPreservesTrace(t *testing.T) {
	sv := newTestSolver(t, twoQubitProblem(), Config{RTol: 1e-8, ATol: 1e-10})
	rho0, bath, err := sv.InitDensityMatrix(15e-3, 15e-3, TrueGround)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	traj, err := sv.SolveMixed(rho0, bath, Rates{Gamma: 0.05, GammaLocal: 0.02})
	if err != nil {
		t.Fatalf("mixed solve: %v", err)
	}
	if d := traj.TraceDrift(); d > 1e-5 {
		t.Fatalf("trace drifted by %v", d)
	}
	final := traj.DensityAt(traj.Len() - 1)
	if !final.IsHermitian(1e-8) {
		t.Fatal("final density matrix not Hermitian")
	}
}

func TestLocalMatchesWideBandForSingleQubit(t *testing.T) {
	// At s=1 a single-qubit anneal is a pure Z Hamiltonian with level gap
	// 2|h|, so the per-qubit channel and the eigenbasis wide-band channel
	// describe the same physics and must agree when both baths share one
	// inverse temperature.
	for _, field := range []float64{0.7, -0.7} {
		prob := singleQubitProblem()
		prob.H = []float64{field}
		sv := newTestSolver(t, prob, Config{})
		bath, err := NewBath(15e-3, 15e-3)
		if err != nil {
			t.Fatalf("bath: %v", err)
		}
		local := NewLocalDissipator(sv, bath)
		wide := NewGlobalDissipator(sv, bath)

		rng := rand.New(rand.NewSource(19))
		rho := randomHermitian(rng, sv.Dim())
		h := sv.AnnealingH(1)
		a := local.Apply(rho, 0.3, h, 1)
		b := wide.Apply(rho, 0.3, h, 1)
		if d := maxAbsDiff(a, b); d > 1e-10 {
			t.Fatalf("h=%g: local and wide-band channels disagree: max diff %v", field, d)
		}
	}
}
