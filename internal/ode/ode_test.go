package ode

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

// phase rotation y' = -i*y has the exact solution y(s) = y0 * exp(-i*s).
func phase(s float64, y, dy []complex128) {
	for i, v := range y {
		dy[i] = -1i * v
	}
}

func evalGrid(s0, s1 float64, n int) []float64 {
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = s0 + (s1-s0)*float64(i)/float64(n-1)
	}
	return grid
}

func TestRK45PhaseRotation(t *testing.T) {
	y0 := []complex128{1, 1i}
	grid := evalGrid(0, 2*math.Pi, 101)
	res, err := Solve(phase, 0, 2*math.Pi, y0, grid, Config{RTol: 1e-9, ATol: 1e-12})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.T) != 101 {
		t.Fatalf("expected 101 samples, got %d", len(res.T))
	}
	for k, s := range res.T {
		want0 := cmplx.Exp(complex(0, -s))
		if cmplx.Abs(res.Y[k][0]-want0) > 1e-7 {
			t.Fatalf("sample %d (s=%g): got %v want %v", k, s, res.Y[k][0], want0)
		}
	}
	// A full revolution returns to the start.
	last := res.Y[len(res.Y)-1]
	if cmplx.Abs(last[0]-1) > 1e-7 || cmplx.Abs(last[1]-1i) > 1e-7 {
		t.Fatalf("did not close the circle: %v", last)
	}
}

func TestRK45NormPreserved(t *testing.T) {
	y0 := []complex128{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)}
	grid := evalGrid(0, 10, 51)
	res, err := Solve(phase, 0, 10, y0, grid, Config{RTol: 1e-8, ATol: 1e-10})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	for k := range res.Y {
		var norm float64
		for _, v := range res.Y[k] {
			norm += real(v)*real(v) + imag(v)*imag(v)
		}
		if math.Abs(norm-1) > 1e-6 {
			t.Fatalf("norm drifted to %v at sample %d", norm, k)
		}
	}
}

func TestRK4FixedStep(t *testing.T) {
	y0 := []complex128{1}
	grid := evalGrid(0, 1, 11)
	res, err := Solve(phase, 0, 1, y0, grid, Config{Method: "rk4", InitialStep: 1e-3})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	want := cmplx.Exp(complex(0, -1))
	if cmplx.Abs(res.Y[len(res.Y)-1][0]-want) > 1e-9 {
		t.Fatalf("rk4 endpoint: got %v want %v", res.Y[len(res.Y)-1][0], want)
	}
}

func TestUnknownMethod(t *testing.T) {
	_, err := Solve(phase, 0, 1, []complex128{1}, nil, Config{Method: "leapfrog"})
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestBadInterval(t *testing.T) {
	if _, err := Solve(phase, 1, 1, []complex128{1}, nil, Config{}); err == nil {
		t.Fatal("expected error for empty interval")
	}
	if _, err := Solve(phase, 0, 1, []complex128{1}, []float64{0.5, 0.25}, Config{}); err == nil {
		t.Fatal("expected error for non-ascending grid")
	}
}

func TestStepBudgetFailureCarriesPartial(t *testing.T) {
	grid := evalGrid(0, 100, 1001)
	_, err := Solve(phase, 0, 100, []complex128{1}, grid, Config{RTol: 1e-12, ATol: 1e-14, MaxSteps: 10})
	if err == nil {
		t.Fatal("expected step budget failure")
	}
	var fail *Failure
	if !errors.As(err, &fail) {
		t.Fatalf("expected *Failure, got %T", err)
	}
	if !errors.Is(err, ErrMaxSteps) {
		t.Fatalf("expected ErrMaxSteps, got %v", fail.Reason)
	}
	if fail.At >= 100 {
		t.Fatalf("failure position should be inside the interval, got %g", fail.At)
	}
	if len(fail.Partial.T) == 0 {
		t.Fatal("partial trajectory should contain the initial sample")
	}
}

func TestEvalGridExactness(t *testing.T) {
	grid := []float64{0, 0.1, 0.25, 0.7, 1}
	res, err := Solve(phase, 0, 1, []complex128{1}, grid, Config{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.T) != len(grid) {
		t.Fatalf("expected %d samples, got %d", len(grid), len(res.T))
	}
	for i := range grid {
		if res.T[i] != grid[i] {
			t.Fatalf("sample %d: got %v want %v", i, res.T[i], grid[i])
		}
	}
}
