// Package ode integrates complex-valued initial value problems
// y'(s) = f(s, y) with the Dormand–Prince 5(4) adaptive method.
//
// The configuration is forwarded verbatim from the solver layer; this
// package knows nothing about Hamiltonians. Sample output lands exactly
// on the requested evaluation grid because steps are clamped to it.
package ode

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// Func evaluates the right hand side dy = f(s, y). dy is preallocated by
// the integrator; implementations must fill every component.
type Func func(s float64, y, dy []complex128)

// #region config

// Config controls the integrator. The zero value selects rk45 with
// default tolerances.
type Config struct {
	// Method is "rk45" (adaptive, default) or "rk4" (fixed step).
	Method string
	// RTol and ATol are the relative and absolute error tolerances.
	RTol float64
	ATol float64
	// InitialStep seeds the adaptive controller, or sets the fixed step
	// for rk4. Zero picks a default from the interval length.
	InitialStep float64
	// MinStep aborts the solve when adaptive control pushes below it.
	MinStep float64
	// MaxSteps bounds the number of accepted plus rejected steps.
	MaxSteps int
}

func (c Config) withDefaults(span float64) Config {
	if c.RTol <= 0 {
		c.RTol = 1e-6
	}
	if c.ATol <= 0 {
		c.ATol = 1e-9
	}
	if c.InitialStep <= 0 {
		c.InitialStep = span / 100
	}
	if c.MinStep <= 0 {
		c.MinStep = span * 1e-14
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = 500000
	}
	return c
}

// #endregion config

// #region result

// Statistics reports integrator effort.
type Statistics struct {
	Steps    int
	Rejected int
	Evals    int
}

// Result is a trajectory sampled on the requested evaluation grid.
type Result struct {
	T     []float64
	Y     [][]complex128
	Stats Statistics
}

// Sentinel failure classes. Both surface wrapped in a *Failure that
// carries the partial trajectory.
var (
	ErrMinStep  = errors.New("ode: step size underflow")
	ErrMaxSteps = errors.New("ode: step budget exhausted")
)

// Failure is a non-convergence error carrying whatever trajectory was
// accepted before the abort. The caller decides retry policy.
type Failure struct {
	Reason  error
	At      float64
	Partial Result
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%v at s=%g after %d steps", f.Reason, f.At, f.Partial.Stats.Steps)
}

func (f *Failure) Unwrap() error { return f.Reason }

// #endregion result

// #region solve

// Solve integrates y' = f(s, y) from s0 to s1 and samples the solution at
// the points of sEval, which must be ascending and lie within [s0, s1].
func Solve(f Func, s0, s1 float64, y0 []complex128, sEval []float64, cfg Config) (Result, error) {
	if s1 <= s0 {
		return Result{}, fmt.Errorf("ode: empty interval [%g, %g]", s0, s1)
	}
	for i, s := range sEval {
		if s < s0 || s > s1 || (i > 0 && s <= sEval[i-1]) {
			return Result{}, fmt.Errorf("ode: evaluation grid not ascending within [%g, %g]", s0, s1)
		}
	}
	cfg = cfg.withDefaults(s1 - s0)

	switch cfg.Method {
	case "", "rk45":
		return solveRK45(f, s0, s1, y0, sEval, cfg)
	case "rk4":
		return solveRK4(f, s0, s1, y0, sEval, cfg)
	default:
		return Result{}, fmt.Errorf("ode: unknown method %q", cfg.Method)
	}
}

// #endregion solve

// #region rk45

// Dormand–Prince 5(4) tableau.
var (
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	// Difference between the 5th and embedded 4th order weights.
	dpE = [7]float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40}
)

func solveRK45(f Func, s0, s1 float64, y0 []complex128, sEval []float64, cfg Config) (Result, error) {
	n := len(y0)
	y := append([]complex128(nil), y0...)
	ynew := make([]complex128, n)
	yerr := make([]complex128, n)
	var k [7][]complex128
	for i := range k {
		k[i] = make([]complex128, n)
	}
	stage := make([]complex128, n)

	res := Result{}
	nextEval := 0
	record := func(s float64) {
		for nextEval < len(sEval) && sEval[nextEval] <= s+1e-15*(s1-s0) {
			res.T = append(res.T, sEval[nextEval])
			res.Y = append(res.Y, append([]complex128(nil), y...))
			nextEval++
		}
	}

	s := s0
	record(s)

	f(s, y, k[0])
	res.Stats.Evals++

	h := cfg.InitialStep
	for s < s1 {
		if res.Stats.Steps+res.Stats.Rejected >= cfg.MaxSteps {
			return res, &Failure{Reason: ErrMaxSteps, At: s, Partial: res}
		}
		if h < cfg.MinStep {
			return res, &Failure{Reason: ErrMinStep, At: s, Partial: res}
		}
		if s+h > s1 {
			h = s1 - s
		}
		// Clamp to the next sample point so output needs no interpolation.
		if nextEval < len(sEval) && s+h > sEval[nextEval] {
			h = sEval[nextEval] - s
		}

		for i := 1; i < 7; i++ {
			for j := 0; j < n; j++ {
				var sum complex128
				for l := 0; l < i; l++ {
					if dpA[i][l] != 0 {
						sum += complex(dpA[i][l], 0) * k[l][j]
					}
				}
				stage[j] = y[j] + complex(h, 0)*sum
			}
			f(s+dpC[i]*h, stage, k[i])
			res.Stats.Evals++
		}
		// Stage 7 is evaluated at the 5th order solution (FSAL).
		copy(ynew, stage)

		for j := 0; j < n; j++ {
			var esum complex128
			for l := 0; l < 7; l++ {
				if dpE[l] != 0 {
					esum += complex(dpE[l], 0) * k[l][j]
				}
			}
			yerr[j] = complex(h, 0) * esum
		}

		errNorm := 0.0
		for j := 0; j < n; j++ {
			scale := cfg.ATol + cfg.RTol*math.Max(cmplx.Abs(y[j]), cmplx.Abs(ynew[j]))
			r := cmplx.Abs(yerr[j]) / scale
			errNorm += r * r
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if errNorm <= 1 {
			s += h
			copy(y, ynew)
			copy(k[0], k[6]) // FSAL
			res.Stats.Steps++
			record(s)
			h *= factor(errNorm, 5)
		} else {
			res.Stats.Rejected++
			h *= factor(errNorm, 1)
		}
	}
	record(s1)
	return res, nil
}

// factor is the standard step controller: 0.9 * err^(-1/5) clamped to
// [0.2, grow]. Rejected steps never grow.
func factor(errNorm, grow float64) float64 {
	if errNorm == 0 {
		return grow
	}
	f := 0.9 * math.Pow(errNorm, -0.2)
	if f > grow {
		f = grow
	}
	if f < 0.2 {
		f = 0.2
	}
	return f
}

// #endregion rk45

// #region rk4

func solveRK4(f Func, s0, s1 float64, y0 []complex128, sEval []float64, cfg Config) (Result, error) {
	n := len(y0)
	y := append([]complex128(nil), y0...)
	k1 := make([]complex128, n)
	k2 := make([]complex128, n)
	k3 := make([]complex128, n)
	k4 := make([]complex128, n)
	stage := make([]complex128, n)

	res := Result{}
	nextEval := 0
	record := func(s float64) {
		for nextEval < len(sEval) && sEval[nextEval] <= s+1e-15*(s1-s0) {
			res.T = append(res.T, sEval[nextEval])
			res.Y = append(res.Y, append([]complex128(nil), y...))
			nextEval++
		}
	}

	s := s0
	record(s)
	for s < s1 {
		if res.Stats.Steps >= cfg.MaxSteps {
			return res, &Failure{Reason: ErrMaxSteps, At: s, Partial: res}
		}
		h := cfg.InitialStep
		if s+h > s1 {
			h = s1 - s
		}
		if nextEval < len(sEval) && s+h > sEval[nextEval] {
			h = sEval[nextEval] - s
		}

		f(s, y, k1)
		for j := range stage {
			stage[j] = y[j] + complex(h/2, 0)*k1[j]
		}
		f(s+h/2, stage, k2)
		for j := range stage {
			stage[j] = y[j] + complex(h/2, 0)*k2[j]
		}
		f(s+h/2, stage, k3)
		for j := range stage {
			stage[j] = y[j] + complex(h, 0)*k3[j]
		}
		f(s+h, stage, k4)
		for j := range y {
			y[j] += complex(h/6, 0) * (k1[j] + 2*k2[j] + 2*k3[j] + k4[j])
		}
		res.Stats.Evals += 4
		res.Stats.Steps++
		s += h
		record(s)
	}
	record(s1)
	return res, nil
}

// #endregion rk4
