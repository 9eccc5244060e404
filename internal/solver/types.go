package solver

import (
	"fmt"
	"math/rand"
)

// #region problem

// Problem is an Ising optimization instance. J is interpreted strictly
// upper-triangular: J[i][j] with i >= j never contributes.
type Problem struct {
	N           int         `json:"n"`
	J           [][]float64 `json:"jij"`
	H           []float64   `json:"hi"`
	EnergyScale float64     `json:"energyscale"`
	// Constant is the base energy offset. It is provenance only and never
	// enters Hamiltonian construction.
	Constant float64 `json:"c"`
}

// Validate fails fast on malformed instances.
func (p Problem) Validate() error {
	if p.N < 1 {
		return fmt.Errorf("problem: qubit count must be positive, got %d", p.N)
	}
	if len(p.J) != p.N {
		return fmt.Errorf("problem: J has %d rows for %d qubits", len(p.J), p.N)
	}
	for i, row := range p.J {
		if len(row) != p.N {
			return fmt.Errorf("problem: J row %d has %d columns for %d qubits", i, len(row), p.N)
		}
	}
	if len(p.H) != p.N {
		return fmt.Errorf("problem: h has %d entries for %d qubits", len(p.H), p.N)
	}
	if p.EnergyScale <= 0 {
		return fmt.Errorf("problem: energy scale must be positive, got %g", p.EnergyScale)
	}
	return nil
}

// WithNoise returns a copy of the problem with Gaussian jitter applied to
// the nonzero couplings and fields, modeling analog control error. J
// entries are jittered proportionally to their magnitude, fields by sigma.
func (p Problem) WithNoise(rng *rand.Rand, sigma float64) Problem {
	out := p
	out.J = make([][]float64, p.N)
	for i := range p.J {
		out.J[i] = append([]float64(nil), p.J[i]...)
		for j, v := range out.J[i] {
			if v != 0 {
				out.J[i][j] = v + rng.NormFloat64()*sigma*v
			}
		}
	}
	out.H = append([]float64(nil), p.H...)
	for i, v := range out.H {
		if v != 0 {
			out.H[i] = v + rng.NormFloat64()*sigma
		}
	}
	return out
}

// #endregion problem

// #region config

// Config carries the normalized time interval plus integrator options.
// The integrator options are forwarded verbatim to the ode package.
type Config struct {
	// Interval is the normalized anneal interval, typically [0, 1].
	Interval [2]float64 `json:"normalized_time"`
	Method   string     `json:"method"`
	RTol     float64    `json:"rtol"`
	ATol     float64    `json:"atol"`
	MaxSteps int        `json:"max_steps"`
}

func (c Config) withDefaults() Config {
	if c.Interval == [2]float64{} {
		c.Interval = [2]float64{0, 1}
	}
	return c
}

// #endregion config

// #region wave-kind

// WaveKind selects the initial state construction. It is resolved at
// configuration time, not by string comparison inside the solve path.
type WaveKind int

const (
	// TrueGround is the ground state of the full annealing Hamiltonian
	// at the start of the interval.
	TrueGround WaveKind = iota
	// TransverseGround is the ground state of the bare transverse term,
	// the state physical annealers are initialized in.
	TransverseGround
)

// ParseWaveKind maps the wire names "true" and "transverse".
func ParseWaveKind(s string) (WaveKind, error) {
	switch s {
	case "true":
		return TrueGround, nil
	case "transverse":
		return TransverseGround, nil
	default:
		return 0, fmt.Errorf("solver: unknown initial wavefunction kind %q", s)
	}
}

func (k WaveKind) String() string {
	switch k {
	case TrueGround:
		return "true"
	case TransverseGround:
		return "transverse"
	default:
		return fmt.Sprintf("WaveKind(%d)", int(k))
	}
}

// #endregion wave-kind

// #region bath

// Physical constants in eV-based units.
const (
	boltzmannEVPerK = 8.617333262145e-5 // Boltzmann constant [eV/K]
	hbarEVSec       = 6.582119569e-16   // reduced Planck constant [eV s]
	ghzSec          = 1e-9              // GHz to 1/s
)

// Bath holds the per-solve derived thermal scalars. It is computed once
// per solve and passed explicitly so concurrent solves on one solver
// cannot race on shared rate fields.
type Bath struct {
	// Beta is the inverse temperature for the global wide-band channel,
	// in units of h/GHz.
	Beta float64
	// BetaLocal is the inverse temperature for the per-qubit channels.
	BetaLocal float64
}

// NewBath derives inverse temperatures from bath temperatures in kelvin.
func NewBath(temp, tempLocal float64) (Bath, error) {
	if temp <= 0 || tempLocal <= 0 {
		return Bath{}, fmt.Errorf("solver: bath temperatures must be positive, got %g and %g", temp, tempLocal)
	}
	return Bath{
		Beta:      1 / (temp * boltzmannEVPerK / hbarEVSec * ghzSec),
		BetaLocal: 1 / (tempLocal * boltzmannEVPerK / hbarEVSec * ghzSec),
	}, nil
}

// Rates configures the dissipation channels for a mixed solve. A zero
// rate disables its channel entirely.
type Rates struct {
	// Gamma is the global wide-band dissipation rate.
	Gamma float64 `json:"gamma"`
	// GammaLocal is the per-qubit decoherence rate.
	GammaLocal float64 `json:"gamma_local"`
	// Naive selects the reference wide-band formulation instead of the
	// optimized one. Both are algebraically identical; the naive form
	// exists as a cross-check.
	Naive bool `json:"naive,omitempty"`
}

// #endregion bath
