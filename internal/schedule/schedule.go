// Package schedule provides annealing schedules A(s), B(s) with per-qubit
// annealing offsets. The solver consumes the Provider interface only, so a
// different schedule source can be swapped in without touching the core.
package schedule

import (
	"fmt"
	"sort"
)

// #region provider

// Provider is the schedule contract the solver needs: interpolation
// coefficients per qubit at normalized time s, plus the static offsets.
// A and B must be continuous in s for adaptive step control to converge.
type Provider interface {
	A(s float64) []float64
	B(s float64) []float64
	Offsets() []float64
}

// #endregion provider

// #region params

// Offset derivation kinds.
const (
	OffsetConstant = "constant" // all offsets zero
	OffsetBinary   = "binary"   // sign split on the reference field
	OffsetLinear   = "linear"   // rank-scaled into the offset range
)

// Params configures a Schedule.
type Params struct {
	// AnnealingTime is the physical anneal duration in microseconds.
	// It is provenance only; the core works in normalized time.
	AnnealingTime float64 `json:"annealing_time"`
	// Offset selects the derivation kind: constant, binary or linear.
	Offset string `json:"offset"`
	// OffsetMin and OffsetRange define the offset window
	// [OffsetMin, OffsetMin+OffsetRange].
	OffsetMin   float64 `json:"offset_min"`
	OffsetRange float64 `json:"offset_range"`
	// HiForOffset is the per-qubit reference field the offsets are
	// derived from (typically the problem's local fields).
	HiForOffset []float64 `json:"hi_for_offset"`
	// AOffset is a small additive transverse offset kept in A(s).
	AOffset float64 `json:"a_offset"`
}

// #endregion params

// #region schedule

// Schedule is a linear-interpolation annealing schedule, A(s) = 1-s and
// B(s) = s, with each qubit evaluated at the offset-shifted time
// clamp(s+offset_i, 0, 1).
type Schedule struct {
	params  Params
	n       int
	offsets []float64
}

// New derives the per-qubit offset list and returns a Schedule for n qubits.
func New(params Params, n int) (*Schedule, error) {
	if n < 1 {
		return nil, fmt.Errorf("schedule: qubit count must be positive, got %d", n)
	}
	if len(params.HiForOffset) != 0 && len(params.HiForOffset) != n {
		return nil, fmt.Errorf("schedule: hi_for_offset has %d entries for %d qubits", len(params.HiForOffset), n)
	}
	if params.OffsetRange < 0 {
		return nil, fmt.Errorf("schedule: negative offset range %g", params.OffsetRange)
	}

	offsets, err := deriveOffsets(params, n)
	if err != nil {
		return nil, err
	}
	return &Schedule{params: params, n: n, offsets: offsets}, nil
}

// A returns the transverse coefficients at normalized time s.
func (sc *Schedule) A(s float64) []float64 {
	out := make([]float64, sc.n)
	for i, off := range sc.offsets {
		out[i] = 1 - clamp01(s+off)
	}
	return out
}

// B returns the problem coefficients at normalized time s.
func (sc *Schedule) B(s float64) []float64 {
	out := make([]float64, sc.n)
	for i, off := range sc.offsets {
		out[i] = clamp01(s + off)
	}
	return out
}

// Offsets returns the static per-qubit offset list.
func (sc *Schedule) Offsets() []float64 {
	return append([]float64(nil), sc.offsets...)
}

// AOffset returns the additive transverse offset.
func (sc *Schedule) AOffset() float64 {
	return sc.params.AOffset
}

// PartitionOffsets returns the offsets used to pick the entanglement
// partition. A degenerate window (OffsetMin == 0) carries no sign
// information, so a synthetic binary window [-0.1, 0.1] is substituted to
// derive the same partition as the offset-carrying variant of the problem.
// This is a partition policy, not a numerical need.
func (sc *Schedule) PartitionOffsets() ([]float64, error) {
	if sc.params.OffsetMin != 0 {
		return sc.Offsets(), nil
	}
	synth := sc.params
	synth.Offset = OffsetBinary
	synth.OffsetMin = -0.1
	synth.OffsetRange = 0.2
	return deriveOffsets(synth, sc.n)
}

// #endregion schedule

// #region offsets

func deriveOffsets(params Params, n int) ([]float64, error) {
	offsets := make([]float64, n)
	switch params.Offset {
	case "", OffsetConstant:
		return offsets, nil
	case OffsetBinary:
		// Qubits with a negative reference field anneal early, the rest
		// late: offsets at the window edges.
		lo := params.OffsetMin
		hi := params.OffsetMin + params.OffsetRange
		for i := range offsets {
			if ref(params, i) < 0 {
				offsets[i] = lo
			} else {
				offsets[i] = hi
			}
		}
		return offsets, nil
	case OffsetLinear:
		// Rank qubits by reference field and spread them linearly across
		// the window.
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return ref(params, idx[a]) < ref(params, idx[b])
		})
		for rank, i := range idx {
			frac := 0.0
			if n > 1 {
				frac = float64(rank) / float64(n-1)
			}
			offsets[i] = params.OffsetMin + frac*params.OffsetRange
		}
		return offsets, nil
	default:
		return nil, fmt.Errorf("schedule: unknown offset kind %q", params.Offset)
	}
}

func ref(params Params, i int) float64 {
	if len(params.HiForOffset) == 0 {
		return 0
	}
	return params.HiForOffset[i]
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// #endregion offsets
