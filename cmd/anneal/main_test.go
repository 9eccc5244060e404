package main

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/qanneal/internal/replay"
	"github.com/danielpatrickdp/qanneal/internal/schedule"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

func testSpec(kind string) replay.RunSpec {
	return replay.RunSpec{
		Kind:         kind,
		Wavefunction: "transverse",
		NGrid:        3,
		Temp:         15e-3,
		TempLocal:    15e-3,
		Problem: solver.Problem{
			N:           1,
			J:           [][]float64{{0}},
			H:           []float64{0.5},
			EnergyScale: 1,
		},
		Schedule: schedule.Params{Offset: schedule.OffsetConstant},
	}
}

func newRunSolver(t *testing.T, spec replay.RunSpec) (*solver.Solver, solver.WaveKind) {
	t.Helper()
	sched, err := schedule.New(spec.Schedule, spec.Problem.N)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	sv, err := solver.New(spec.Problem, sched, spec.Config)
	if err != nil {
		t.Fatalf("solver: %v", err)
	}
	kind, err := solver.ParseWaveKind(spec.Wavefunction)
	if err != nil {
		t.Fatalf("wave kind: %v", err)
	}
	return sv, kind
}

func TestLoggedDriftIsAbsoluteForBothKinds(t *testing.T) {
	// The solve_log drift column holds an absolute norm deviation so pure
	// and mixed records are comparable.
	spec := testSpec("pure")
	sv, kind := newRunSolver(t, spec)
	traj, drift, err := runPure(sv, spec, kind)
	if err != nil {
		t.Fatalf("pure run: %v", err)
	}
	if drift < 0 {
		t.Fatalf("pure drift must be non-negative, got %v", drift)
	}
	if want := math.Abs(traj.FinalProbability() - 1); drift != want {
		t.Fatalf("pure drift %v, want %v", drift, want)
	}

	spec = testSpec("mixed")
	sv, kind = newRunSolver(t, spec)
	traj, drift, err = runMixed(sv, spec, kind)
	if err != nil {
		t.Fatalf("mixed run: %v", err)
	}
	if drift < 0 {
		t.Fatalf("mixed drift must be non-negative, got %v", drift)
	}
	if drift != traj.TraceDrift() {
		t.Fatalf("mixed drift %v, want %v", drift, traj.TraceDrift())
	}
}
