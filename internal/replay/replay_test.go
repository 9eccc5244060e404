package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/qanneal/internal/schedule"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

func pureSpec() RunSpec {
	return RunSpec{
		Kind:         "pure",
		Wavefunction: "true",
		NGrid:        3,
		Problem: solver.Problem{
			N:           2,
			J:           [][]float64{{0, 1}, {0, 0}},
			H:           []float64{0.5, -0.5},
			EnergyScale: 1,
		},
		Schedule: schedule.Params{Offset: schedule.OffsetConstant},
	}
}

func TestValidate(t *testing.T) {
	spec := pureSpec()
	if err := spec.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	bad := spec
	bad.Kind = "thermal"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	bad = spec
	bad.Wavefunction = "excited"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown wavefunction")
	}
	bad = spec
	bad.NGrid = 1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for degenerate grid")
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	spec := pureSpec()
	first, err := Execute(spec)
	if err != nil {
		t.Fatalf("first execute: %v", err)
	}
	second, err := Execute(spec)
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	rep := Compare(first, second, 1e-12)
	if !rep.Match {
		t.Fatalf("identical specs diverged: %s", rep.Mismatch)
	}
}

func TestCompareDetectsTampering(t *testing.T) {
	spec := pureSpec()
	traj, err := Execute(spec)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	tampered, err := Execute(spec)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	tampered.Y[len(tampered.Y)-1][0] += 1e-3

	rep := Compare(traj, tampered, 1e-6)
	if rep.Match {
		t.Fatal("tampered trajectory passed comparison")
	}
	if rep.MaxStateDiff < 1e-4 {
		t.Fatalf("deviation underestimated: %v", rep.MaxStateDiff)
	}
}

func TestCompareSampleCountMismatch(t *testing.T) {
	spec := pureSpec()
	traj, err := Execute(spec)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	short := *traj
	short.T = short.T[:len(short.T)-1]
	short.Y = short.Y[:len(short.Y)-1]
	if rep := Compare(traj, &short, 1e-6); rep.Match {
		t.Fatal("sample count mismatch passed comparison")
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	data := []byte(`{
		"kind": "mixed",
		"wavefunction": "transverse",
		"temp": 0.015,
		"temp_local": 0.015,
		"problem": {"n": 1, "jij": [[0]], "hi": [0.4], "energyscale": 1},
		"schedule": {},
		"config": {"rtol": 1e-7, "atol": 1e-9},
		"rates": {"gamma": 0.01, "gamma_local": 0.01}
	}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	spec, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if spec.Kind != "mixed" || spec.Problem.N != 1 || spec.Rates.Gamma != 0.01 {
		t.Fatalf("fixture decoded wrong: %+v", spec)
	}
	if _, err := Execute(spec); err != nil {
		t.Fatalf("execute fixture: %v", err)
	}

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}
