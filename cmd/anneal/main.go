package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/qanneal/internal/linalg"
	"github.com/danielpatrickdp/qanneal/internal/observable"
	"github.com/danielpatrickdp/qanneal/internal/replay"
	"github.com/danielpatrickdp/qanneal/internal/results"
	"github.com/danielpatrickdp/qanneal/internal/schedule"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

// #region main

func main() {
	specPath := flag.String("spec", "", "path to run spec JSON")
	dbPath := flag.String("db", "", "persist the run to this SQLite database")
	entropyReg := flag.Float64("reg", 1e-12, "entropy regularizer")
	flag.Parse()

	if *specPath == "" {
		fmt.Fprintln(os.Stderr, "usage: anneal --spec path/to/run.json [--db runs.db] [--reg eps]")
		os.Exit(2)
	}

	spec, err := replay.LoadFixture(*specPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load spec: %v\n", err)
		os.Exit(1)
	}

	if err := run(spec, *dbPath, *entropyReg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(spec replay.RunSpec, dbPath string, reg float64) error {
	sched, err := schedule.New(spec.Schedule, spec.Problem.N)
	if err != nil {
		return err
	}
	sv, err := solver.New(spec.Problem, sched, spec.Config)
	if err != nil {
		return err
	}
	kind, err := solver.ParseWaveKind(spec.Wavefunction)
	if err != nil {
		return err
	}

	fmt.Printf("anneal: %d qubits, %s evolution, %s initial state\n",
		spec.Problem.N, spec.Kind, kind)

	var traj *solver.Trajectory
	var drift float64
	switch spec.Kind {
	case "pure":
		traj, drift, err = runPure(sv, spec, kind)
	case "mixed":
		traj, drift, err = runMixed(sv, spec, kind)
	default:
		return fmt.Errorf("unknown run kind %q", spec.Kind)
	}
	if err != nil {
		return err
	}

	reportObservables(sv, spec, traj, reg)
	fmt.Printf("integrator: %d steps, %d rejected, %d evaluations\n",
		traj.Stats.Steps, traj.Stats.Rejected, traj.Stats.Evals)

	if dbPath == "" {
		return nil
	}
	store, err := results.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.SaveRun(spec.Kind, spec, traj)
	if err != nil {
		return err
	}
	if err := store.LogSolve(rec.ID, traj.Stats, drift, "completed"); err != nil {
		return err
	}
	fmt.Printf("persisted run %s (hash %s)\n", rec.ID, rec.ParamHash)
	return nil
}

func runPure(sv *solver.Solver, spec replay.RunSpec, kind solver.WaveKind) (*solver.Trajectory, float64, error) {
	psi0, err := sv.InitWavefunction(kind)
	if err != nil {
		return nil, 0, err
	}
	ngrid := spec.NGrid
	if ngrid == 0 {
		ngrid = 11
	}
	traj, err := sv.SolvePure(psi0, ngrid)
	if err != nil {
		return nil, 0, err
	}
	// Logged drift is the absolute deviation, matching the mixed path.
	drift := math.Abs(traj.FinalProbability() - 1)
	fmt.Printf("final total probability: %.12f\n", traj.FinalProbability())

	idx, values, vectors, err := solver.GroundStateDegeneracy(sv.AnnealingH(1), 1e-9)
	if err != nil {
		return nil, 0, err
	}
	p := solver.Overlap(vectors, traj.Final(), idx)
	fmt.Printf("ground state probability: %.6f (degeneracy %d, E0 %.6f)\n", p, len(idx), values[0])
	return traj, drift, nil
}

func runMixed(sv *solver.Solver, spec replay.RunSpec, kind solver.WaveKind) (*solver.Trajectory, float64, error) {
	rho0, bath, err := sv.InitDensityMatrix(spec.Temp, spec.TempLocal, kind)
	if err != nil {
		return nil, 0, err
	}
	traj, err := sv.SolveMixed(rho0, bath, spec.Rates)
	if err != nil {
		return nil, 0, err
	}
	drift := traj.TraceDrift()
	fmt.Printf("trace drift: %.3e\n", drift)
	return traj, drift, nil
}

// #endregion run

// #region observables

func reportObservables(sv *solver.Solver, spec replay.RunSpec, traj *solver.Trajectory, reg float64) {
	var rho *linalg.CMat
	if spec.Kind == "pure" {
		psi := traj.Final()
		rho = linalg.OuterC(psi, psi)
	} else {
		rho = traj.DensityAt(traj.Len() - 1)
	}

	corr := observable.NewCorrelator(sv.Ops())
	fmt.Printf("final <Z_i>:")
	for i := 0; i < spec.Problem.N; i++ {
		fmt.Printf(" %.4f", corr.Z(rho, i))
	}
	fmt.Println()

	sched, ok := sv.Schedule().(*schedule.Schedule)
	if !ok {
		return
	}
	offsets, err := sched.PartitionOffsets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "partition offsets: %v\n", err)
		return
	}
	part := observable.SplitByOffset(offsets)
	if len(part.Keep) == 0 || len(part.Trace) == 0 {
		return
	}
	s, err := observable.EntanglementEntropy(rho, spec.Problem.N, part.Keep, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "entanglement entropy: %v\n", err)
		return
	}
	mi, err := observable.MutualInformation(rho, spec.Problem.N, part, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mutual information: %v\n", err)
		return
	}
	fmt.Printf("entanglement entropy (qubits %v): %.6f bits\n", part.Keep, s)
	fmt.Printf("mutual information: %.6f bits\n", mi)
}

// #endregion observables
