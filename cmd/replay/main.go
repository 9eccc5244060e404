package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/qanneal/internal/replay"
	"github.com/danielpatrickdp/qanneal/internal/results"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to runs database (DB mode)")
	runID := flag.String("run", "", "run ID to replay (DB mode, default: most recent)")
	fixturePath := flag.String("fixture", "", "path to run spec JSON (fixture mode)")
	tol := flag.Float64("tol", 1e-9, "comparison tolerance")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/runs.db [--run id] [--tol eps]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/run.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, *tol)
	} else {
		exitCode = runDBMode(*dbPath, *runID, *tol)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

func runDBMode(dbPath, runID string, tol float64) int {
	store, err := results.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	if runID == "" {
		runs, err := store.ListRuns(1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
			return 2
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "no runs found")
			return 2
		}
		runID = runs[0].ID
	}

	run, stored, err := store.GetRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get run: %v\n", err)
		return 2
	}

	spec, err := replay.ParseSpec([]byte(run.ParamsJSON))
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse run spec: %v\n", err)
		return 2
	}

	fmt.Printf("replaying run %s (%s, %d samples stored)\n", run.ID, run.Kind, stored.Len())
	recomputed, err := replay.Execute(spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "re-solve: %v\n", err)
		return 2
	}

	rep := replay.Compare(stored, recomputed, tol)
	if !rep.Match {
		fmt.Printf("MISMATCH: %s\n", rep.Mismatch)
		return 1
	}
	fmt.Printf("MATCH: %d samples, max state diff %.3e, max time diff %.3e\n",
		rep.Samples, rep.MaxStateDiff, rep.MaxTimeDiff)
	return 0
}

// #endregion db-mode

// #region fixture-mode

// Fixture mode has no stored trajectory to compare against; the spec is
// solved twice and the two trajectories are required to agree, which
// catches nondeterminism and spec decode problems.
func runFixtureMode(path string, tol float64) int {
	spec, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	first, err := replay.Execute(spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		return 2
	}
	second, err := replay.Execute(spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "re-solve: %v\n", err)
		return 2
	}

	rep := replay.Compare(first, second, tol)
	if !rep.Match {
		fmt.Printf("MISMATCH: %s\n", rep.Mismatch)
		return 1
	}
	fmt.Printf("MATCH: %d samples, max state diff %.3e\n", rep.Samples, rep.MaxStateDiff)
	return 0
}

// #endregion fixture-mode
