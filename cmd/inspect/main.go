package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/qanneal/internal/results"
	"github.com/danielpatrickdp/qanneal/internal/solver"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to runs database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/runs.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := results.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Dim       int    `json:"dim"`
	ParamHash string `json:"param_hash"`
	CreatedAt string `json:"created_at"`
}

func runListMode(store *results.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:     r.ID,
			Kind:      r.Kind,
			Dim:       r.Dim,
			ParamHash: r.ParamHash,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-12s  %-6s  %4s  %-12s  %s\n", "Run", "Kind", "Dim", "Hash", "Time")
	fmt.Printf("%-12s+-%-6s+-%4s+-%-12s+-%s\n",
		"------------", "------", "----", "------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-12s  %-6s  %4d  %-12s  %s\n",
			shortID(r.RunID), r.Kind, r.Dim, shortID(r.ParamHash), r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID      string          `json:"run_id"`
	Kind       string          `json:"kind"`
	Dim        int             `json:"dim"`
	ParamHash  string          `json:"param_hash"`
	CreatedAt  string          `json:"created_at"`
	Samples    int             `json:"samples"`
	FinalCheck float64         `json:"final_check"`
	Params     json.RawMessage `json:"params"`
	SolveLogs  []logRow        `json:"solve_logs,omitempty"`
}

type logRow struct {
	Steps    int     `json:"steps"`
	Rejected int     `json:"rejected"`
	Evals    int     `json:"evals"`
	Drift    float64 `json:"drift"`
	Message  string  `json:"message,omitempty"`
}

func runDetailMode(store *results.Store, runID string, jsonOut bool) error {
	run, traj, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	logs, err := store.SolveLogs(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:      run.ID,
		Kind:       run.Kind,
		Dim:        run.Dim,
		ParamHash:  run.ParamHash,
		CreatedAt:  run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Samples:    traj.Len(),
		FinalCheck: finalCheck(run.Kind, traj),
		Params:     json.RawMessage(run.ParamsJSON),
	}
	for _, e := range logs {
		out.SolveLogs = append(out.SolveLogs, logRow{
			Steps:    e.Stats.Steps,
			Rejected: e.Stats.Rejected,
			Evals:    e.Stats.Evals,
			Drift:    e.Drift,
			Message:  e.Message,
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:       %s\n", out.RunID)
	fmt.Printf("Kind:      %s\n", out.Kind)
	fmt.Printf("Dim:       %d\n", out.Dim)
	fmt.Printf("Hash:      %s\n", out.ParamHash)
	fmt.Printf("Created:   %s\n", out.CreatedAt)
	fmt.Printf("Samples:   %d\n", out.Samples)
	if out.Kind == "pure" {
		fmt.Printf("Final |psi|^2: %.12f\n", out.FinalCheck)
	} else {
		fmt.Printf("Final trace:   %.12f\n", out.FinalCheck)
	}

	if len(out.SolveLogs) > 0 {
		fmt.Println("\nSolve log:")
		for _, l := range out.SolveLogs {
			fmt.Printf("  steps=%d rejected=%d evals=%d drift=%.3e %s\n",
				l.Steps, l.Rejected, l.Evals, l.Drift, l.Message)
		}
	}

	var pretty map[string]any
	if err := json.Unmarshal(out.Params, &pretty); err == nil {
		fmt.Println("\nParameters:")
		data, _ := json.MarshalIndent(pretty, "  ", "  ")
		fmt.Printf("  %s\n", data)
	}
	return nil
}

// finalCheck returns the conserved quantity of the last sample: total
// probability for pure runs, trace for mixed ones.
func finalCheck(kind string, traj *solver.Trajectory) float64 {
	final := traj.Final()
	if final == nil {
		return 0
	}
	if kind == "mixed" {
		dim := int(math.Sqrt(float64(len(final))))
		var tr float64
		for i := 0; i < dim; i++ {
			tr += real(final[i*dim+i])
		}
		return tr
	}
	var sum float64
	for _, c := range final {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return sum
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
