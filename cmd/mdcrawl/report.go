package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fwojciec/mdcrawl"
	"github.com/fwojciec/mdcrawl/sqlite"
)

// Run executes the report command.
func (c *ReportCmd) Run(deps *Dependencies) error {
	// Opening a missing path would create an empty journal.
	if _, err := os.Stat(c.Journal); err != nil {
		err = mdcrawl.Errorf(mdcrawl.ENOTFOUND, "journal %s not found", c.Journal)
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	db := sqlite.NewDB(c.Journal)
	if err := db.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: open journal %s: %v\n", c.Journal, err)
		return err
	}
	defer db.Close()
	journal := sqlite.NewJournal(db)

	run, err := c.findRun(deps, journal)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	filter := mdcrawl.TargetRecordFilter{RunID: run.ID}
	if !c.All {
		failed := mdcrawl.StateFailed
		filter.State = &failed
	}
	targets, err := journal.FindTargets(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", describe(err))
		return err
	}

	status := "in progress"
	if run.FinishedAt != nil {
		status = "finished " + run.FinishedAt.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(deps.Stdout, "Run %s  %s\n", run.ID, run.SeedURL)
	fmt.Fprintf(deps.Stdout, "Output %s, %s: %d saved, %d failed\n", run.OutputDir, status, run.Saved, run.Failed)

	if len(targets) == 0 {
		if c.All {
			fmt.Fprintln(deps.Stdout, "No targets recorded.")
		} else {
			fmt.Fprintln(deps.Stdout, "No failed targets.")
		}
		return nil
	}

	fmt.Fprintln(deps.Stdout)
	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tATTEMPTS\tURL\tDETAIL")
	for _, t := range targets {
		detail := t.Path
		if t.Error != "" {
			detail = t.Error
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", t.State, t.Attempts, t.URL, detail)
	}
	return w.Flush()
}

func (c *ReportCmd) findRun(deps *Dependencies, journal mdcrawl.Journal) (*mdcrawl.Run, error) {
	runs, err := journal.FindRuns(deps.Ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "journal %s has no runs", c.Journal)
	}
	if c.RunID == "" {
		return runs[0], nil
	}
	for _, r := range runs {
		if r.ID == c.RunID {
			return r, nil
		}
	}
	return nil, mdcrawl.Errorf(mdcrawl.ENOTFOUND, "run %s not found", c.RunID)
}
