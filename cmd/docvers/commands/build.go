package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/docvers/internal/builder"
	"git.home.luguber.info/inful/docvers/internal/history"
	"git.home.luguber.info/inful/docvers/internal/logfields"
)

// BuildCmd runs the site generator for one version, or for every version
// when no id is given (which also regenerates the landing page and
// versions.json).
type BuildCmd struct {
	ID string `arg:"" optional:"" help:"Version id or alias to build; omit to build all."`
}

func (c *BuildCmd) Run(g *Global) error {
	orchestrator := builder.NewOrchestrator(g.Layout, g.Store())

	// History is advisory: a missing or unopenable database never blocks a build.
	if store, err := history.Open(g.Layout.HistoryPath()); err == nil {
		defer func() { _ = store.Close() }()
		orchestrator = orchestrator.WithRecorder(store)
	} else {
		slog.Warn("Build history disabled", logfields.Error(err))
	}

	ctx := context.Background()
	var report *builder.Report
	var err error
	if c.ID == "" {
		report, err = orchestrator.BuildAll(ctx)
	} else {
		report, err = orchestrator.Build(ctx, c.ID)
	}
	if report != nil {
		for _, res := range report.Results {
			if res.Err != nil {
				fmt.Printf("FAIL %s: %v\n", res.ID, res.Err)
			} else {
				fmt.Printf("ok   %s (%s)\n", res.ID, res.Duration.Round(1e6))
			}
		}
	}
	return err
}

// HistoryCmd prints recent build invocations.
type HistoryCmd struct {
	Limit int `name:"limit" default:"20" help:"Maximum number of records to show."`
}

func (c *HistoryCmd) Run(g *Global) error {
	store, err := history.Open(g.Layout.HistoryPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No builds recorded.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tVERSION\tOUTCOME\tDURATION\tBUILD")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.Started.Format("2006-01-02 15:04:05"), rec.Version, rec.Outcome, rec.Duration, rec.BuildID[:8])
	}
	return w.Flush()
}
