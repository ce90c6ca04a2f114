// Package builder invokes the external site generator per version and
// assembles the multi-version site root (landing page + versions.json).
package builder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/history"
	"git.home.luguber.info/inful/docvers/internal/logfields"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

// Recorder receives one history record per attempted version build.
// Implemented by *history.Store; nil disables recording.
type Recorder interface {
	Append(ctx context.Context, rec history.Record) error
}

// Result is the outcome of building one version.
type Result struct {
	ID       string
	Err      error
	Duration time.Duration
}

// Report aggregates the results of one orchestrator invocation.
type Report struct {
	BuildID string
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err collapses the report into a single aggregated BuildFailed error, or
// nil when every version built.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	var cause error
	for _, res := range failed {
		parts = append(parts, res.ID)
		if cause == nil {
			cause = res.Err
		}
	}
	return verrors.Wrap(cause, verrors.KindBuildFailed,
		"build failed for %d of %d version(s): %s", len(failed), len(r.Results), strings.Join(parts, ", "))
}

// Orchestrator runs the generator across versions, sequentially.
type Orchestrator struct {
	layout   config.Layout
	store    registry.Store
	runner   Runner
	recorder Recorder
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator using the layout's generator.
func NewOrchestrator(layout config.Layout, store registry.Store) *Orchestrator {
	return &Orchestrator{
		layout: layout,
		store:  store,
		runner: NewRunner(layout),
		now:    time.Now,
	}
}

// WithRunner overrides the generator runner (tests).
func (o *Orchestrator) WithRunner(r Runner) *Orchestrator {
	o.runner = r
	return o
}

// WithRecorder attaches a build history recorder.
func (o *Orchestrator) WithRecorder(rec Recorder) *Orchestrator {
	o.recorder = rec
	return o
}

// Build builds a single version resolved by id or alias.
func (o *Orchestrator) Build(ctx context.Context, idOrAlias string) (*Report, error) {
	reg, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	rec, err := reg.Get(idOrAlias)
	if err != nil {
		return nil, err
	}
	report := &Report{BuildID: uuid.NewString()}
	report.Results = append(report.Results, o.buildOne(ctx, report.BuildID, rec))
	return report, report.Err()
}

// BuildAll builds every registered version in registry order. One broken
// version does not block the others; failures are aggregated into the
// report. Afterwards the root landing page and versions.json are written so
// clients can switch between versions.
func (o *Orchestrator) BuildAll(ctx context.Context) (*Report, error) {
	reg, err := o.store.Load()
	if err != nil {
		return nil, err
	}
	report := &Report{BuildID: uuid.NewString()}
	for _, rec := range reg.Versions {
		report.Results = append(report.Results, o.buildOne(ctx, report.BuildID, rec))
	}
	if err := writeLandingPage(o.layout, reg); err != nil {
		return report, err
	}
	if err := writeVersionsJSON(o.layout, reg); err != nil {
		return report, err
	}
	return report, report.Err()
}

// buildOne runs the generator for one record and records the outcome.
func (o *Orchestrator) buildOne(ctx context.Context, buildID string, rec registry.VersionRecord) Result {
	start := o.now()
	slog.Info("Building version", logfields.Version(rec.ID), logfields.BuildID(buildID))

	err := o.runner.Run(ctx, o.layout.BuildConfigPath(rec.ID), o.layout.OutputDir(rec.Path))
	duration := o.now().Sub(start)

	if err != nil {
		err = verrors.Wrap(err, verrors.KindBuildFailed, "version %s", rec.ID).
			WithContext("version", rec.ID)
		slog.Error("Build failed", logfields.Version(rec.ID), logfields.BuildID(buildID), logfields.Error(err))
	} else {
		slog.Info("Build succeeded", logfields.Version(rec.ID), logfields.BuildID(buildID),
			logfields.DurationMS(float64(duration.Milliseconds())))
	}

	o.record(ctx, buildID, rec.ID, start, duration, err)
	return Result{ID: rec.ID, Err: err, Duration: duration}
}

func (o *Orchestrator) record(ctx context.Context, buildID, versionID string, start time.Time, duration time.Duration, buildErr error) {
	if o.recorder == nil {
		return
	}
	rec := history.Record{
		BuildID:  buildID,
		Version:  versionID,
		Outcome:  history.OutcomeSuccess,
		Started:  start,
		Duration: duration,
	}
	if buildErr != nil {
		rec.Outcome = history.OutcomeFailure
		rec.Error = buildErr.Error()
	}
	if err := o.recorder.Append(ctx, rec); err != nil {
		// History is advisory; a failed insert must not fail the build.
		slog.Warn("Failed to record build history", logfields.BuildID(buildID), logfields.Error(err))
	}
}
