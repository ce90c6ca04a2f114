// Package release composes the version lifecycle into the release workflow:
// validate, create, optionally promote, optionally build, optionally tag.
package release

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docvers/internal/builder"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/lifecycle"
	"git.home.luguber.info/inful/docvers/internal/logfields"
	"git.home.luguber.info/inful/docvers/internal/registry"
	"git.home.luguber.info/inful/docvers/internal/version"
)

// Options parameterize one workflow run.
type Options struct {
	NewVersion string
	Source     string // copy content from this version; empty means current latest
	SetLatest  bool
	Build      bool
	CreateTag  bool
	DryRun     bool
	Verbose    bool
	// Interactive enables the yes/no confirmation prompt. Callers set it
	// from the terminal state; CI runs proceed without prompting.
	Interactive bool
}

// Workflow drives a release end to end.
type Workflow struct {
	manager      *lifecycle.Manager
	store        registry.Store
	orchestrator *builder.Orchestrator
	tagger       Tagger
	in           io.Reader
	out          io.Writer
}

// NewWorkflow assembles a workflow from its collaborators. in/out carry the
// confirmation prompt and the printed plan.
func NewWorkflow(manager *lifecycle.Manager, store registry.Store, orchestrator *builder.Orchestrator, tagger Tagger, in io.Reader, out io.Writer) *Workflow {
	return &Workflow{
		manager:      manager,
		store:        store,
		orchestrator: orchestrator,
		tagger:       tagger,
		in:           in,
		out:          out,
	}
}

// Run validates, plans, confirms, and executes the release. Validation and
// the existence pre-check happen before any mutation; dry-run stops after
// printing the plan. A tag-creation failure is reported but never rolls
// back the created documentation version.
func (w *Workflow) Run(ctx context.Context, opts Options) error {
	if err := version.ValidateID(opts.NewVersion); err != nil {
		return err
	}
	id := version.Canonical(opts.NewVersion)

	reg, err := w.store.Load()
	if err != nil {
		return err
	}
	if reg.Has(id) {
		return verrors.New(verrors.KindAlreadyExists, "version %q already registered", id)
	}
	if opts.Source != "" && !reg.Has(opts.Source) {
		return verrors.New(verrors.KindNotFound, "source version %q not found", opts.Source)
	}

	plan := w.plan(id, opts)
	if opts.DryRun || opts.Verbose {
		fmt.Fprintf(w.out, "Release plan for %s:\n", id)
		for _, step := range plan {
			fmt.Fprintf(w.out, "  - %s\n", step)
		}
	}
	if opts.DryRun {
		fmt.Fprintln(w.out, "Dry run; no changes made.")
		return nil
	}

	if opts.Interactive {
		ok, err := w.confirm(fmt.Sprintf("Release %s?", id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w.out, "Aborted.")
			return nil
		}
	}

	w.echo(opts, "create %s", id)
	if _, err := w.manager.Create(id, opts.Source); err != nil {
		return err
	}

	if opts.SetLatest {
		w.echo(opts, "set-latest %s", id)
		if err := w.manager.SetLatest(id); err != nil {
			return err
		}
	}

	if opts.Build {
		w.echo(opts, "build all versions")
		if _, err := w.orchestrator.BuildAll(ctx); err != nil {
			return err
		}
	}

	if opts.CreateTag {
		tag := "docs/" + id
		w.echo(opts, "git tag %s", tag)
		if err := w.tagger.CreateTag(tag); err != nil {
			// The documentation version and the tag are independent side
			// effects; the version stays in place.
			slog.Error("Tag creation failed; documentation version kept", logfields.Version(id), logfields.Error(err))
			fmt.Fprintf(w.out, "warning: tag %s not created: %v\n", tag, err)
		}
	}

	fmt.Fprintf(w.out, "Released %s.\n", id)
	return nil
}

// plan enumerates the steps Run would take, for dry-run/verbose output.
func (w *Workflow) plan(id string, opts Options) []string {
	source := opts.Source
	if source == "" {
		source = "current latest (or empty tree)"
	}
	steps := []string{fmt.Sprintf("create version %s from %s", id, source)}
	if opts.SetLatest {
		steps = append(steps, fmt.Sprintf("set latest to %s", id))
	}
	if opts.Build {
		steps = append(steps, "build all versions and regenerate the landing page")
	}
	if opts.CreateTag {
		steps = append(steps, fmt.Sprintf("create git tag docs/%s", id))
	}
	return steps
}

func (w *Workflow) echo(opts Options, format string, args ...any) {
	if opts.Verbose {
		fmt.Fprintf(w.out, "==> "+format+"\n", args...)
	}
}

// confirm asks a yes/no question on the workflow's streams.
func (w *Workflow) confirm(question string) (bool, error) {
	fmt.Fprintf(w.out, "%s [y/N] ", question)
	line, err := bufio.NewReader(w.in).ReadString('\n')
	if err != nil && line == "" {
		return false, verrors.Wrap(err, verrors.KindInternal, "read confirmation")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
