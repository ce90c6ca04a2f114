package commands

import (
	"context"
	"os"

	"git.home.luguber.info/inful/docvers/internal/builder"
	"git.home.luguber.info/inful/docvers/internal/lifecycle"
	"git.home.luguber.info/inful/docvers/internal/release"
)

// ReleaseCmd runs the release workflow: validate, create, then optionally
// promote, build, and tag. Dry-run prints the plan without mutating
// anything.
type ReleaseCmd struct {
	NewVersion  string `arg:"" help:"Version id to release (vMAJOR.MINOR.PATCH)."`
	Source      string `short:"s" name:"source" help:"Copy content from this version instead of the current latest."`
	SetLatest   bool   `short:"l" name:"set-latest" help:"Point latest at the new version."`
	Build       bool   `short:"b" help:"Build all versions after creating."`
	CreateTag   bool   `short:"t" name:"create-tag" help:"Create a git tag docs/<version> at HEAD."`
	DryRun      bool   `short:"d" name:"dry-run" help:"Print the plan without making changes."`
	VerbosePlan bool   `name:"verbose-plan" help:"Echo every planned step before executing it."`
	Yes         bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ReleaseCmd) Run(g *Global) error {
	store := g.Store()
	manager := lifecycle.NewManager(g.Layout, store)
	orchestrator := builder.NewOrchestrator(g.Layout, store)
	tagger := release.NewGitTagger(".")

	workflow := release.NewWorkflow(manager, store, orchestrator, tagger, os.Stdin, os.Stdout)
	return workflow.Run(context.Background(), release.Options{
		NewVersion:  c.NewVersion,
		Source:      c.Source,
		SetLatest:   c.SetLatest,
		Build:       c.Build,
		CreateTag:   c.CreateTag,
		DryRun:      c.DryRun,
		Verbose:     c.VerbosePlan,
		Interactive: stdinIsTerminal() && !c.Yes,
	})
}
