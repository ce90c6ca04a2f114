package release

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docvers/internal/builder"
	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/lifecycle"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

type fakeTagger struct {
	tags []string
	err  error
}

func (f *fakeTagger) CreateTag(name string) error {
	f.tags = append(f.tags, name)
	return f.err
}

func newTestWorkflow(t *testing.T, tagger Tagger, in string) (*Workflow, registry.Store, *bytes.Buffer) {
	t.Helper()
	tmp := t.TempDir()
	layout := config.Layout{
		ConfigDir:     filepath.Join(tmp, ".docvers"),
		ContentRoot:   filepath.Join(tmp, "docs"),
		BuildRoot:     filepath.Join(tmp, "site"),
		SkipGenerator: true,
	}
	store := registry.NewFileStore(layout.RegistryPath())
	manager := lifecycle.NewManager(layout, store).
		WithClock(func() time.Time { return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) })
	orchestrator := builder.NewOrchestrator(layout, store)
	out := &bytes.Buffer{}
	w := NewWorkflow(manager, store, orchestrator, tagger, strings.NewReader(in), out)
	return w, store, out
}

func TestRun_CreatesAndTags(t *testing.T) {
	tagger := &fakeTagger{}
	w, store, out := newTestWorkflow(t, tagger, "")

	err := w.Run(context.Background(), Options{
		NewVersion: "2.1.0",
		SetLatest:  true,
		CreateTag:  true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"docs/v2.1.0"}, tagger.tags)
	require.Contains(t, out.String(), "Released v2.1.0.")

	reg, err := store.Load()
	require.NoError(t, err)
	require.True(t, reg.Has("v2.1.0"))
	require.Equal(t, "v2.1.0", reg.Latest)
}

func TestRun_DryRunMutatesNothing(t *testing.T) {
	tagger := &fakeTagger{}
	w, store, out := newTestWorkflow(t, tagger, "")

	err := w.Run(context.Background(), Options{
		NewVersion: "v3.0.0",
		SetLatest:  true,
		Build:      true,
		CreateTag:  true,
		DryRun:     true,
	})
	require.NoError(t, err)

	require.Contains(t, out.String(), "Release plan for v3.0.0:")
	require.Contains(t, out.String(), "create git tag docs/v3.0.0")
	require.Contains(t, out.String(), "Dry run; no changes made.")
	require.Empty(t, tagger.tags)

	reg, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, reg.Versions)
}

func TestRun_InvalidVersion(t *testing.T) {
	w, _, _ := newTestWorkflow(t, &fakeTagger{}, "")
	err := w.Run(context.Background(), Options{NewVersion: "next"})
	require.True(t, verrors.IsKind(err, verrors.KindInvalidVersionFormat))
}

func TestRun_AlreadyRegisteredFailsBeforeAnyStep(t *testing.T) {
	tagger := &fakeTagger{}
	w, _, _ := newTestWorkflow(t, tagger, "")

	require.NoError(t, w.Run(context.Background(), Options{NewVersion: "v1.0.0"}))

	err := w.Run(context.Background(), Options{NewVersion: "v1.0.0", CreateTag: true})
	require.True(t, verrors.IsKind(err, verrors.KindAlreadyExists))
	require.Empty(t, tagger.tags)
}

func TestRun_UnknownSource(t *testing.T) {
	w, _, _ := newTestWorkflow(t, &fakeTagger{}, "")
	err := w.Run(context.Background(), Options{NewVersion: "v1.0.0", Source: "v0.1.0"})
	require.True(t, verrors.IsKind(err, verrors.KindNotFound))
}

func TestRun_InteractiveDeclineAborts(t *testing.T) {
	w, store, out := newTestWorkflow(t, &fakeTagger{}, "n\n")

	err := w.Run(context.Background(), Options{NewVersion: "v1.0.0", Interactive: true})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Aborted.")

	reg, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, reg.Versions)
}

func TestRun_InteractiveAcceptProceeds(t *testing.T) {
	w, store, _ := newTestWorkflow(t, &fakeTagger{}, "y\n")

	err := w.Run(context.Background(), Options{NewVersion: "v1.0.0", Interactive: true})
	require.NoError(t, err)

	reg, err := store.Load()
	require.NoError(t, err)
	require.True(t, reg.Has("v1.0.0"))
}

func TestRun_TagFailureKeepsVersion(t *testing.T) {
	tagger := &fakeTagger{err: errors.New("not a git repository")}
	w, store, out := newTestWorkflow(t, tagger, "")

	err := w.Run(context.Background(), Options{NewVersion: "v1.0.0", CreateTag: true})
	require.NoError(t, err)
	require.Contains(t, out.String(), "warning: tag docs/v1.0.0 not created")

	reg, err := store.Load()
	require.NoError(t, err)
	require.True(t, reg.Has("v1.0.0"))
}

func TestRun_BuildStepProducesLandingPage(t *testing.T) {
	w, _, out := newTestWorkflow(t, &fakeTagger{}, "")

	err := w.Run(context.Background(), Options{NewVersion: "v1.0.0", Build: true, Verbose: true})
	require.NoError(t, err)
	require.Contains(t, out.String(), "==> build all versions")
}
