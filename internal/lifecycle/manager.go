// Package lifecycle creates, removes, and promotes documentation versions.
// The Manager is the only component that mutates both the content store and
// the registry, and it keeps the two consistent: a content directory exists
// exactly when the matching build-configuration file does.
package lifecycle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docvers/internal/config"
	"git.home.luguber.info/inful/docvers/internal/content"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/logfields"
	"git.home.luguber.info/inful/docvers/internal/registry"
	"git.home.luguber.info/inful/docvers/internal/siteconfig"
	"git.home.luguber.info/inful/docvers/internal/version"
)

// DevelopAlias is attached to the development version on creation.
const DevelopAlias = "develop"

// Manager wires the registry store, the content store, and the build-config
// writer into the version lifecycle operations.
type Manager struct {
	layout config.Layout
	store  registry.Store
	writer *siteconfig.Writer
	now    func() time.Time
}

// NewManager creates a Manager over the given layout and registry store.
func NewManager(layout config.Layout, store registry.Store) *Manager {
	return &Manager{
		layout: layout,
		store:  store,
		writer: siteconfig.NewWriter(layout),
		now:    time.Now,
	}
}

// WithClock overrides the time source (tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// List returns the current registry value.
func (m *Manager) List() (*registry.Registry, error) {
	return m.store.Load()
}

// Create registers a new version. Content is copied from sourceID when
// given, from the current latest otherwise, or initialized with a
// placeholder index when neither exists. Any failure between content
// creation and registry insertion rolls the created files back so the
// filesystem never disagrees with the registry.
func (m *Manager) Create(newID, sourceID string) (registry.VersionRecord, error) {
	if err := version.ValidateID(newID); err != nil {
		return registry.VersionRecord{}, err
	}
	newID = version.Canonical(newID)

	reg, err := m.store.Load()
	if err != nil {
		return registry.VersionRecord{}, err
	}
	if reg.Has(newID) {
		return registry.VersionRecord{}, verrors.New(verrors.KindAlreadyExists,
			"version %q already registered", newID)
	}
	contentDir := m.layout.ContentDir(newID)
	if content.Exists(contentDir) || m.writer.Exists(newID) {
		return registry.VersionRecord{}, verrors.New(verrors.KindAlreadyExists,
			"content or build config for %q already on disk", newID).
			WithContext("content_dir", contentDir)
	}

	rec := m.newRecord(newID)

	// Resolve the content source before touching the filesystem.
	source := sourceID
	if source == "" {
		source = reg.Latest
	}
	var sourceRec registry.VersionRecord
	if source != "" {
		sourceRec, err = reg.Get(source)
		if err != nil {
			return registry.VersionRecord{}, err
		}
	}

	if source != "" {
		srcDir := m.layout.ContentDir(sourceRec.Path)
		slog.Info("Copying content", logfields.Version(newID), logfields.Source(sourceRec.ID), logfields.Path(srcDir))
		if err := content.CopyTree(srcDir, contentDir); err != nil {
			// A mid-copy failure can leave a partial destination behind.
			m.rollbackCreate(rec)
			return registry.VersionRecord{}, err
		}
	} else {
		slog.Info("Initializing empty content tree", logfields.Version(newID), logfields.Path(contentDir))
		if err := m.writePlaceholder(contentDir, rec); err != nil {
			m.rollbackCreate(rec)
			return registry.VersionRecord{}, err
		}
	}

	if err := m.writer.Write(rec); err != nil {
		m.rollbackCreate(rec)
		return registry.VersionRecord{}, err
	}

	if err := reg.Insert(rec); err != nil {
		m.rollbackCreate(rec)
		return registry.VersionRecord{}, err
	}
	if err := m.store.Save(reg); err != nil {
		m.rollbackCreate(rec)
		return registry.VersionRecord{}, err
	}

	slog.Info("Version created", logfields.Version(rec.ID), logfields.Status(string(rec.Status)))
	return rec, nil
}

// newRecord builds the record for a fresh version id: dev versions get the
// development status and the develop alias, everything else is stable and
// released today.
func (m *Manager) newRecord(id string) registry.VersionRecord {
	rec := registry.VersionRecord{
		ID:     id,
		Title:  id,
		Path:   id,
		Status: registry.StatusStable,
	}
	if version.IsDev(id) {
		rec.Status = registry.StatusDevelopment
		rec.Aliases = []string{DevelopAlias}
	} else {
		rec.Released = m.now().Format(registry.DateFormat)
	}
	return rec
}

// rollbackCreate removes the content directory and build config written for
// a version whose registration did not complete.
func (m *Manager) rollbackCreate(rec registry.VersionRecord) {
	slog.Warn("Rolling back partially created version", logfields.Version(rec.ID))
	if err := content.DeleteTree(m.layout.ContentDir(rec.Path)); err != nil {
		slog.Error("Rollback failed to remove content", logfields.Version(rec.ID), logfields.Error(err))
	}
	if err := m.writer.Remove(rec.ID); err != nil {
		slog.Error("Rollback failed to remove build config", logfields.Version(rec.ID), logfields.Error(err))
	}
}

// writePlaceholder creates an empty content tree with a minimal index
// document; development versions get an explicit unstable warning up top.
func (m *Manager) writePlaceholder(dir string, rec registry.VersionRecord) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create content directory %s", dir)
	}
	body := fmt.Sprintf("# %s\n\nDocumentation for %s.\n", rec.Title, rec.ID)
	if rec.Status == registry.StatusDevelopment {
		body = "> **Warning:** this is the unreleased development version; content may change at any time.\n\n" + body
	}
	indexPath := filepath.Join(dir, "_index.md")
	if err := os.WriteFile(indexPath, []byte(body), 0644); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "write placeholder index %s", indexPath)
	}
	return nil
}

// Remove deletes a version. The registry mutation happens first so a failed
// registry removal never leaves content orphaned relative to the registry.
// A filesystem failure after the registry change is reported as a
// recoverable inconsistency and is not rolled back; the leftover paths are
// attached to the returned error for manual cleanup.
func (m *Manager) Remove(id string) error {
	reg, err := m.store.Load()
	if err != nil {
		return err
	}
	rec, err := reg.Get(id)
	if err != nil {
		return err
	}
	if rec.ID != id {
		return verrors.New(verrors.KindNotFound, "version %q not found (did you mean %q?)", id, rec.ID)
	}
	if err := reg.Remove(id); err != nil {
		return err
	}
	if err := m.store.Save(reg); err != nil {
		return err
	}

	var leftover []string
	if err := content.DeleteTree(m.layout.ContentDir(rec.Path)); err != nil {
		leftover = append(leftover, m.layout.ContentDir(rec.Path))
		slog.Error("Failed to delete content directory", logfields.Version(id), logfields.Error(err))
	}
	if err := m.writer.Remove(rec.ID); err != nil {
		leftover = append(leftover, m.layout.BuildConfigPath(rec.ID))
		slog.Error("Failed to delete build config", logfields.Version(id), logfields.Error(err))
	}
	if len(leftover) > 0 {
		return verrors.New(verrors.KindInternal,
			"version %q removed from registry but filesystem cleanup failed, remove manually: %v", id, leftover).
			WithContext("leftover", leftover)
	}

	slog.Info("Version removed", logfields.Version(id))
	return nil
}

// SetLatest promotes a stable version to latest. Registry-only; content and
// build configs are untouched.
func (m *Manager) SetLatest(id string) error {
	reg, err := m.store.Load()
	if err != nil {
		return err
	}
	if err := reg.SetLatest(id); err != nil {
		return err
	}
	if err := m.store.Save(reg); err != nil {
		return err
	}
	slog.Info("Latest updated", logfields.Version(id))
	return nil
}
