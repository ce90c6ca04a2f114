// Package registry is the source of truth mapping version identifiers to
// metadata. The registry is treated as a value: loaded fully into memory,
// mutated, and fully rewritten by the caller through a Store. Concurrent
// invocations against the same registry file are not serialized; the last
// writer wins.
package registry

import (
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
)

// New returns an empty registry.
func New() *Registry {
	r := &Registry{}
	r.reindex()
	return r
}

// reindex rebuilds the id/alias lookup table. Must be called after every
// mutation of Versions.
func (r *Registry) reindex() {
	r.lookup = make(map[string]int, len(r.Versions)*2)
	for i, rec := range r.Versions {
		r.lookup[rec.ID] = i
		for _, alias := range rec.Aliases {
			r.lookup[alias] = i
		}
	}
}

// Get resolves a primary id or an alias to its record.
func (r *Registry) Get(idOrAlias string) (VersionRecord, error) {
	if r.lookup == nil {
		r.reindex()
	}
	i, ok := r.lookup[idOrAlias]
	if !ok {
		return VersionRecord{}, verrors.New(verrors.KindNotFound, "version %q not found", idOrAlias)
	}
	return r.Versions[i], nil
}

// Has reports whether an id or alias resolves to any record.
func (r *Registry) Has(idOrAlias string) bool {
	_, err := r.Get(idOrAlias)
	return err == nil
}

// Insert adds a record, failing with DuplicateID if its id or any of its
// aliases collide with an existing id or alias anywhere in the registry.
func (r *Registry) Insert(rec VersionRecord) error {
	if r.lookup == nil {
		r.reindex()
	}
	if _, ok := r.lookup[rec.ID]; ok {
		return verrors.New(verrors.KindDuplicateID, "version id %q already registered", rec.ID)
	}
	for _, alias := range rec.Aliases {
		if _, ok := r.lookup[alias]; ok {
			return verrors.New(verrors.KindDuplicateID, "alias %q already registered", alias)
		}
	}
	r.Versions = append(r.Versions, rec)
	if rec.Status == StatusDevelopment && r.Development == "" {
		r.Development = rec.ID
	}
	if rec.Status == StatusStable && r.Latest == "" {
		r.Latest = rec.ID
	}
	r.reindex()
	return nil
}

// SetLatest points the latest pointer at id. The target must exist and be
// stable; otherwise latest is left unchanged.
func (r *Registry) SetLatest(id string) error {
	rec, err := r.Get(id)
	if err != nil {
		return err
	}
	if rec.Status != StatusStable {
		return verrors.New(verrors.KindInvalidState,
			"version %q has status %q, latest must point at a stable version", id, rec.Status)
	}
	r.Latest = rec.ID
	return nil
}

// Remove deletes a record by primary id. Removal of the record currently
// referenced by latest or development fails with InUse; the caller must
// reassign the pointer first. This keeps the pointer invariants from being
// silently violated.
func (r *Registry) Remove(id string) error {
	if r.lookup == nil {
		r.reindex()
	}
	i, ok := r.lookup[id]
	if !ok || r.Versions[i].ID != id {
		return verrors.New(verrors.KindNotFound, "version %q not found", id)
	}
	if r.Latest == id {
		return verrors.New(verrors.KindInUse, "version %q is the current latest, reassign latest first", id)
	}
	if r.Development == id {
		return verrors.New(verrors.KindInUse, "version %q is the current development version", id)
	}
	r.Versions = append(r.Versions[:i], r.Versions[i+1:]...)
	r.reindex()
	return nil
}

// Validate checks the registry invariants. Stores call it before persisting
// so a corrupt value never reaches disk.
func (r *Registry) Validate() error {
	seen := make(map[string]string, len(r.Versions)*2)
	for _, rec := range r.Versions {
		if prev, ok := seen[rec.ID]; ok {
			return verrors.New(verrors.KindDuplicateID, "identifier %q used by both %q and %q", rec.ID, prev, rec.ID)
		}
		seen[rec.ID] = rec.ID
		for _, alias := range rec.Aliases {
			if prev, ok := seen[alias]; ok {
				return verrors.New(verrors.KindDuplicateID, "identifier %q used by both %q and %q", alias, prev, rec.ID)
			}
			seen[alias] = rec.ID
		}
		if rec.Status == StatusStable && rec.Released == "" {
			return verrors.New(verrors.KindInvalidState, "stable version %q has no release date", rec.ID)
		}
	}
	if r.Latest != "" {
		rec, err := r.Get(r.Latest)
		if err != nil {
			return verrors.New(verrors.KindInvalidState, "latest points at unknown version %q", r.Latest)
		}
		if rec.Status != StatusStable {
			return verrors.New(verrors.KindInvalidState, "latest points at non-stable version %q", r.Latest)
		}
	}
	if r.Development != "" {
		rec, err := r.Get(r.Development)
		if err != nil {
			return verrors.New(verrors.KindInvalidState, "development points at unknown version %q", r.Development)
		}
		if rec.Status != StatusDevelopment {
			return verrors.New(verrors.KindInvalidState, "development points at non-development version %q", r.Development)
		}
	}
	return nil
}
