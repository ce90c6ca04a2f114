package registry

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	verrors "git.home.luguber.info/inful/docvers/internal/errors"
)

// Store persists the registry document. Implementations load the whole
// value and rewrite it completely on save; there is no incremental update.
type Store interface {
	// Load reads the registry. A missing document yields an empty registry.
	Load() (*Registry, error)

	// Save validates and rewrites the registry deterministically.
	Save(r *Registry) error
}

// FileStore is the YAML-file implementation of Store.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the registry document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and parses the registry document.
func (s *FileStore) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, verrors.Wrap(err, verrors.KindInternal, "read registry %s", s.path)
	}
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, verrors.Wrap(err, verrors.KindInternal, "parse registry %s", s.path)
	}
	r.reindex()
	if err := r.Validate(); err != nil {
		return nil, verrors.Wrap(err, verrors.KindInternal, "registry %s is inconsistent", s.path)
	}
	return &r, nil
}

// Save validates and rewrites the whole document. Struct marshalling keeps
// the key order stable, so repeated saves of equal values are byte-identical.
func (s *FileStore) Save(r *Registry) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "marshal registry")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create registry directory")
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "write registry %s", s.path)
	}
	return nil
}

// MemStore is an in-memory Store for unit tests; it deep-copies on both
// Load and Save so callers cannot mutate stored state through aliasing.
type MemStore struct {
	mu  sync.Mutex
	reg *Registry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns a copy of the stored registry, or an empty one.
func (s *MemStore) Load() (*Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg == nil {
		return New(), nil
	}
	return copyRegistry(s.reg), nil
}

// Save validates and stores a copy of the registry.
func (s *MemStore) Save(r *Registry) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg = copyRegistry(r)
	return nil
}

func copyRegistry(r *Registry) *Registry {
	out := &Registry{
		Versions:    make([]VersionRecord, len(r.Versions)),
		Latest:      r.Latest,
		Development: r.Development,
	}
	for i, rec := range r.Versions {
		rec.Aliases = append([]string(nil), rec.Aliases...)
		out.Versions[i] = rec
	}
	out.reindex()
	return out
}
