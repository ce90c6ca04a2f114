package registry

import (
	"time"
)

// Status identifies whether a version is a stable release or the
// continuously updated development snapshot.
type Status string

const (
	StatusStable      Status = "stable"
	StatusDevelopment Status = "development"
)

// DateFormat is the on-disk representation of release dates.
const DateFormat = "2006-01-02"

// VersionRecord describes one documentation variant.
type VersionRecord struct {
	// ID is the canonical identifier: a v-prefixed semantic version or "dev".
	ID string `yaml:"id" json:"id"`
	// Title is the human-readable display label.
	Title string `yaml:"title" json:"title"`
	// Aliases are alternate identifiers resolving to this record (e.g. "latest").
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	// Path is the relative directory name for content and output; by convention equals ID.
	Path string `yaml:"path" json:"path"`
	// Status is stable or development.
	Status Status `yaml:"status" json:"status"`
	// Released is the release date, empty only for development versions.
	Released string `yaml:"released,omitempty" json:"released,omitempty"`
}

// ReleasedTime parses the release date; the zero time means unreleased.
func (r VersionRecord) ReleasedTime() time.Time {
	if r.Released == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateFormat, r.Released)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Registry is the single persisted collection of version records plus the
// latest/development pointers.
type Registry struct {
	// Versions is the ordered sequence of records, unique by ID.
	Versions []VersionRecord `yaml:"versions" json:"versions"`
	// Latest is the ID of exactly one stable record.
	Latest string `yaml:"latest,omitempty" json:"latest,omitempty"`
	// Development is the ID of the development record, empty if none registered.
	Development string `yaml:"development,omitempty" json:"development,omitempty"`

	// lookup resolves ids and aliases to indexes into Versions. Built once
	// per load/mutation rather than scattering alias scans through every
	// operation.
	lookup map[string]int `yaml:"-" json:"-"`
}
