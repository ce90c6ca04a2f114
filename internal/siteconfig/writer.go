// Package siteconfig synthesizes the per-version configuration file handed
// to the external site generator. One file exists per registered version;
// it is created and removed together with the version's content directory.
package siteconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

// Theme color tokens distinguish stable from development versions in the
// rendered site chrome.
const (
	colorStable      = "indigo"
	colorDevelopment = "amber"
)

// devBanner is shown on every page of a development version.
const devBanner = "This is the documentation for an unreleased development version."

// Writer produces build-configuration files beneath a Layout's config dir.
type Writer struct {
	layout config.Layout
}

// NewWriter creates a Writer for the given layout.
func NewWriter(layout config.Layout) *Writer {
	return &Writer{layout: layout}
}

// Write synthesizes the configuration file for a version record. The file
// parameterizes the generator with the version's content directory, output
// directory, subpath base URL, and a color token derived from its status.
func (w *Writer) Write(rec registry.VersionRecord) error {
	root := map[string]any{
		"title":        rec.Title,
		"baseURL":      "/" + rec.Path + "/",
		"contentDir":   absOrSelf(w.layout.ContentDir(rec.Path)),
		"publishDir":   absOrSelf(w.layout.OutputDir(rec.Path)),
		"languageCode": "en",
		"params": map[string]any{
			"version":        rec.ID,
			"version_status": string(rec.Status),
			"color":          colorFor(rec.Status),
		},
	}
	if rec.Status == registry.StatusDevelopment {
		params := root["params"].(map[string]any)
		params["banner"] = devBanner
	}
	if rec.Released != "" {
		params := root["params"].(map[string]any)
		params["released"] = rec.Released
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "marshal build config for %s", rec.ID)
	}
	path := w.layout.BuildConfigPath(rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create config directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "write build config %s", path)
	}
	return nil
}

// Remove deletes the configuration file for a version id; missing files are
// tolerated so removal is idempotent.
func (w *Writer) Remove(id string) error {
	path := w.layout.BuildConfigPath(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return verrors.Wrap(err, verrors.KindInternal, "remove build config %s", path)
	}
	return nil
}

// Exists reports whether the configuration file for a version id is present.
func (w *Writer) Exists(id string) bool {
	_, err := os.Stat(w.layout.BuildConfigPath(id))
	return err == nil
}

func colorFor(status registry.Status) string {
	if status == registry.StatusDevelopment {
		return colorDevelopment
	}
	return colorStable
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
