// Package config resolves the on-disk layout docvers operates on: where the
// registry and per-version build configs live, where version content trees
// sit, and where generated output goes.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Defaults for the layout when neither flags nor environment override them.
const (
	DefaultConfigDir   = ".docvers"
	DefaultContentRoot = "docs"
	DefaultBuildRoot   = "site"
	DefaultGenerator   = "hugo"
)

// Environment variable names recognized by ResolveLayout.
const (
	EnvConfigDir     = "DOCVERS_CONFIG_DIR"
	EnvContentRoot   = "DOCVERS_CONTENT_DIR"
	EnvBuildRoot     = "DOCVERS_BUILD_DIR"
	EnvGenerator     = "DOCVERS_GENERATOR"
	EnvSkipGenerator = "DOCVERS_SKIP_GENERATOR"
)

// RegistryFile is the fixed name of the registry document inside ConfigDir.
const RegistryFile = "versions.yaml"

// HistoryFile is the fixed name of the build history database inside ConfigDir.
const HistoryFile = "history.db"

// Layout describes the resolved directory structure for one invocation.
type Layout struct {
	// ConfigDir holds versions.yaml, per-version build configs, and history.db.
	ConfigDir string
	// ContentRoot holds one content directory per version.
	ContentRoot string
	// BuildRoot receives one output directory per version plus the landing page.
	BuildRoot string
	// Generator is the external site generator binary.
	Generator string
	// SkipGenerator treats generator invocations as no-op successes (CI/tests).
	SkipGenerator bool
}

// ResolveLayout builds a Layout from defaults, .env, environment, and the
// optional --config-dir flag value (highest precedence for the config dir).
// Existing process environment always wins over .env entries.
func ResolveLayout(configDirFlag string) Layout {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	l := Layout{
		ConfigDir:     envOr(EnvConfigDir, DefaultConfigDir),
		ContentRoot:   envOr(EnvContentRoot, DefaultContentRoot),
		BuildRoot:     envOr(EnvBuildRoot, DefaultBuildRoot),
		Generator:     envOr(EnvGenerator, DefaultGenerator),
		SkipGenerator: os.Getenv(EnvSkipGenerator) == "1",
	}
	if configDirFlag != "" {
		l.ConfigDir = configDirFlag
	}
	return l
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RegistryPath returns the path of the registry document.
func (l Layout) RegistryPath() string {
	return filepath.Join(l.ConfigDir, RegistryFile)
}

// HistoryPath returns the path of the build history database.
func (l Layout) HistoryPath() string {
	return filepath.Join(l.ConfigDir, HistoryFile)
}

// BuildConfigPath returns the per-version build-configuration file path.
// The file name is derived from the version id, never from user input paths.
func (l Layout) BuildConfigPath(id string) string {
	return filepath.Join(l.ConfigDir, id+".yaml")
}

// ContentDir returns the content directory for a version path.
func (l Layout) ContentDir(path string) string {
	return filepath.Join(l.ContentRoot, path)
}

// OutputDir returns the build output directory for a version path.
func (l Layout) OutputDir(path string) string {
	return filepath.Join(l.BuildRoot, path)
}
