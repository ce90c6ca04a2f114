package builder

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
)

// Runner invokes the external site generator for one version.
type Runner interface {
	// Run builds the site described by configPath into outputDir, returning
	// an error when the generator exits non-zero.
	Run(ctx context.Context, configPath, outputDir string) error
}

// NewRunner selects the runner for a layout: the real generator binary, or
// a no-op stand-in when DOCVERS_SKIP_GENERATOR=1 (CI and tests).
func NewRunner(layout config.Layout) Runner {
	if layout.SkipGenerator {
		return skipRunner{}
	}
	return &execRunner{binary: layout.Generator}
}

// execRunner shells out to the generator binary.
type execRunner struct {
	binary string
}

func (r *execRunner) Run(ctx context.Context, configPath, outputDir string) error {
	cmd := exec.CommandContext(ctx, r.binary, "--config", configPath, "--destination", outputDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Debug("Running site generator", "binary", r.binary, "config", configPath, "destination", outputDir)
	if err := cmd.Run(); err != nil {
		return verrors.Wrap(err, verrors.KindBuildFailed, "generator %s failed for %s", r.binary, configPath)
	}
	return nil
}

// skipRunner stands in for the generator when it is disabled. It still
// materializes the output directory so downstream steps (landing page,
// preview) keep working.
type skipRunner struct{}

func (skipRunner) Run(_ context.Context, configPath, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create output directory %s", outputDir)
	}
	marker := filepath.Join(outputDir, ".generator-skipped")
	if err := os.WriteFile(marker, []byte(configPath+"\n"), 0644); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "write skip marker")
	}
	slog.Info("Generator skipped", "config", configPath, "destination", outputDir)
	return nil
}
