package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docvers/internal/config"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

// Global state shared by all subcommands: the resolved on-disk layout.
type Global struct {
	Layout config.Layout
}

// Store returns the registry store for the resolved layout.
func (g *Global) Store() registry.Store {
	return registry.NewFileStore(g.Layout.RegistryPath())
}

// CLI definition & global flags.
type CLI struct {
	ConfigDir string           `short:"c" name:"config-dir" help:"Directory holding the registry and per-version build configs" default:""`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Create    CreateCmd    `cmd:"" help:"Create a new documentation version"`
	List      ListCmd      `cmd:"" help:"List registered versions"`
	SetLatest SetLatestCmd `cmd:"" name:"set-latest" help:"Point latest at a stable version"`
	Remove    RemoveCmd    `cmd:"" help:"Remove a version (content, build config, and registry entry)"`
	Build     BuildCmd     `cmd:"" help:"Build one version or all versions with the site generator"`
	History   HistoryCmd   `cmd:"" help:"Show recent build history"`
	Serve     ServeCmd     `cmd:"" help:"Serve one version's built output locally"`
	Release   ReleaseCmd   `cmd:"" help:"Run the release workflow (create, promote, build, tag)"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// stdinIsTerminal reports whether stdin is attached to a terminal, which
// gates interactive confirmation prompts (CI proceeds without prompting).
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
