package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docvers/internal/preview"
)

// ServeCmd serves one version's built output on a local port. Without a
// version argument it lists the registry and prompts once on stdin.
type ServeCmd struct {
	Version string `arg:"" optional:"" help:"Version id or alias to serve; omit for an interactive prompt."`
	Port    int    `short:"p" default:"1313" help:"Port to listen on (1024-65535)."`
	Reload  bool   `short:"r" help:"Watch the version's content and rebuild on change."`
}

func (c *ServeCmd) Run(g *Global) error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port %d outside the allowed range 1024-65535", c.Port)
	}

	store := g.Store()
	target := c.Version
	if target == "" {
		reg, err := store.Load()
		if err != nil {
			return err
		}
		target, err = preview.SelectVersion(reg, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := preview.NewServer(g.Layout, store)
	return server.Serve(ctx, target, c.Port, c.Reload)
}
