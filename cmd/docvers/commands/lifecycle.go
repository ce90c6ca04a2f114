package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/docvers/internal/lifecycle"
)

// CreateCmd registers a new version, copying content from --from, from the
// current latest, or starting with a placeholder tree.
type CreateCmd struct {
	ID   string `arg:"" help:"New version id (vMAJOR.MINOR.PATCH or dev)."`
	From string `name:"from" help:"Copy content from this existing version instead of the current latest."`
}

func (c *CreateCmd) Run(g *Global) error {
	manager := lifecycle.NewManager(g.Layout, g.Store())
	rec, err := manager.Create(c.ID, c.From)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s (%s)\n", rec.ID, rec.Status)
	return nil
}

// ListCmd prints every registered version.
type ListCmd struct{}

func (c *ListCmd) Run(g *Global) error {
	manager := lifecycle.NewManager(g.Layout, g.Store())
	reg, err := manager.List()
	if err != nil {
		return err
	}
	if len(reg.Versions) == 0 {
		fmt.Println("No versions registered.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tRELEASED\tALIASES")
	for _, rec := range reg.Versions {
		id := rec.ID
		if rec.ID == reg.Latest {
			id += " *"
		}
		released := rec.Released
		if released == "" {
			released = "-"
		}
		aliases := "-"
		if len(rec.Aliases) > 0 {
			aliases = fmt.Sprintf("%v", rec.Aliases)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, rec.Title, rec.Status, released, aliases)
	}
	return w.Flush()
}

// SetLatestCmd promotes a stable version to latest.
type SetLatestCmd struct {
	ID string `arg:"" help:"Version id to promote."`
}

func (c *SetLatestCmd) Run(g *Global) error {
	manager := lifecycle.NewManager(g.Layout, g.Store())
	if err := manager.SetLatest(c.ID); err != nil {
		return err
	}
	fmt.Printf("Latest is now %s\n", c.ID)
	return nil
}

// RemoveCmd deletes a version's registry entry, content, and build config.
type RemoveCmd struct {
	ID string `arg:"" help:"Version id to remove."`
}

func (c *RemoveCmd) Run(g *Global) error {
	manager := lifecycle.NewManager(g.Layout, g.Store())
	if err := manager.Remove(c.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", c.ID)
	return nil
}
