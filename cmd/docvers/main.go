package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docvers/cmd/docvers/commands"
	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("docvers"),
		kong.Description("Documentation version lifecycle tool: create, promote, remove, build, and preview parallel documentation versions."),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	global := &commands.Global{Layout: config.ResolveLayout(cli.ConfigDir)}
	if err := ctx.Run(global); err != nil {
		fmt.Fprintf(os.Stderr, "docvers: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode keeps one non-zero code per error category so scripts can
// distinguish validation failures from runtime ones.
func exitCode(err error) int {
	switch verrors.KindOf(err) {
	case verrors.KindInvalidVersionFormat, verrors.KindInvalidSelection:
		return 2
	default:
		return 1
	}
}
