package preview

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

// SelectVersion lists every registry entry on out and reads one selection
// from in: either a list number or a version id/alias. A single prompt, a
// single attempt; unparseable input fails with InvalidSelection.
func SelectVersion(reg *registry.Registry, in io.Reader, out io.Writer) (string, error) {
	if len(reg.Versions) == 0 {
		return "", verrors.New(verrors.KindNotFound, "no versions registered")
	}
	fmt.Fprintln(out, "Available versions:")
	for i, rec := range reg.Versions {
		marker := ""
		if rec.ID == reg.Latest {
			marker = " (latest)"
		}
		if rec.ID == reg.Development {
			marker = " (development)"
		}
		fmt.Fprintf(out, "  %d) %s [%s]%s\n", i+1, rec.ID, rec.Status, marker)
	}
	fmt.Fprint(out, "Select a version: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", verrors.Wrap(err, verrors.KindInvalidSelection, "read selection")
	}
	choice := strings.TrimSpace(line)
	if choice == "" {
		return "", verrors.New(verrors.KindInvalidSelection, "empty selection")
	}
	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(reg.Versions) {
			return "", verrors.New(verrors.KindInvalidSelection, "selection %d out of range 1-%d", n, len(reg.Versions))
		}
		return reg.Versions[n-1].ID, nil
	}
	if rec, err := reg.Get(choice); err == nil {
		return rec.ID, nil
	}
	return "", verrors.New(verrors.KindInvalidSelection, "%q is neither a list number nor a known version", choice)
}
