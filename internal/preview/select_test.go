package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

func selectFixture(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Insert(registry.VersionRecord{
		ID: "v2.0.0", Title: "v2.0.0", Path: "v2.0.0",
		Status: registry.StatusStable, Released: "2026-08-24",
	}))
	require.NoError(t, r.Insert(registry.VersionRecord{
		ID: "dev", Title: "dev", Path: "dev",
		Status: registry.StatusDevelopment, Aliases: []string{"develop"},
	}))
	return r
}

func TestSelectVersion_ByNumber(t *testing.T) {
	reg := selectFixture(t)
	var out bytes.Buffer

	id, err := SelectVersion(reg, strings.NewReader("2\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "dev", id)

	// The prompt lists every version with its marker.
	require.Contains(t, out.String(), "1) v2.0.0 [stable] (latest)")
	require.Contains(t, out.String(), "2) dev [development] (development)")
}

func TestSelectVersion_ByIDAndAlias(t *testing.T) {
	reg := selectFixture(t)

	id, err := SelectVersion(reg, strings.NewReader("v2.0.0\n"), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "v2.0.0", id)

	id, err = SelectVersion(reg, strings.NewReader("develop\n"), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "dev", id)
}

func TestSelectVersion_InvalidInput(t *testing.T) {
	reg := selectFixture(t)

	for _, input := range []string{"0\n", "3\n", "banana\n", "\n"} {
		_, err := SelectVersion(reg, strings.NewReader(input), &bytes.Buffer{})
		require.True(t, verrors.IsKind(err, verrors.KindInvalidSelection), "input %q", input)
	}
}

func TestSelectVersion_EmptyRegistry(t *testing.T) {
	_, err := SelectVersion(registry.New(), strings.NewReader("1\n"), &bytes.Buffer{})
	require.True(t, verrors.IsKind(err, verrors.KindNotFound))
}
