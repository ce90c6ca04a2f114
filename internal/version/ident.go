package version

import (
	"regexp"
	"strconv"
	"strings"

	verrors "git.home.luguber.info/inful/docvers/internal/errors"
)

// DevID is the literal identifier of the development version.
const DevID = "dev"

// semverPattern matches MAJOR.MINOR.PATCH with an optional leading "v".
var semverPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// ValidateID checks that id is a well-formed version identifier: a semantic
// version with optional "v" prefix, or the literal development id.
func ValidateID(id string) error {
	if id == DevID {
		return nil
	}
	if !semverPattern.MatchString(id) {
		return verrors.New(verrors.KindInvalidVersionFormat,
			"version id %q is not a semantic version (vMAJOR.MINOR.PATCH) or %q", id, DevID)
	}
	return nil
}

// IsDev reports whether id is the development identifier.
func IsDev(id string) bool { return id == DevID }

// Canonical normalizes a valid id to its canonical form: semantic versions
// carry the "v" prefix, the development id is returned unchanged.
func Canonical(id string) string {
	if id == DevID || strings.HasPrefix(id, "v") {
		return id
	}
	if semverPattern.MatchString(id) {
		return "v" + id
	}
	return id
}

// Compare orders two version ids. The development id sorts after every
// semantic version; otherwise numeric semver ordering applies. Returns
// -1, 0, or 1 in the manner of strings.Compare.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	if a == DevID {
		return 1
	}
	if b == DevID {
		return -1
	}
	am := semverPattern.FindStringSubmatch(a)
	bm := semverPattern.FindStringSubmatch(b)
	if am == nil || bm == nil {
		return strings.Compare(a, b)
	}
	for i := 1; i <= 3; i++ {
		an, _ := strconv.Atoi(am[i])
		bn, _ := strconv.Atoi(bm[i])
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	return 0
}
