package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyVersion    = "version"
	KeyAlias      = "alias"
	KeyPath       = "path"
	KeyPort       = "port"
	KeyBuildID    = "build_id"
	KeyDurationMS = "duration_ms"
	KeySource     = "source"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Version(id string) slog.Attr     { return slog.String(KeyVersion, id) }
func Alias(a string) slog.Attr        { return slog.String(KeyAlias, a) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Source(id string) slog.Attr      { return slog.String(KeySource, id) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
