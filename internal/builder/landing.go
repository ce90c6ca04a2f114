package builder

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

// VersionsJSONFile is the client-consumable registry copy at the build root.
const VersionsJSONFile = "versions.json"

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Documentation Versions</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 3rem auto; }
li { margin: 0.5rem 0; }
.status { color: #666; font-size: 0.85em; }
</style>
</head>
<body>
<h1>Documentation Versions</h1>
<ul>
{{- range .Versions }}
<li><a href="./{{ .Path }}/">{{ .Title }}</a>
<span class="status">{{ .Status }}{{ if .Released }}, released {{ .Released }}{{ end }}{{ if eq .ID $.Latest }}, latest{{ end }}</span></li>
{{- end }}
</ul>
</body>
</html>
`))

// writeLandingPage synthesizes the root selector page enumerating every
// registered version.
func writeLandingPage(layout config.Layout, reg *registry.Registry) error {
	if err := os.MkdirAll(layout.BuildRoot, 0750); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create build root %s", layout.BuildRoot)
	}
	path := filepath.Join(layout.BuildRoot, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "create landing page %s", path)
	}
	defer func() { _ = f.Close() }()
	if err := landingTemplate.Execute(f, reg); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "render landing page")
	}
	return nil
}

// writeVersionsJSON emits the registry content as JSON at the build root
// for client-side version switching.
func writeVersionsJSON(layout config.Layout, reg *registry.Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "marshal versions.json")
	}
	path := filepath.Join(layout.BuildRoot, VersionsJSONFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return verrors.Wrap(err, verrors.KindInternal, "write %s", path)
	}
	return nil
}
