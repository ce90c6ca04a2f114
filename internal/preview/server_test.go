package preview

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

func serverFixture(t *testing.T) (*Server, config.Layout) {
	t.Helper()
	tmp := t.TempDir()
	layout := config.Layout{
		ConfigDir:     filepath.Join(tmp, ".docvers"),
		ContentRoot:   filepath.Join(tmp, "docs"),
		BuildRoot:     filepath.Join(tmp, "site"),
		SkipGenerator: true,
	}
	store := registry.NewMemStore()
	reg := registry.New()
	require.NoError(t, reg.Insert(registry.VersionRecord{
		ID: "v2.0.0", Title: "v2.0.0", Path: "v2.0.0",
		Status: registry.StatusStable, Released: "2026-08-24",
	}))
	require.NoError(t, store.Save(reg))
	return NewServer(layout, store), layout
}

func TestServe_PortInUse(t *testing.T) {
	s, _ := serverFixture(t)

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	err = s.Serve(context.Background(), "v2.0.0", port, false)
	require.True(t, verrors.IsKind(err, verrors.KindPortInUse))
}

func TestServe_UnknownVersion(t *testing.T) {
	s, _ := serverFixture(t)
	err := s.Serve(context.Background(), "v9.9.9", 0, false)
	require.True(t, verrors.IsKind(err, verrors.KindNotFound))
}

func TestStaticHandler_InjectsReloadScript(t *testing.T) {
	s, layout := serverFixture(t)

	dir := layout.OutputDir("v2.0.0")
	require.NoError(t, os.MkdirAll(dir, 0750))
	page := "<html><body><h1>Docs</h1></body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0644))

	h := s.staticHandler(dir, true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	require.Equal(t, 1, strings.Count(body, "EventSource('/livereload')"))
	require.Less(t, strings.Index(body, "EventSource"), strings.Index(body, "</body>"),
		"script must be injected before the closing body tag")

	// Non-HTML assets pass through untouched.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	require.Equal(t, "body{}", rec.Body.String())
}

func TestStaticHandler_NoInjectionWhenReloadOff(t *testing.T) {
	s, layout := serverFixture(t)

	dir := layout.OutputDir("v2.0.0")
	require.NoError(t, os.MkdirAll(dir, 0750))
	page := "<html><body>plain</body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0644))

	rec := httptest.NewRecorder()
	s.staticHandler(dir, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotContains(t, rec.Body.String(), "EventSource")
}

func TestLiveReloadHub_ReplaysLastRevision(t *testing.T) {
	hub := NewLiveReloadHub()
	hub.Broadcast("rev-1")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/livereload", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after context cancellation")
	}

	require.Equal(t, 0, hub.ClientCount())
	body := rec.Body.String()
	require.Contains(t, body, ": connected")
	require.Contains(t, body, `data: {"rev":"rev-1"}`)
}

func TestLiveReloadHub_CloseRejectsNewClients(t *testing.T) {
	hub := NewLiveReloadHub()
	hub.Close()

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livereload", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestShouldIgnoreEvent(t *testing.T) {
	cases := []struct {
		path   string
		ignore bool
	}{
		{"/docs/v2.0.0/guide.md", false},
		{"/docs/v2.0.0/.guide.md.swp", true},
		{"/docs/v2.0.0/guide.md~", true},
		{"/docs/v2.0.0/#guide.md#", true},
		{"/docs/v2.0.0/.git", true},
		{"/docs/v2.0.0/Thumbs.db", true},
		{"/docs/v2.0.0/sub/page.md", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ignore, shouldIgnoreEvent(tc.path), tc.path)
	}
}

func TestServe_ShutsDownOnContextCancel(t *testing.T) {
	s, layout := serverFixture(t)

	dir := layout.OutputDir("v2.0.0")
	require.NoError(t, os.MkdirAll(dir, 0750))

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, "v2.0.0", port, false) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", port))
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 25*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
