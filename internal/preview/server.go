// Package preview serves one version's generated output on a local port,
// optionally rebuilding on content changes and pushing live reloads.
package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docvers/internal/builder"
	"git.home.luguber.info/inful/docvers/internal/config"
	verrors "git.home.luguber.info/inful/docvers/internal/errors"
	"git.home.luguber.info/inful/docvers/internal/logfields"
	"git.home.luguber.info/inful/docvers/internal/registry"
)

// debounceDelay coalesces bursts of filesystem events into one rebuild.
const debounceDelay = 300 * time.Millisecond

// Server serves a single version's built output.
type Server struct {
	layout       config.Layout
	store        registry.Store
	orchestrator *builder.Orchestrator
	hub          *LiveReloadHub
	metrics      *metrics
}

// NewServer creates a preview server over the given layout and store.
func NewServer(layout config.Layout, store registry.Store) *Server {
	return &Server{
		layout:       layout,
		store:        store,
		orchestrator: builder.NewOrchestrator(layout, store),
		hub:          NewLiveReloadHub(),
		metrics:      newMetrics(),
	}
}

// WithOrchestrator overrides the build orchestrator (tests).
func (s *Server) WithOrchestrator(o *builder.Orchestrator) *Server {
	s.orchestrator = o
	return s
}

// Serve resolves idOrAlias, binds port, and serves the version's output
// until ctx is cancelled. With reload, the version's content directory is
// watched and the site regenerated on change, with connected browsers
// notified over SSE. Serve never mutates persisted state.
func (s *Server) Serve(ctx context.Context, idOrAlias string, port int, reload bool) error {
	reg, err := s.store.Load()
	if err != nil {
		return err
	}
	rec, err := reg.Get(idOrAlias)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return verrors.Wrap(err, verrors.KindPortInUse, "port %d is already bound", port).
			WithContext("port", port)
	}

	outputDir := s.layout.OutputDir(rec.Path)
	mux := http.NewServeMux()
	mux.Handle("/", s.metrics.instrument(s.staticHandler(outputDir, reload)))
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if reload {
		mux.Handle("/livereload", s.hub)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	var watcherDone func()
	if reload {
		watcherDone, err = s.startWatch(ctx, rec)
		if err != nil {
			_ = ln.Close()
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("Preview server listening", logfields.Version(rec.ID), logfields.Port(port),
		slog.String("url", fmt.Sprintf("http://localhost:%d/", port)))

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return verrors.Wrap(err, verrors.KindInternal, "preview server")
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down preview server")
	if watcherDone != nil {
		watcherDone()
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Preview server shutdown error", logfields.Error(err))
	}
	return nil
}

// staticHandler serves the built output tree; with inject, the live-reload
// client script is appended to HTML pages.
func (s *Server) staticHandler(dir string, inject bool) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	if !inject {
		return fileServer
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !isHTMLPath(p) {
			fileServer.ServeHTTP(w, r)
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if strings.HasSuffix(p, "/") || p == "" {
			file = filepath.Join(file, "index.html")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			fileServer.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if i := strings.LastIndex(string(data), "</body>"); i >= 0 {
			_, _ = w.Write(data[:i])
			_, _ = w.Write([]byte(liveReloadScript))
			_, _ = w.Write(data[i:])
			return
		}
		_, _ = w.Write(data)
		_, _ = w.Write([]byte(liveReloadScript))
	})
}

func isHTMLPath(p string) bool {
	return p == "" || p == "/" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html")
}

// startWatch wires the fsnotify watcher, debounce, and rebuild worker for a
// version's content directory. The returned function stops the watcher.
func (s *Server) startWatch(ctx context.Context, rec registry.VersionRecord) (func(), error) {
	contentDir := s.layout.ContentDir(rec.Path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, verrors.Wrap(err, verrors.KindInternal, "fsnotify")
	}
	if err := addDirsRecursive(watcher, contentDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := newDebouncer(rebuildReq)

	go s.rebuildWorker(ctx, rec, rebuildReq)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleFileEvent(watcher, ev, trigger)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watcher error", logfields.Error(werr))
			}
		}
	}()

	slog.Info("Watching content for changes", logfields.Version(rec.ID), logfields.Path(contentDir))
	return func() { _ = watcher.Close() }, nil
}

// newDebouncer returns a trigger that forwards at most one rebuild request
// per debounce window.
func newDebouncer(rebuildReq chan struct{}) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
}

// rebuildWorker serializes rebuilds; a request arriving mid-build queues
// exactly one follow-up.
func (s *Server) rebuildWorker(ctx context.Context, rec registry.VersionRecord, rebuildReq chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-rebuildReq:
			if !ok {
				return
			}
			slog.Info("Change detected, rebuilding", logfields.Version(rec.ID))
			if _, err := s.orchestrator.Build(ctx, rec.ID); err != nil {
				slog.Warn("Rebuild failed", logfields.Version(rec.ID), logfields.Error(err))
				s.metrics.rebuilds.WithLabelValues("failure").Inc()
				s.hub.Broadcast("error:" + strconv.FormatInt(time.Now().UnixNano(), 10))
			} else {
				s.metrics.rebuilds.WithLabelValues("success").Inc()
				s.hub.Broadcast(strconv.FormatInt(time.Now().UnixNano(), 10))
			}
		}
	}
}

// handleFileEvent filters noise and triggers the debouncer; new directories
// are added to the watch set.
func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(p); err != nil {
				slog.Warn("watch add failed", logfields.Path(p), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(p string) bool {
	base := filepath.Base(p)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
