package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticHandler serves the compiled single-page frontend.
//
// ROUTING MODEL:
// The frontend does its own routing, so a browser may ask for /streaks or
// /about directly. Any path that is not a real file under the static dir is
// answered with index.html and the client router takes over. Paths under
// /api/ never fall back: an unknown API route is a JSON 404, not HTML.
type StaticHandler struct {
	dir    string
	logger *slog.Logger
}

// NewStaticHandler creates a StaticHandler rooted at dir. A missing dir is
// not an error at startup; requests then get a 404 and a warning is logged.
func NewStaticHandler(dir string, logger *slog.Logger) *StaticHandler {
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		logger.Warn("static dir has no index.html, frontend will not be served",
			slog.String("dir", dir),
		)
	}
	return &StaticHandler{dir: dir, logger: logger}
}

// ServeHTTP serves a file from the static dir or falls back to index.html.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "no such endpoint",
		})
		return
	}

	// path.Clean on a rooted path cannot climb above "/".
	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

	info, err := os.Stat(name)
	switch {
	case err == nil && !info.IsDir():
		http.ServeFile(w, r, name)
		return
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		h.logger.Error("static: stat failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	h.serveIndex(w, r)
}

func (h *StaticHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(h.dir, "index.html")
	f, err := os.Open(index)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// The shell must always be revalidated so a deploy is picked up.
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}
