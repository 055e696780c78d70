// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package site serves the embedded single-page front end.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/ManuGH/launchpad/internal/device"
	"github.com/ManuGH/launchpad/internal/log"
)

//go:embed all:dist
var distFS embed.FS

const (
	indexFile       = "index.html"
	mobileIndexFile = "index.mobile.html"

	cacheImmutable = "public, max-age=31536000, immutable"
	cacheShort     = "public, max-age=3600"
	cacheNone      = "no-cache"
)

// hashedName matches bundler output such as index-B7x2kQ9a.js.
var hashedName = regexp.MustCompile(`[-.][A-Za-z0-9_]{8,}\.[A-Za-z0-9]+$`)

// Config configures the site handler.
type Config struct {
	// CSP is sent on every response when set.
	CSP string
	// Dir serves the front end from disk instead of the embedded bundle.
	Dir string
}

type handler struct {
	root      fs.FS
	files     http.Handler
	csp       string
	hasMobile bool
	loaded    time.Time
}

// Handler returns the front-end handler. It fails when the bundle has no index.html.
func Handler(cfg Config) (http.Handler, error) {
	root, err := openRoot(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(root, indexFile); err != nil {
		return nil, fmt.Errorf("site: %s missing: %w", indexFile, err)
	}
	_, mobileErr := fs.Stat(root, mobileIndexFile)

	return &handler{
		root:      root,
		files:     http.FileServerFS(root),
		csp:       cfg.CSP,
		hasMobile: mobileErr == nil,
		loaded:    time.Now(),
	}, nil
}

func openRoot(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(distFS, "dist")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site: %s is not a directory", dir)
	}
	logger := log.WithComponent("site")
	logger.Info().Str(log.FieldEvent, "site.disk_override").Str("dir", dir).Msg("serving front end from disk")
	return os.DirFS(dir), nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.csp != "" {
		w.Header().Set("Content-Security-Policy", h.csp)
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || name == indexFile {
		h.serveIndex(w, r)
		return
	}

	info, err := fs.Stat(h.root, name)
	switch {
	case err == nil && !info.IsDir():
		h.serveFile(w, r, name)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Str(log.FieldEvent, "site.stat_failed").Str(log.FieldPath, name).Msg("failed to stat front-end file")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	case path.Ext(name) != "":
		// Missing assets must not turn into HTML.
		http.NotFound(w, r)
	default:
		h.serveIndex(w, r)
	}
}

func (h *handler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	switch {
	case path.Ext(name) == ".html":
		w.Header().Set("Cache-Control", cacheNone)
	case strings.HasPrefix(name, "assets/") || hashedName.MatchString(name):
		w.Header().Set("Cache-Control", cacheImmutable)
	default:
		w.Header().Set("Cache-Control", cacheShort)
	}
	h.files.ServeHTTP(w, r)
}

// serveIndex writes the SPA entry point, picking the mobile variant when the
// bundle ships one and the client is a phone.
func (h *handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	name := indexFile
	hdr := w.Header()
	hdr.Set("Accept-CH", device.AcceptCH)
	if h.hasMobile {
		hdr.Set("Vary", device.HeaderMobileHint+", User-Agent")
		if device.Classify(r) == device.Mobile {
			name = mobileIndexFile
		}
	}

	data, err := fs.ReadFile(h.root, name)
	if err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Str(log.FieldEvent, "site.index_unreadable").Str(log.FieldPath, name).Msg("failed to read index")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	hdr.Set("Cache-Control", cacheNone)
	hdr.Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, name, h.loaded, bytes.NewReader(data))
}
