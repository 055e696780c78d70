// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package i18n

import (
	"net/http"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Locale describes one available locale.
type Locale struct {
	Tag  string `json:"tag"`
	Name string `json:"name"` // in its own language
}

// Response is the body of the /api/i18n endpoints.
type Response struct {
	Locale    string            `json:"locale"`
	Messages  map[string]string `json:"messages"`
	Available []Locale          `json:"available"`
}

// Routes returns the router mounted under /api/i18n.
func (c *Catalog) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.negotiated)
	r.Get("/{lang}", c.explicit)
	return r
}

func (c *Catalog) negotiated(w http.ResponseWriter, r *http.Request) {
	tag := c.Match(r.Header.Get("Accept-Language"))
	w.Header().Set("Vary", "Accept-Language")
	c.write(w, r, tag)
}

func (c *Catalog) explicit(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "lang")
	requested, err := language.Parse(raw)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid request",
			"message": "unknown language tag",
		})
		return
	}
	tag, ok := c.match(requested)
	if !ok {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{
			"error":     "Locale not available",
			"available": c.available(),
		})
		return
	}
	c.write(w, r, tag)
}

func (c *Catalog) write(w http.ResponseWriter, r *http.Request, tag language.Tag) {
	log.FromContext(r.Context()).Debug().
		Str(log.FieldEvent, "i18n.bundle_served").
		Str(log.FieldLocale, tag.String()).
		Msg("translation bundle served")

	w.Header().Set("Content-Language", tag.String())
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpx.WriteJSON(w, http.StatusOK, Response{
		Locale:    tag.String(),
		Messages:  c.Bundle(tag),
		Available: c.available(),
	})
}

func (c *Catalog) available() []Locale {
	out := make([]Locale, len(c.tags))
	for i, t := range c.tags {
		out[i] = Locale{Tag: t.String(), Name: display.Self.Name(t)}
	}
	return out
}
