// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package device classifies clients into the layout classes the front end renders.
package device

import (
	"net/http"
	"strings"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
)

// Class is a layout class.
type Class string

const (
	Mobile  Class = "mobile"
	Tablet  Class = "tablet"
	Desktop Class = "desktop"
)

const (
	// HeaderMobileHint is the User-Agent Client Hint that reports a mobile device.
	HeaderMobileHint = "Sec-CH-UA-Mobile"
	// AcceptCH is the value advertised on HTML responses to request the hint.
	AcceptCH = HeaderMobileHint
)

// Breakpoints are the viewport widths (CSS px) at which the layout switches.
// They mirror the front end's media queries.
type Breakpoints struct {
	Mobile int `json:"mobile"`
	Tablet int `json:"tablet"`
}

// DefaultBreakpoints matches the front end's useMediaQuery hook.
var DefaultBreakpoints = Breakpoints{Mobile: 768, Tablet: 1024}

// Classify returns the layout class for r. An explicit client hint wins over the
// User-Agent string.
func Classify(r *http.Request) Class {
	switch strings.TrimSpace(r.Header.Get(HeaderMobileHint)) {
	case "?1":
		return Mobile
	case "?0":
		if c := classifyUserAgent(r.UserAgent()); c == Tablet {
			return Tablet
		}
		return Desktop
	}
	return classifyUserAgent(r.UserAgent())
}

// Response is the body of GET /api/device.
type Response struct {
	Class       Class       `json:"class"`
	Breakpoints Breakpoints `json:"breakpoints"`
	Safari      bool        `json:"safari"`
}

// Handler serves the detected class and the breakpoint table.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := Classify(r)
		log.FromContext(r.Context()).Debug().
			Str(log.FieldEvent, "device.classified").
			Str(log.FieldDeviceClass, string(c)).
			Msg("device classified")

		w.Header().Set("Accept-CH", AcceptCH)
		w.Header().Set("Vary", HeaderMobileHint+", User-Agent")
		w.Header().Set("Cache-Control", "private, no-cache")
		httpx.WriteJSON(w, http.StatusOK, Response{
			Class:       c,
			Breakpoints: DefaultBreakpoints,
			Safari:      IsSafariBrowser(r.UserAgent()),
		})
	}
}
