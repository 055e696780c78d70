// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMiddleware_LogsRoutePatternAndStatus(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Level: "debug"})
	t.Cleanup(func() { Configure(Config{}) })

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/i18n/{lang}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/i18n/de", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var found map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		if entry[FieldEvent] == "request.handled" {
			found = entry
		}
	}
	if found == nil {
		t.Fatal("expected a request.handled log line")
	}
	if found[FieldRoute] != "/api/i18n/{lang}" {
		t.Errorf("expected route pattern, got %v", found[FieldRoute])
	}
	if found[FieldStatus] != float64(http.StatusTeapot) {
		t.Errorf("expected status 418, got %v", found[FieldStatus])
	}
	if found[FieldBytes] != float64(len("short and stout")) {
		t.Errorf("unexpected bytes: %v", found[FieldBytes])
	}
	if found["level"] != "warn" {
		t.Errorf("expected 4xx to log at warn, got %v", found["level"])
	}
}
