// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package demo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/metrics"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
)

// Stream pushes a fresh timeline point every refresh interval as Server-Sent Events
// until the client goes away or the server starts draining.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	o := h.options().withDefaults()
	ctx := r.Context()

	seed, ok, err := parseSeed(r.URL.Query())
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request", "message": err.Error()})
		return
	}
	if !ok {
		seed = uint64(h.now().UnixNano())
	}

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	done := metrics.DemoStreamConnected()
	defer done()

	logger := log.FromContext(ctx)
	logger.Debug().Str(log.FieldEvent, "demo.stream_open").Dur("interval", o.RefreshInterval).Msg("demo stream opened")

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", o.RefreshInterval.Milliseconds()); err != nil {
		return
	}

	walker := NewWalker(seed)
	ticker := time.NewTicker(o.RefreshInterval)
	defer ticker.Stop()

	drain := httpx.Draining(ctx)
	for id := 1; ; id++ {
		if err := writeEvent(w, id, "timeline", walker.Next(h.now())); err != nil {
			logger.Debug().Err(err).Str(log.FieldEvent, "demo.stream_closed").Msg("demo stream write failed")
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			logger.Debug().Str(log.FieldEvent, "demo.stream_closed").Int("events", id).Msg("demo stream closed")
			return
		case <-drain:
			logger.Debug().Str(log.FieldEvent, "demo.stream_drained").Int("events", id).Msg("demo stream closed for shutdown")
			return
		case <-ticker.C:
		}
	}
}

func writeEvent(w http.ResponseWriter, id int, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}
