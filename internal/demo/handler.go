// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ManuGH/launchpad/internal/cache"
	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
	"github.com/go-chi/chi/v5"
)

const (
	defaultTimelinePoints = 30
	defaultTimelineStep   = time.Minute
	defaultHeatmapRows    = 7
	defaultHeatmapCols    = 24
	maxHeatmapRows        = 31
	maxHeatmapCols        = 48
	defaultNotifications  = 5
	maxNotifications      = 50
)

// Options are the runtime knobs of the demo endpoints.
type Options struct {
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	MaxPoints       int
}

// OptionsFromConfig extracts demo options from the application config.
func OptionsFromConfig(cfg config.AppConfig) Options {
	ttl := cfg.Cache.DemoTTL
	if cfg.Cache.Backend == config.CacheBackendNone {
		ttl = 0
	}
	return Options{
		CacheTTL:        ttl,
		RefreshInterval: cfg.Demo.RefreshInterval,
		MaxPoints:       cfg.Demo.MaxPoints,
	}
}

func (o Options) withDefaults() Options {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = config.DefaultDemoRefresh
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = config.DefaultDemoMaxPoints
	}
	return o
}

// paramError is reported to the client as a 400.
type paramError struct {
	name, msg string
}

func (e *paramError) Error() string { return e.name + ": " + e.msg }

// Handler serves the widget data endpoints and the live stream.
type Handler struct {
	cache   cache.Cache
	options func() Options
	now     func() time.Time
}

// NewHandler creates a demo handler. A nil cache disables caching.
func NewHandler(c cache.Cache, options func() Options) *Handler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if options == nil {
		options = func() Options { return Options{} }
	}
	return &Handler{cache: c, options: options, now: time.Now}
}

// Routes returns the router mounted under /api/demo.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/funnel", h.widget("funnel", funnelWidget))
	r.Get("/regions", h.widget("regions", regionsWidget))
	r.Get("/timeline", h.widget("timeline", timelineWidget))
	r.Get("/heatmap", h.widget("heatmap", heatmapWidget))
	r.Get("/notifications", h.widget("notifications", notificationsWidget))
	r.Get("/palette", h.palette)
	r.Get("/stream", h.Stream)
	return r
}

// widgetFunc renders one widget. The returned key suffix must capture every input
// besides the widget name and seed.
type widgetFunc func(q url.Values, seed uint64, o Options, now time.Time) (string, any, error)

func funnelWidget(_ url.Values, seed uint64, _ Options, _ time.Time) (string, any, error) {
	return "", Funnel(seed), nil
}

func regionsWidget(_ url.Values, seed uint64, _ Options, _ time.Time) (string, any, error) {
	return "", Regional(seed), nil
}

func timelineWidget(q url.Values, seed uint64, o Options, now time.Time) (string, any, error) {
	points, err := intParam(q, "points", defaultTimelinePoints, 1, o.MaxPoints)
	if err != nil {
		return "", nil, err
	}
	step := defaultTimelineStep
	if raw := q.Get("step"); raw != "" {
		step, err = time.ParseDuration(raw)
		if err != nil || step < time.Second || step > 24*time.Hour {
			return "", nil, &paramError{name: "step", msg: "must be a duration between 1s and 24h"}
		}
	}
	end := now.Truncate(step)
	key := fmt.Sprintf("%d:%s:%d", points, step, end.Unix())
	return key, Timeline(seed, points, step, end), nil
}

func heatmapWidget(q url.Values, seed uint64, _ Options, _ time.Time) (string, any, error) {
	rows, err := intParam(q, "rows", defaultHeatmapRows, 1, maxHeatmapRows)
	if err != nil {
		return "", nil, err
	}
	cols, err := intParam(q, "cols", defaultHeatmapCols, 1, maxHeatmapCols)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%dx%d", rows, cols), Heatmap(seed, rows, cols), nil
}

func notificationsWidget(q url.Values, seed uint64, _ Options, now time.Time) (string, any, error) {
	n, err := intParam(q, "n", defaultNotifications, 0, maxNotifications)
	if err != nil {
		return "", nil, err
	}
	at := now.Truncate(time.Minute)
	return fmt.Sprintf("%d:%d", n, at.Unix()), Notifications(seed, n, at), nil
}

func (h *Handler) widget(name string, render widgetFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o := h.options().withDefaults()
		now := h.now()
		q := r.URL.Query()

		seed, err := h.seed(q, o, now)
		if err == nil {
			var (
				suffix string
				v      any
			)
			suffix, v, err = render(q, seed, o, now)
			if err == nil {
				h.respond(w, r, name+":"+strconv.FormatUint(seed, 10)+":"+suffix, o.CacheTTL, v)
				return
			}
		}

		var pe *paramError
		if errors.As(err, &pe) {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request", "message": pe.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// respond serves v from the cache when possible. The cache holds the encoded body so a
// hit does not re-run the generator.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, v any) {
	ctx := r.Context()
	if ttl > 0 {
		if body, ok := h.cache.Get(ctx, key); ok {
			writeBody(w, body, "HIT")
			return
		}
	}
	body, err := json.Marshal(v)
	if err != nil {
		log.FromContext(ctx).Error().Err(err).Str(log.FieldEvent, "demo.encode_failed").Msg("failed to encode demo data")
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	if ttl > 0 {
		h.cache.Set(ctx, key, body, ttl)
	}
	writeBody(w, body, "MISS")
}

func writeBody(w http.ResponseWriter, body []byte, cacheState string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) palette(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "default"
	}
	colors, ok := Palette(name)
	if !ok {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{
			"error":    "Unknown palette",
			"palettes": PaletteNames(),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"name": name, "colors": colors})
}

// seed returns the explicit ?seed= value, or a value that stays fixed for one cache
// window so repeated polling hits the cache.
func (h *Handler) seed(q url.Values, o Options, now time.Time) (uint64, error) {
	if s, ok, err := parseSeed(q); ok || err != nil {
		return s, err
	}
	window := o.CacheTTL
	if window <= 0 {
		window = time.Minute
	}
	return uint64(now.Truncate(window).Unix()), nil
}

func parseSeed(q url.Values) (uint64, bool, error) {
	raw := q.Get("seed")
	if raw == "" {
		return 0, false, nil
	}
	s, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, &paramError{name: "seed", msg: "must be an unsigned integer"}
	}
	return s, true, nil
}

func intParam(q url.Values, name string, def, lo, hi int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return min(def, hi), nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, &paramError{name: name, msg: fmt.Sprintf("must be an integer between %d and %d", lo, hi)}
	}
	return v, nil
}
