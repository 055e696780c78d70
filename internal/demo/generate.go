// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package demo generates the mock analytics data shown by the dashboard widgets.
// Every generator is deterministic for a given seed.
package demo

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// notificationNamespace scopes the name-based notification IDs.
var notificationNamespace = uuid.MustParse("6f1d2a3c-4b5e-4f60-8a71-9c2b3d4e5f60")

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func between(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FunnelStage is one step of the conversion funnel.
type FunnelStage struct {
	Name       string  `json:"name"`
	Visitors   int     `json:"visitors"`
	Conversion float64 `json:"conversion"` // percent of the previous stage
}

var funnelStages = []string{"Visitors", "Sign-ups", "Activated", "Trial", "Paid"}

// Funnel returns the conversion funnel. Visitor counts never increase from one stage to the next.
func Funnel(seed uint64) []FunnelStage {
	r := newRand(seed)
	out := make([]FunnelStage, len(funnelStages))
	visitors := 8000 + r.IntN(4001)
	for i, name := range funnelStages {
		conv := 100.0
		if i > 0 {
			prev := out[i-1].Visitors
			visitors = int(float64(prev) * between(r, 0.35, 0.8))
			if prev > 0 {
				conv = round(float64(visitors)/float64(prev)*100, 1)
			}
		}
		out[i] = FunnelStage{Name: name, Visitors: visitors, Conversion: conv}
	}
	return out
}

// RegionalMetrics is revenue and user data for one sales region.
type RegionalMetrics struct {
	Region  string  `json:"region"`
	Revenue float64 `json:"revenue"`
	Users   int     `json:"users"`
	Growth  float64 `json:"growth"` // percent, may be negative
}

var regions = []string{"North America", "Europe", "Asia Pacific", "Latin America", "Middle East & Africa"}

// Regional returns one row per region.
func Regional(seed uint64) []RegionalMetrics {
	r := newRand(seed)
	out := make([]RegionalMetrics, len(regions))
	for i, name := range regions {
		out[i] = RegionalMetrics{
			Region:  name,
			Revenue: round(between(r, 50_000, 500_000), 2),
			Users:   1000 + r.IntN(49_001),
			Growth:  round(between(r, -5, 35), 1),
		}
	}
	return out
}

// TimelinePoint is one sample of the Core Web Vitals chart.
type TimelinePoint struct {
	At   time.Time `json:"at"`
	LCP  float64   `json:"lcp"`  // ms
	FID  float64   `json:"fid"`  // ms
	CLS  float64   `json:"cls"`  // unitless
	TTFB float64   `json:"ttfb"` // ms
}

// Walker produces a bounded random walk of web-vitals samples, so consecutive points
// look like a live metric instead of noise.
type Walker struct {
	r    *rand.Rand
	last TimelinePoint
}

// NewWalker seeds a walk.
func NewWalker(seed uint64) *Walker {
	r := newRand(seed)
	return &Walker{r: r, last: TimelinePoint{
		LCP:  between(r, 1800, 2600),
		FID:  between(r, 30, 90),
		CLS:  between(r, 0.02, 0.12),
		TTFB: between(r, 200, 500),
	}}
}

// Next returns the sample for at.
func (w *Walker) Next(at time.Time) TimelinePoint {
	step := func(v, spread, lo, hi float64) float64 {
		return math.Min(hi, math.Max(lo, v+between(w.r, -spread, spread)))
	}
	w.last = TimelinePoint{
		At:   at.UTC(),
		LCP:  step(w.last.LCP, 150, 1200, 3500),
		FID:  step(w.last.FID, 12, 10, 150),
		CLS:  step(w.last.CLS, 0.015, 0, 0.25),
		TTFB: step(w.last.TTFB, 40, 100, 800),
	}
	return TimelinePoint{
		At:   w.last.At,
		LCP:  round(w.last.LCP, 0),
		FID:  round(w.last.FID, 1),
		CLS:  round(w.last.CLS, 3),
		TTFB: round(w.last.TTFB, 0),
	}
}

// Timeline returns points samples spaced step apart, ending at end.
func Timeline(seed uint64, points int, step time.Duration, end time.Time) []TimelinePoint {
	if points <= 0 {
		return []TimelinePoint{}
	}
	w := NewWalker(seed)
	out := make([]TimelinePoint, points)
	start := end.Add(-time.Duration(points-1) * step)
	for i := range out {
		out[i] = w.Next(start.Add(time.Duration(i) * step))
	}
	return out
}

// Heatmap returns a rows x cols grid of intensities in [0,1].
// Cells cluster around a few hot spots like real click maps do.
func Heatmap(seed uint64, rows, cols int) [][]float64 {
	r := newRand(seed)
	type spot struct{ y, x, radius float64 }
	spots := make([]spot, 1+r.IntN(3))
	for i := range spots {
		spots[i] = spot{
			y:      between(r, 0, float64(rows)),
			x:      between(r, 0, float64(cols)),
			radius: between(r, 1.5, math.Max(2, float64(min(rows, cols))/2)),
		}
	}

	grid := make([][]float64, rows)
	for y := range grid {
		grid[y] = make([]float64, cols)
		for x := range grid[y] {
			v := r.Float64() * 0.15
			for _, s := range spots {
				d := math.Hypot(float64(y)-s.y, float64(x)-s.x)
				v += math.Exp(-(d * d) / (2 * s.radius * s.radius))
			}
			grid[y][x] = round(math.Min(1, v), 3)
		}
	}
	return grid
}

// Notification is one entry of the notification centre mockup.
type Notification struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
	Read  bool      `json:"read"`
}

var notificationTemplates = []struct {
	kind, title, body string
}{
	{"success", "Deployment finished", "Release %d is live in all regions."},
	{"info", "New sign-up", "%d new teams joined this week."},
	{"warning", "Latency spike", "p95 latency rose to %d ms in Europe."},
	{"error", "Payment failed", "Invoice #%d could not be charged."},
	{"info", "Report ready", "Your weekly report covers %d sessions."},
}

// Notifications returns n notifications, newest first, relative to now.
func Notifications(seed uint64, n int, now time.Time) []Notification {
	r := newRand(seed)
	out := make([]Notification, 0, max(n, 0))
	at := now.UTC()
	for i := 0; i < n; i++ {
		t := notificationTemplates[r.IntN(len(notificationTemplates))]
		at = at.Add(-time.Duration(1+r.IntN(90)) * time.Minute)
		out = append(out, Notification{
			ID:    uuid.NewSHA1(notificationNamespace, []byte(fmt.Sprintf("%d/%d", seed, i))).String(),
			Kind:  t.kind,
			Title: t.title,
			Body:  fmt.Sprintf(t.body, 10+r.IntN(990)),
			At:    at.Truncate(time.Second),
			Read:  i > 1 && r.IntN(2) == 0,
		})
	}
	return out
}

var palettes = map[string][]string{
	"default": {"#6366F1", "#22C55E", "#F59E0B", "#EF4444", "#06B6D4", "#A855F7"},
	"ocean":   {"#0EA5E9", "#0284C7", "#0369A1", "#14B8A6", "#0F766E", "#1E3A8A"},
	"sunset":  {"#F97316", "#FB7185", "#F43F5E", "#FBBF24", "#C026D3", "#7C3AED"},
}

// PaletteNames lists the known palettes.
func PaletteNames() []string { return []string{"default", "ocean", "sunset"} }

// Palette returns a copy of the named chart palette.
func Palette(name string) ([]string, bool) {
	p, ok := palettes[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), p...), true
}
