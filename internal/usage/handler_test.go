// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package usage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	NopStore
	since time.Time
	err   error
}

func (s *recordingStore) Summary(_ context.Context, since time.Time) ([]ModelSummary, error) {
	s.since = since
	if s.err != nil {
		return nil, s.err
	}
	return []ModelSummary{{Model: "gpt-3.5-turbo", Requests: 2}}, nil
}

func TestHandler_DefaultWindow(t *testing.T) {
	store := &recordingStore{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewHandler(store)
	h.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/usage", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now.Add(-24*time.Hour), store.since)

	var body SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Models, 1)
	assert.Equal(t, int64(2), body.Models[0].Requests)
}

func TestHandler_SinceParam(t *testing.T) {
	store := &recordingStore{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewHandler(store)
	h.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/usage?since=90m", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now.Add(-90*time.Minute), store.since)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		store  Store
		want   int
	}{
		{"bad since", http.MethodGet, "/api/chat/usage?since=yesterday", &recordingStore{}, http.StatusBadRequest},
		{"negative since", http.MethodGet, "/api/chat/usage?since=-1h", &recordingStore{}, http.StatusBadRequest},
		{"too wide", http.MethodGet, "/api/chat/usage?since=10000h", &recordingStore{}, http.StatusBadRequest},
		{"post", http.MethodPost, "/api/chat/usage", &recordingStore{}, http.StatusMethodNotAllowed},
		{"store failure", http.MethodGet, "/api/chat/usage", &recordingStore{err: errors.New("disk")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tt.store).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
