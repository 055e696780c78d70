// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUpstreamUnavailable wraps transport failures talking to the upstream.
	ErrUpstreamUnavailable = errors.New("chat upstream unavailable")
	// ErrUpstreamTimeout is returned when the upstream call exceeds its deadline.
	ErrUpstreamTimeout = errors.New("chat upstream timed out")
	// ErrResponseTooLarge is returned when the upstream body exceeds maxUpstreamBody.
	ErrResponseTooLarge = errors.New("chat upstream response too large")
)

// Client-facing error labels. The wording is part of the wire contract.
const (
	errMethodNotAllowed = "Method not allowed"
	errServerConfig     = "Server configuration error"
	errInvalidRequest   = "Invalid request"
	errRequestTooLarge  = "Request too large"
	errRateLimited      = "Rate limit exceeded"
	errUpstream         = "OpenAI API error"
	errInternal         = "Internal server error"

	msgNoAPIKey         = "API key not configured"
	msgMessagesRequired = "messages array is required"
	msgUnknownUpstream  = "Unknown error"
)

// ErrorEnvelope is the JSON error body returned to clients.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// UpstreamError is a non-2xx upstream answer.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// Temporary reports whether the upstream failed on its side (5xx).
// Client errors such as 400/401/429 say nothing about upstream health.
func (e *UpstreamError) Temporary() bool {
	return e.Status >= http.StatusInternalServerError
}

// Envelope renders the client-facing error body.
func (e *UpstreamError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{Error: errUpstream, Message: e.Message, Status: e.Status}
}

// ParseUpstreamError extracts the human-readable message from an upstream error body.
// Both {"error":{"message":"..."}} and {"error":"..."} are understood; anything else
// falls back to "Unknown error".
func ParseUpstreamError(status int, body []byte) *UpstreamError {
	ue := &UpstreamError{Status: status, Message: msgUnknownUpstream}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ue
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		if msg := strings.TrimSpace(nested.Message); msg != "" {
			ue.Message = msg
		}
		return ue
	}

	var flat string
	if err := json.Unmarshal(envelope.Error, &flat); err == nil {
		if msg := strings.TrimSpace(flat); msg != "" {
			ue.Message = msg
		}
	}
	return ue
}

// countsAsBreakerFailure decides which upstream errors open the circuit.
func countsAsBreakerFailure(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Temporary()
	}
	// A caller that went away is not an upstream fault.
	return !isCanceled(err)
}
