// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package chat

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

var (
	errBadRequest = errors.New("invalid chat request")
	errBodyTooBig = errors.New("chat request body too large")
)

// Message is one chat turn. The proxy forwards messages as raw JSON so
// fields it does not know about (name, tool_calls, ...) survive the hop.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the client body accepted by POST /api/chat.
type Request struct {
	Messages    json.RawMessage `json:"messages"`
	Model       *string         `json:"model,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

// completionRequest is the body sent upstream. Field order is fixed so equal
// requests marshal to equal bytes, which the response cache keys on.
type completionRequest struct {
	Model       string            `json:"model"`
	Messages    []json.RawMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
}

// decodeRequest reads and validates the client body.
func decodeRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (Request, []json.RawMessage, error) {
	var req Request
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return req, nil, errBodyTooBig
		}
		return req, nil, errBadRequest
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, nil, errBadRequest
	}

	raw := bytes.TrimSpace(req.Messages)
	if len(raw) == 0 || raw[0] != '[' {
		return req, nil, errBadRequest
	}
	var messages []json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return req, nil, errBadRequest
	}
	return req, messages, nil
}

// buildPayload applies defaults and returns the upstream body.
func buildPayload(req Request, messages []json.RawMessage, opts Options) (completionRequest, []byte, error) {
	payload := completionRequest{
		Model:       opts.DefaultModel,
		Messages:    messages,
		Temperature: opts.DefaultTemperature,
		MaxTokens:   opts.DefaultMaxTokens,
	}
	if req.Model != nil && strings.TrimSpace(*req.Model) != "" {
		payload.Model = strings.TrimSpace(*req.Model)
	}
	if req.Temperature != nil {
		payload.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		payload.MaxTokens = *req.MaxTokens
	}
	if payload.Messages == nil {
		payload.Messages = []json.RawMessage{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return payload, nil, err
	}
	return payload, data, nil
}

// cacheKey identifies a deterministic completion: same upstream, same body.
func cacheKey(baseURL string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(baseURL))
	h.Write([]byte{0})
	h.Write(body)
	return "completion:" + hex.EncodeToString(h.Sum(nil))
}

// tokenUsage is the subset of the upstream success body the ledger needs.
type tokenUsage struct {
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func parseUsage(body []byte) (prompt, completion int) {
	var u tokenUsage
	if err := json.Unmarshal(body, &u); err != nil {
		return 0, 0
	}
	return u.Usage.PromptTokens, u.Usage.CompletionTokens
}
