package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/launchpad/internal/log"
)

// WriteJSON writes v as a JSON response with the given status code.
// If encoding fails the headers are already sent, so the error is only logged.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponent("httpx")
		logger.Error().
			Err(err).
			Int(log.FieldStatus, code).
			Msg("failed to encode JSON response")
	}
}
