// Package respond writes the {code,message,data} envelope shared by every endpoint.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// requestIDHeader mirrors the header set by the request id middleware.
const requestIDHeader = "X-Request-ID"

// Envelope wraps every API response.
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes data under the envelope with the given status.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, Envelope{Code: status, Message: message, Data: data})
}

// Error writes a data-less envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, Envelope{Code: status, Message: message})
}

func write(w http.ResponseWriter, env Envelope) {
	h := w.Header()
	env.RequestID = h.Get(requestIDHeader)
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(env.Code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Str("request_id", env.RequestID).Int("status", env.Code).Msg("Failed to encode response")
	}
}
