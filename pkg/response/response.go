// Package response writes the JSON envelope shared by every endpoint:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "Order not found."}
//
// Domain failures travel as HTTP 200 with success=false. Only transport
// failures (auth, routing, rate limits, panics) use an error status.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/cafe/pkg/logger"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Write encodes body with status. Encoding failures are logged; the
// status line has already gone out by then.
func Write(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log := logger.L
		if r != nil {
			log = logger.WithCtx(r.Context())
		}
		log.Warn("response: encode", "status", status, "error", err)
	}
}

func Success(w http.ResponseWriter, data any) {
	Write(w, nil, http.StatusOK, Envelope{Success: true, Data: data})
}

// Error answers with status and a failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, nil, status, Envelope{Error: message})
}

func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, "Unauthorized") }

func Forbidden(w http.ResponseWriter) { Error(w, http.StatusForbidden, "Forbidden") }

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}
