package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIError is the error envelope of every endpoint.
type APIError struct {
	Error     string `json:"error"`
	Status    int    `json:"status,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteAPIError(w, r, status, APIError{Error: message})
}

func WriteAPIError(w http.ResponseWriter, r *http.Request, status int, e APIError) {
	e.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}
