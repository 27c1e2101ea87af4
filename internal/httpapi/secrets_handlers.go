package httpapi

import (
	"net/http"

	"leadhunt-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSerpAPIKeyReq struct {
	APIKey string `json:"apiKey"`
}

func (h SecretsHandler) SetSerpAPIKey(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	var req setSerpAPIKeyReq
	decodeLenient(r, &req)

	if err := secrets.SetSerpAPIKey(req.APIKey); err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, APIError{Error: "failed to store api key", Details: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteSerpAPIKey(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden")
		return
	}
	if err := secrets.DeleteSerpAPIKey(); err != nil {
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "failed to delete api key", Details: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
