package httpapi

import (
	"database/sql"
	"net/http"
	"time"

	"leadhunt-engine/internal/store"
)

type HealthHandler struct {
	DB *sql.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := store.CountLeads(r.Context(), h.DB)
	if err != nil {
		WriteAPIError(w, r, http.StatusServiceUnavailable, APIError{Error: "database unavailable", Details: err.Error()})
		return
	}
	writeJSON(w, map[string]any{
		"ok":    true,
		"time":  time.Now().UTC().Format(time.RFC3339),
		"leads": n,
	})
}
