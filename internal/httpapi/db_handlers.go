package httpapi

import (
	"database/sql"
	"net/http"

	"leadhunt-engine/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	if err := store.Checkpoint(r.Context(), h.DB); err != nil {
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "checkpoint failed", Details: err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
