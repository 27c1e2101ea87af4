package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/pipeline"
	"leadhunt-engine/internal/store"
)

type LeadsHandler struct {
	DB     *sql.DB
	Leads  LeadService
	Logger logger.Logger
}

type createLeadReq struct {
	Domain string `json:"domain"`
}

func (h LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := store.ListLeads(r.Context(), h.DB)
	if err != nil {
		logger.FromContext(r.Context(), h.Logger).Error("list leads", logger.Error(err))
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "internal error", Details: err.Error()})
		return
	}
	writeJSON(w, leads)
}

// Create enriches the lead before responding.
func (h LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadReq
	decodeLenient(r, &req)

	if strings.TrimSpace(req.Domain) == "" {
		WriteError(w, r, http.StatusBadRequest, "domain required")
		return
	}

	lead, err := h.Leads.Process(r.Context(), req.Domain, "")
	if errors.Is(err, pipeline.ErrInvalidDomain) {
		WriteError(w, r, http.StatusBadRequest, "invalid domain")
		return
	}
	if err != nil {
		logger.FromContext(r.Context(), h.Logger).Error("create lead", logger.String("domain", req.Domain), logger.Error(err))
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "internal error", Details: err.Error()})
		return
	}

	WriteJSON(w, http.StatusCreated, lead)
}
