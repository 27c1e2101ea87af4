package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/pipeline"
)

type CheckHandler struct {
	Leads  LeadService
	Logger logger.Logger
}

type checkReq struct {
	URL string `json:"url"`
}

func (h CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	decodeLenient(r, &req)

	if strings.TrimSpace(req.URL) == "" {
		WriteError(w, r, http.StatusBadRequest, "url required")
		return
	}

	res, err := h.Leads.Check(r.Context(), req.URL)
	switch {
	case errors.Is(err, pipeline.ErrInvalidURL):
		WriteError(w, r, http.StatusBadRequest, "invalid url")
		return
	case errors.Is(err, pipeline.ErrFetch):
		logger.FromContext(r.Context(), h.Logger).Warn("check fetch failed", logger.String("url", req.URL), logger.Error(err))
		WriteAPIError(w, r, http.StatusBadGateway, APIError{Error: "fetch failed", Details: err.Error()})
		return
	case err != nil:
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "internal error", Details: err.Error()})
		return
	}

	writeJSON(w, res)
}
