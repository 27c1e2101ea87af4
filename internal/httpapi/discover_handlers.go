package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/discover"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/search"
)

type DiscoverHandler struct {
	CfgVal        *atomic.Value // stores config.Config
	NewDiscoverer func(cfg config.Config) (Discoverer, error)
	Hub           *events.Hub
	Logger        logger.Logger
}

type discoverReq struct {
	Query string          `json:"query"`
	Num   json.RawMessage `json:"num"`
}

func (h DiscoverHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var req discoverReq
	decodeLenient(r, &req)

	cfg := h.CfgVal.Load().(config.Config)
	d, err := h.NewDiscoverer(cfg)
	if err != nil {
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "internal error", Details: err.Error()})
		return
	}

	res, err := d.Discover(r.Context(), discover.Request{Query: req.Query, Num: parseNum(req.Num)})
	if err != nil {
		h.writeDiscoverError(w, r, err)
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeDiscoverFinished, map[string]any{
		"query":         strings.TrimSpace(req.Query),
		"total":         res.Total,
		"platformCount": res.PlatformCount,
	})
	writeJSON(w, res)
}

func (h DiscoverHandler) writeDiscoverError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *search.UpstreamError
	switch {
	case errors.Is(err, discover.ErrQueryRequired):
		WriteError(w, r, http.StatusBadRequest, "query required")
	case errors.Is(err, search.ErrMissingCredential):
		WriteError(w, r, http.StatusInternalServerError, "SERPAPI_KEY missing")
	case errors.As(err, &ue):
		logger.FromContext(r.Context(), h.Logger).Warn("search upstream failed", logger.Error(err))
		WriteAPIError(w, r, http.StatusBadGateway, APIError{Error: ue.Message, Status: ue.Status, Details: ue.Details})
	default:
		logger.FromContext(r.Context(), h.Logger).Error("discover failed", logger.Error(err))
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "internal error", Details: err.Error()})
	}
}

// parseNum accepts a JSON number or numeric string. Anything else counts
// as absent.
func parseNum(raw json.RawMessage) *int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Max(math.MinInt32, math.Min(math.MaxInt32, f))
	n := int(f)
	return &n
}
