package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/logger"
)

var errTrailingData = errors.New("trailing data after config object")

// ConfigHandler serves and replaces the user config file. Changes to
// detection and contact settings take effect on the next engine start;
// discovery picks up the new config on its next request.
type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	Logger      logger.Logger
}

func (h ConfigHandler) current() config.Config {
	return h.CfgVal.Load().(config.Config)
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.current())
}

func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	incoming, err := decodeConfig(w, r)
	if err != nil {
		WriteAPIError(w, r, http.StatusBadRequest, APIError{Error: "invalid JSON", Details: err.Error()})
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteAPIError(w, r, http.StatusBadRequest, APIError{Error: "invalid config", Details: vr})
		return
	}

	log := logger.FromContext(r.Context(), h.Logger)
	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		log.Error("save config", logger.String("path", h.UserCfgPath), logger.Error(err))
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "save failed", Details: err.Error()})
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		log.Error("reload config", logger.String("path", h.UserCfgPath), logger.Error(err))
		WriteAPIError(w, r, http.StatusInternalServerError, APIError{Error: "saved but reload failed", Details: err.Error()})
		return
	}
	h.CfgVal.Store(saved)
	log.Info("config updated", logger.Strings("warnings", vr.Warnings))
	writeJSON(w, saved)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, err := filepath.Abs(h.UserCfgPath)
	if err != nil {
		abs = h.UserCfgPath
	}
	writeJSON(w, map[string]any{"path": abs})
}

// Validate reports problems with the running config. It always answers 200;
// callers read the errors list.
func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.current())
	writeJSON(w, vr)
}

// decodeConfig reads exactly one Config object, rejecting unknown keys.
func decodeConfig(w http.ResponseWriter, r *http.Request) (config.Config, error) {
	var cfg config.Config
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	if dec.More() {
		return cfg, errTrailingData
	}
	return cfg, nil
}
