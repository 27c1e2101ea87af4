package httpapi

import (
	"database/sql"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/discover"
	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/store"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type DashboardHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // stores config.Config
	Logger logger.Logger
}

type leadRow struct {
	Domain     string
	Title      string
	Platform   string
	Confidence string
	Email      string
	Source     string
	Via        string
	Created    string
}

func (h DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	leads, err := store.ListLeads(r.Context(), h.DB)
	if err != nil {
		logger.FromContext(r.Context(), h.Logger).Error("dashboard list leads", logger.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rows := make([]leadRow, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, toRow(l))
	}

	num := discover.DefaultNum
	if h.CfgVal != nil {
		if cfg, ok := h.CfgVal.Load().(config.Config); ok {
			num = discover.ClampNum(cfg.Discovery.DefaultNum)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, map[string]any{
		"Leads":      rows,
		"Count":      len(rows),
		"DefaultNum": num,
	}); err != nil {
		logger.FromContext(r.Context(), h.Logger).Error("render dashboard", logger.Error(err))
	}
}

func toRow(l store.Lead) leadRow {
	row := leadRow{
		Domain:     l.Domain,
		Platform:   "prüfe…",
		Confidence: "-",
		Email:      "-",
		Created:    l.CreatedAt,
	}
	if l.IsWordPress != nil {
		row.Platform = strconv.FormatBool(*l.IsWordPress)
	}
	if l.WPConfidence != nil {
		row.Confidence = strconv.FormatFloat(*l.WPConfidence, 'f', -1, 64)
	}
	if l.ContactEmail != nil {
		row.Email = *l.ContactEmail
	}
	if l.ContactSource != nil {
		row.Source = *l.ContactSource
	}
	if l.URLDiscovered != nil {
		row.Via = *l.URLDiscovered
	}
	if l.Title != nil {
		row.Title = *l.Title
	}
	if t, err := time.Parse(time.RFC3339Nano, l.CreatedAt); err == nil {
		row.Created = t.Local().Format("02.01.2006 15:04:05")
	}
	return row
}
