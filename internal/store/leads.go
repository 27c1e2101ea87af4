package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fixed width so lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrNotFound = errors.New("lead not found")

func now() string { return time.Now().UTC().Format(timeLayout) }

// Enrichment is the outcome of classifying one origin.
type Enrichment struct {
	IsWordPress   bool
	WPConfidence  float64
	ContactEmail  string
	ContactSource string
	Title         string
	DiscoveredVia string
}

// EnsureLead returns the lead for domain, creating it when absent. created
// reports whether this call inserted the row.
func EnsureLead(ctx context.Context, db *sql.DB, domain, discoveredVia string) (lead Lead, created bool, err error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return Lead{}, false, errors.New("ensure lead: empty domain")
	}

	ts := now()
	res, err := db.ExecContext(ctx, `
INSERT INTO leads(id, domain, url_discovered, created_at, updated_at)
VALUES(?,?,NULLIF(?, ''),?,?)
ON CONFLICT(domain) DO NOTHING;
`, uuid.NewString(), domain, strings.TrimSpace(discoveredVia), ts, ts)
	if err != nil {
		return Lead{}, false, fmt.Errorf("insert lead %s: %w", domain, err)
	}
	n, _ := res.RowsAffected()

	lead, err = GetLeadByDomain(ctx, db, domain)
	if err != nil {
		return Lead{}, false, err
	}
	return lead, n > 0, nil
}

func GetLeadByDomain(ctx context.Context, db *sql.DB, domain string) (Lead, error) {
	row := db.QueryRowContext(ctx, `
SELECT `+leadColumns+`
FROM leads
WHERE domain = ?
LIMIT 1;
`, domain)

	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead %s: %w", domain, err)
	}
	return l, nil
}

// UpdateEnrichment overwrites the classification fields of domain's lead.
// url_discovered is only filled when it was still empty.
func UpdateEnrichment(ctx context.Context, db *sql.DB, domain string, e Enrichment) (Lead, error) {
	ts := now()
	res, err := db.ExecContext(ctx, `
UPDATE leads
SET is_wordpress = ?,
    wp_confidence = ?,
    contact_email = NULLIF(?, ''),
    contact_source = NULLIF(?, ''),
    title = NULLIF(?, ''),
    url_discovered = COALESCE(url_discovered, NULLIF(?, '')),
    checked_at = ?,
    updated_at = ?
WHERE domain = ?;
`,
		e.IsWordPress,
		e.WPConfidence,
		strings.ToLower(strings.TrimSpace(e.ContactEmail)),
		strings.TrimSpace(e.ContactSource),
		strings.TrimSpace(e.Title),
		strings.TrimSpace(e.DiscoveredVia),
		ts,
		ts,
		domain,
	)
	if err != nil {
		return Lead{}, fmt.Errorf("update lead %s: %w", domain, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Lead{}, ErrNotFound
	}
	return GetLeadByDomain(ctx, db, domain)
}
