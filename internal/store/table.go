package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 2

// Lead is one discovered site, keyed by its normalized origin. Pointer
// fields are NULL until enrichment has produced a value.
type Lead struct {
	ID            string   `json:"id"`
	Domain        string   `json:"domain"`
	URLDiscovered *string  `json:"urlDiscovered"`
	IsWordPress   *bool    `json:"isWordPress"`
	WPConfidence  *float64 `json:"wpConfidence"`
	ContactEmail  *string  `json:"contactEmail"`
	ContactSource *string  `json:"contactSource"`
	Title         *string  `json:"title"`
	CheckedAt     *string  `json:"checkedAt"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1 ----

	if v < 1 {
		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS leads (
  id TEXT PRIMARY KEY,
  domain TEXT NOT NULL UNIQUE,
  url_discovered TEXT,
  is_wordpress INTEGER,
  wp_confidence REAL,
  contact_email TEXT,
  contact_source TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_leads_created_at
ON leads(created_at);
`); err != nil {
			return err
		}
	}

	// ---- Schema v2: title + checked_at ----

	if !columnExists(tx, "leads", "title") {
		if _, err := tx.Exec(`ALTER TABLE leads ADD COLUMN title TEXT;`); err != nil {
			return err
		}
	}
	if !columnExists(tx, "leads", "checked_at") {
		if _, err := tx.Exec(`ALTER TABLE leads ADD COLUMN checked_at TEXT;`); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}

const leadColumns = `id, domain, url_discovered, is_wordpress, wp_confidence,
  contact_email, contact_source, title, checked_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(r rowScanner) (Lead, error) {
	var (
		l         Lead
		via       sql.NullString
		isWP      sql.NullBool
		conf      sql.NullFloat64
		email     sql.NullString
		source    sql.NullString
		title     sql.NullString
		checkedAt sql.NullString
	)
	if err := r.Scan(
		&l.ID,
		&l.Domain,
		&via,
		&isWP,
		&conf,
		&email,
		&source,
		&title,
		&checkedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return Lead{}, err
	}

	l.URLDiscovered = nullString(via)
	if isWP.Valid {
		b := isWP.Bool
		l.IsWordPress = &b
	}
	if conf.Valid {
		f := conf.Float64
		l.WPConfidence = &f
	}
	l.ContactEmail = nullString(email)
	l.ContactSource = nullString(source)
	l.Title = nullString(title)
	l.CheckedAt = nullString(checkedAt)
	return l, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ListLeads returns every lead, newest first.
func ListLeads(ctx context.Context, db *sql.DB) ([]Lead, error) {
	rows, err := db.QueryContext(ctx, `
SELECT `+leadColumns+`
FROM leads
ORDER BY created_at DESC, rowid DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func CountLeads(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads;`).Scan(&n)
	return n, err
}
