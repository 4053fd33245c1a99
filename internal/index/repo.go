package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/models"
)

// ListQuery selects a page of indexed cards.
type ListQuery struct {
	Limit  int
	Offset int
	// Sort is one of "name", "path" or "updated_at" (newest first).
	Sort string
	// Valid filters on validity when non-nil.
	Valid *bool
}

var sortColumns = map[string]string{
	"":           "sort_name, path",
	"name":       "sort_name, path",
	"path":       "path",
	"updated_at": "updated_at DESC, path",
}

// sortKey folds a display name so listings ignore case and width.
func sortKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// UpsertCard inserts or replaces a card, its properties and its FTS entry
// within a transaction.
func (db *DB) UpsertCard(rec models.CardRecord, props []models.PropertyRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO cards (path, name, sort_name, checksum, valid, error_code, op_length, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name       = excluded.name,
			sort_name  = excluded.sort_name,
			checksum   = excluded.checksum,
			valid      = excluded.valid,
			error_code = excluded.error_code,
			op_length  = excluded.op_length,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, rec.Path, rec.Name, sortKey(rec.Name), rec.Checksum, rec.Valid, rec.ErrorCode,
		rec.OpLength, rec.Body, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert card: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM properties WHERE path = ?`, rec.Path); err != nil {
		return fmt.Errorf("index: clear properties: %w", err)
	}
	if len(props) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO properties (path, position, grp, name, vals) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare property insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range props {
			if _, err := stmt.Exec(rec.Path, p.Position, p.Group, p.Name, p.Values); err != nil {
				return fmt.Errorf("index: insert property: %w", err)
			}
		}
	}

	if err := ftsUpsert(tx, rec.Path, rec.Name, propertyText(props)); err != nil {
		return err
	}
	return tx.Commit()
}

func propertyText(props []models.PropertyRecord) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, p.Values)
	}
	return strings.Join(parts, "\n")
}

// DeleteCard removes a card, its properties and its FTS entry.
func (db *DB) DeleteCard(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM properties WHERE path = ?`, path)
	if _, err := tx.Exec(`DELETE FROM cards WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete card: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a card, or "" if it is not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM cards WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

const cardColumns = `path, name, checksum, valid, error_code, op_length, body, updated_at`

func scanCard(s interface{ Scan(...any) error }) (models.CardRecord, error) {
	var r models.CardRecord
	err := s.Scan(&r.Path, &r.Name, &r.Checksum, &r.Valid, &r.ErrorCode, &r.OpLength, &r.Body, &r.UpdatedAt)
	return r, err
}

// GetCard returns the indexed record for path.
func (db *DB) GetCard(path string) (*models.CardRecord, error) {
	r, err := scanCard(db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: get card %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get card: %w", err)
	}
	return &r, nil
}

// ListCards returns one page of cards and the total matching count.
func (db *DB) ListCards(q ListQuery) ([]models.CardRecord, int, error) {
	order, ok := sortColumns[q.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("index: unknown sort %q", q.Sort)
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}

	where, args := "", []any{}
	if q.Valid != nil {
		where = ` WHERE valid = ?`
		args = append(args, *q.Valid)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM cards`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count cards: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+cardColumns+` FROM cards`+where+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list cards: %w", err)
	}
	defer rows.Close()

	out := []models.CardRecord{}
	for rows.Next() {
		r, err := scanCard(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Properties returns the indexed property rows of a card in file order.
func (db *DB) Properties(path string) ([]models.PropertyRecord, error) {
	rows, err := db.conn.Query(`
		SELECT path, position, grp, name, vals FROM properties
		WHERE path = ? ORDER BY position`, path)
	if err != nil {
		return nil, fmt.Errorf("index: properties: %w", err)
	}
	defer rows.Close()

	out := []models.PropertyRecord{}
	for rows.Next() {
		var p models.PropertyRecord
		if err := rows.Scan(&p.Path, &p.Position, &p.Group, &p.Name, &p.Values); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed card path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums maps every indexed path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
