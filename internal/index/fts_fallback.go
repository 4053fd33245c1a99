//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/cardex/internal/models"
)

// Without FTS5, search uses LIKE over cards.name and properties.vals.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT c.path, c.name,
		       COALESCE((SELECT p.vals FROM properties p
		                 WHERE p.path = c.path AND p.vals LIKE ?
		                 ORDER BY p.position LIMIT 1), '')
		FROM cards c
		WHERE c.name LIKE ?
		   OR EXISTS (SELECT 1 FROM properties p WHERE p.path = c.path AND p.vals LIKE ?)
		ORDER BY c.sort_name, c.path
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []models.SearchHit{}
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.Path, &h.Name, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
