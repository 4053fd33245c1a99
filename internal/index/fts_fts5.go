//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/cardex/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS cards_fts USING fts5(
			path UNINDEXED,
			name,
			props,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, name, props string) error {
	_, _ = tx.Exec(`DELETE FROM cards_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO cards_fts (path, name, props) VALUES (?, ?, ?)`, path, name, props)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM cards_fts WHERE path = ?`, path)
}

// Search performs an FTS5 query over card names and property values.
func (db *DB) Search(query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       name,
		       snippet(cards_fts, 2, '<b>', '</b>', '...', 32)
		FROM cards_fts
		WHERE cards_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
