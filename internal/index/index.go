package index

import "github.com/starford/cardex/internal/models"

// CardIndex defines the card indexing operations. Consumers depend on this
// interface rather than the concrete *DB type.
type CardIndex interface {
	UpsertCard(rec models.CardRecord, props []models.PropertyRecord) error
	DeleteCard(path string) error
	GetChecksum(path string) (string, error)
	GetCard(path string) (*models.CardRecord, error)
	ListCards(q ListQuery) ([]models.CardRecord, int, error)
	Properties(path string) ([]models.PropertyRecord, error)
	Search(query string, limit int) ([]models.SearchHit, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	IndexFile(path string, data []byte) (models.CardRecord, error)
	Close() error
}

var _ CardIndex = (*DB)(nil)
