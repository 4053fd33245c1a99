package index

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/cardex/internal/checksum"
	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/storage"
	"github.com/starford/cardex/internal/vcard"
)

// Sync walks the vault and brings the index up to date:
//   - new or changed card files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// Files that fail to parse or validate are still indexed, flagged invalid.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		rec, err := db.IndexFile(m.Path, data)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.Bool("valid", rec.Valid))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteCard(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	return nil
}

// IndexFile parses data as the card stored at path and upserts the result.
// A card that does not parse or validate is stored with Valid=false.
func (db *DB) IndexFile(path string, data []byte) (models.CardRecord, error) {
	rec, props := BuildRecord(path, data, db.parseOpts...)
	if err := db.UpsertCard(rec, props); err != nil {
		return rec, err
	}
	return rec, nil
}

// BuildRecord derives the index rows for one card file.
func BuildRecord(path string, data []byte, opts ...vcard.ParseOption) (models.CardRecord, []models.PropertyRecord) {
	rec := models.CardRecord{
		Path:      path,
		Checksum:  checksum.Sum(data),
		Body:      string(data),
		UpdatedAt: time.Now().UTC(),
	}

	card, err := vcard.Parse(bytes.NewReader(data), opts...)
	if err == nil {
		rec.Name = card.Name()
		err = vcard.Validate(card)
	}
	if err != nil {
		rec.ErrorCode = vcard.CodeOf(err).String()
		return rec, nil
	}

	rec.Valid = true
	rec.OpLength = vcard.SummaryOf(path, card).OpLength

	props := make([]models.PropertyRecord, 0, len(card.Optional)+1)
	add := func(p *vcard.Property) {
		props = append(props, models.PropertyRecord{
			Path:     path,
			Position: len(props) + 1,
			Group:    p.Group,
			Name:     strings.ToUpper(p.Name),
			Values:   strings.Join(p.Values, ", "),
		})
	}
	add(card.FN)
	for _, p := range card.Optional {
		add(p)
	}
	return rec, props
}
