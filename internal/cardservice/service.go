// Package cardservice coordinates vault storage, the vCard core and the index.
package cardservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/checksum"
	"github.com/starford/cardex/internal/index"
	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/storage"
	"github.com/starford/cardex/internal/vcard"
)

// CardDetail is the full representation of a card file.
type CardDetail struct {
	Path        string              `json:"path"`
	Name        string              `json:"name"`
	Checksum    string              `json:"checksum"`
	Valid       bool                `json:"valid"`
	ErrorCode   string              `json:"error_code,omitempty"`
	Error       string              `json:"error,omitempty"`
	Summary     *vcard.Summary      `json:"summary,omitempty"`
	Properties  []vcard.PropertyRow `json:"properties"`
	FN          json.RawMessage     `json:"fn,omitempty"`
	Birthday    json.RawMessage     `json:"birthday,omitempty"`
	Anniversary json.RawMessage     `json:"anniversary,omitempty"`
	Canonical   string              `json:"canonical,omitempty"`
	Content     string              `json:"content"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.CardIndex
	opts  []vcard.ParseOption
}

// NewService creates a new card service. opts apply to every parse.
func NewService(store storage.Provider, db index.CardIndex, opts ...vcard.ParseOption) *Service {
	return &Service{store: store, db: db, opts: opts}
}

// InvalidCardError reports content that failed to parse or validate. It
// matches apperr.ErrInvalidCard and unwraps to the *vcard.Error.
type InvalidCardError struct {
	Err error
}

func (e *InvalidCardError) Error() string { return "invalid card: " + e.Err.Error() }

func (e *InvalidCardError) Unwrap() []error { return []error{apperr.ErrInvalidCard, e.Err} }

// Code returns the vCard error code name, e.g. "INV_PROP".
func (e *InvalidCardError) Code() string { return vcard.CodeOf(e.Err).String() }

// CheckPath rejects vault paths that are not card files.
func CheckPath(p string) error {
	if p == "" {
		return fmt.Errorf("cardservice: empty path: %w", apperr.ErrUnsupportedFile)
	}
	if !storage.IsCardFile(p) {
		return fmt.Errorf("cardservice: %s: %w", p, apperr.ErrUnsupportedFile)
	}
	return nil
}

// Load parses and validates content.
func (s *Service) Load(content []byte) (*vcard.Card, error) {
	c, err := vcard.Parse(bytes.NewReader(content), s.opts...)
	if err == nil {
		err = vcard.Validate(c)
	}
	if err != nil {
		return nil, &InvalidCardError{Err: err}
	}
	return c, nil
}

// GetCard reads a card from storage and describes it. Invalid files are
// returned with Valid=false rather than as an error.
func (s *Service) GetCard(_ context.Context, p string) (*CardDetail, error) {
	data, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(p, data), nil
}

// CreateCard validates content, writes a new card and indexes it.
func (s *Service) CreateCard(_ context.Context, p string, content []byte) (*CardDetail, error) {
	if err := CheckPath(p); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(p); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if _, err := s.Load(content); err != nil {
		return nil, err
	}
	if err := s.write(p, content); err != nil {
		return nil, err
	}
	return s.buildDetail(p, content), nil
}

// UpdateCard replaces a card with optimistic concurrency. An empty ifMatch
// skips the checksum comparison.
func (s *Service) UpdateCard(_ context.Context, p string, content []byte, ifMatch string) (*CardDetail, error) {
	existing, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if _, err := s.Load(content); err != nil {
		return nil, err
	}
	if err := s.write(p, content); err != nil {
		return nil, err
	}
	return s.buildDetail(p, content), nil
}

// MoveCard renames a card within the vault and re-indexes it under the new
// path. The destination must not exist.
func (s *Service) MoveCard(_ context.Context, from, to string) (*CardDetail, error) {
	if err := CheckPath(to); err != nil {
		return nil, err
	}
	data, err := s.store.Read(from)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Read(to); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.DeleteCard(from); err != nil {
		return nil, err
	}
	if _, err := s.db.IndexFile(to, data); err != nil {
		return nil, err
	}
	return s.buildDetail(to, data), nil
}

// Upload stores an uploaded file under its base name, replacing any
// existing file. The content must be a valid card.
func (s *Service) Upload(_ context.Context, name string, content []byte) (vcard.Summary, bool, error) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if err := CheckPath(name); err != nil {
		return vcard.Summary{}, false, err
	}
	c, err := s.Load(content)
	if err != nil {
		return vcard.Summary{}, false, err
	}
	_, readErr := s.store.Read(name)
	created := errors.Is(readErr, apperr.ErrNotFound)
	if err := s.write(name, content); err != nil {
		return vcard.Summary{}, false, err
	}
	return vcard.SummaryOf(name, c), created, nil
}

func (s *Service) write(p string, content []byte) error {
	if err := s.store.Write(p, content); err != nil {
		return err
	}
	_, err := s.db.IndexFile(p, content)
	return err
}

// DeleteCard removes a card from storage and index.
func (s *Service) DeleteCard(_ context.Context, p string) error {
	if err := s.store.Delete(p); err != nil {
		return err
	}
	return s.db.DeleteCard(p)
}

// ListFiles returns the vault paths of every card file.
func (s *Service) ListFiles(_ context.Context) ([]string, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Path
	}
	return out, nil
}

// ListCards returns a page of indexed cards.
func (s *Service) ListCards(_ context.Context, q index.ListQuery) ([]models.CardRecord, int, error) {
	return s.db.ListCards(q)
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]models.SearchHit, error) {
	return s.db.Search(query, limit)
}

// Summary parses and validates the card file at p and returns its summary.
func (s *Service) Summary(_ context.Context, p string) (vcard.Summary, error) {
	abs, err := s.existing(p)
	if err != nil {
		return vcard.Summary{}, err
	}
	sum, err := vcard.SummarizeFile(abs, s.opts...)
	if err != nil {
		return vcard.Summary{}, &InvalidCardError{Err: err}
	}
	sum.File = p
	return sum, nil
}

// Properties parses and validates the card file at p and lists its properties.
func (s *Service) Properties(_ context.Context, p string) ([]vcard.PropertyRow, error) {
	abs, err := s.existing(p)
	if err != nil {
		return nil, err
	}
	rows, err := vcard.ListPropertiesFile(abs, s.opts...)
	if err != nil {
		return nil, &InvalidCardError{Err: err}
	}
	return rows, nil
}

// Locate returns the absolute path of an existing card file.
func (s *Service) Locate(_ context.Context, p string) (string, error) {
	return s.existing(p)
}

func (s *Service) existing(p string) (string, error) {
	if err := CheckPath(p); err != nil {
		return "", err
	}
	if _, err := s.store.Read(p); err != nil {
		return "", err
	}
	return s.store.Abs(p)
}

// IndexFile parses data and upserts it into the index.
func (s *Service) IndexFile(p string, data []byte) (models.CardRecord, error) {
	return s.db.IndexFile(p, data)
}

// ConvertJSONCard builds a card from its {"FN":".."} form and returns the
// canonical vCard text.
func (s *Service) ConvertJSONCard(_ context.Context, body string) (string, error) {
	c, err := vcard.CardFromJSON(body)
	if err == nil {
		err = vcard.Validate(c)
	}
	if err != nil {
		return "", &InvalidCardError{Err: err}
	}
	out, err := vcard.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Service) buildDetail(p string, data []byte) *CardDetail {
	d := &CardDetail{
		Path:       p,
		Checksum:   checksum.Sum(data),
		Content:    string(data),
		Properties: []vcard.PropertyRow{},
		UpdatedAt:  time.Now().UTC(),
	}
	c, err := s.Load(data)
	if err != nil {
		var ic *InvalidCardError
		if errors.As(err, &ic) {
			d.ErrorCode = ic.Code()
		}
		d.Error = err.Error()
		return d
	}

	sum := vcard.SummaryOf(p, c)
	sum.File = p
	d.Valid = true
	d.Name = c.Name()
	d.Summary = &sum
	d.Properties = vcard.PropertiesOf(c)
	d.FN = rawJSON(vcard.PropertyToJSON(c.FN))
	d.Birthday = rawJSON(vcard.DateTimeToJSON(c.Birthday))
	d.Anniversary = rawJSON(vcard.DateTimeToJSON(c.Anniversary))
	if out, err := vcard.Marshal(c); err == nil {
		d.Canonical = string(out)
	}
	return d
}

func rawJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}
