package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cardex/internal/cardservice"
	"github.com/starford/cardex/internal/models"
)

// CreateCardRequest is the request body for creating a card.
type CreateCardRequest struct {
	Path    string `json:"path" example:"people/jane.vcf" validate:"required"`
	Content string `json:"content" example:"BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Jane\r\nEND:VCARD\r\n" validate:"required"`
}

// Validate checks the required fields.
func (r CreateCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateCardRequest is the request body for replacing a card.
type UpdateCardRequest struct {
	Content string `json:"content" validate:"required"`
}

// Validate checks the required fields.
func (r UpdateCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// MoveCardRequest is the request body for renaming a card.
type MoveCardRequest struct {
	From string `json:"from" example:"jane.vcf" validate:"required"`
	To   string `json:"to" example:"people/jane.vcf" validate:"required"`
}

// Validate checks the required fields.
func (r MoveCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	)
}

// listParams are the query parameters of GET /cards.
type listParams struct {
	Limit  int
	Offset int
	Sort   string
	Valid  string
}

func (p listParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Limit, validation.Min(0), validation.Max(500)),
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Sort, validation.In("name", "path", "updated_at")),
		validation.Field(&p.Valid, validation.In("true", "false")),
	)
}

// CardDetail is the full card response type (aliased from the domain layer).
type CardDetail = cardservice.CardDetail

// CardListResponse wraps paginated card listings.
type CardListResponse struct {
	Cards []models.CardRecord `json:"cards" validate:"required"`
	Total int                 `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchHit `json:"results" validate:"required"`
}
