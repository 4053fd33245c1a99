package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cardex/internal/cardservice"
	"github.com/starford/cardex/internal/checksum"
	"github.com/starford/cardex/internal/index"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *cardservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *cardservice.Service) *Handler {
	return &Handler{svc: svc}
}

// cardPath extracts the vault path from the URL wildcard. Encoded slashes
// (people%2Fjane.vcf) are accepted.
func cardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListCards handles GET /api/cards.
//
//	@Summary		List indexed cards
//	@Tags			cards
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(name, path, updated_at)
//	@Param			valid	query		bool	false	"Filter on validity"
//	@Success		200		{object}	CardListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := listParams{Sort: q.Get("sort"), Valid: q.Get("valid")}
	p.Limit, _ = strconv.Atoi(q.Get("limit"))
	p.Offset, _ = strconv.Atoi(q.Get("offset"))
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	lq := index.ListQuery{Limit: p.Limit, Offset: p.Offset, Sort: p.Sort}
	if p.Valid != "" {
		v := p.Valid == "true"
		lq.Valid = &v
	}
	items, total, err := h.svc.ListCards(r.Context(), lq)
	if err != nil {
		writeServiceError(w, err, "list cards", "")
		return
	}
	writeJSON(w, http.StatusOK, CardListResponse{Cards: items, Total: total})
}

// GetCard handles GET /api/cards/*.
//
//	@Summary		Get a card with its summary, properties and JSON forms
//	@Tags			cards
//	@Produce		json
//	@Param			path	path		string	true	"Card path"
//	@Success		200		{object}	CardDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{path} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	path := cardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	card, err := h.svc.GetCard(r.Context(), path)
	if err != nil {
		writeServiceError(w, err, "get card", path)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusOK, card)
}

// CreateCard handles POST /api/cards.
//
//	@Summary		Create a new card
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCardRequest	true	"Card to create"
//	@Success		201		{object}	CardDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [post]
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	card, err := h.svc.CreateCard(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeServiceError(w, err, "create card", req.Path)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusCreated, card)
}

// UpdateCard handles PUT /api/cards/*.
//
//	@Summary		Replace a card with optimistic concurrency
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string				true	"Card path"
//	@Param			If-Match	header		string				false	"SHA-256 checksum of the current content"
//	@Param			body		body		UpdateCardRequest	true	"New content"
//	@Success		200			{object}	CardDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{path} [put]
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	path := cardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	ifMatch := checksum.FromETag(r.Header.Get("If-Match"))
	card, err := h.svc.UpdateCard(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		writeServiceError(w, err, "update card", path)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/*.
//
//	@Summary		Delete a card
//	@Tags			cards
//	@Param			path	path	string	true	"Card path"
//	@Success		204		"Card deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{path} [delete]
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	path := cardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteCard(r.Context(), path); err != nil {
		writeServiceError(w, err, "delete card", path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveCard handles POST /api/cards/move.
//
//	@Summary		Rename a card
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveCardRequest	true	"Source and destination"
//	@Success		200		{object}	CardDetail
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/move [post]
func (h *Handler) MoveCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req MoveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	card, err := h.svc.MoveCard(r.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(w, err, "move card", req.From)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusOK, card)
}

// Search handles GET /api/search.
//
//	@Summary		Search card names and property values
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, err, "search", q)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// ConvertCard handles POST /api/convert/card.
//
//	@Summary		Build a vCard from its {"FN":".."} JSON form
//	@Tags			convert
//	@Accept			json
//	@Produce		text/vcard
//	@Success		200	{string}	string	"Canonical vCard text"
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/convert/card [post]
func (h *Handler) ConvertCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	text, err := h.svc.ConvertJSONCard(r.Context(), string(body))
	if err != nil {
		writeServiceError(w, err, "convert card", "")
		return
	}
	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
