package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cardex/internal/cardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// maxUploadBytes caps multipart uploads.
func NewRouter(svc *cardservice.Service, authEnabled bool, token string, sseHandler http.Handler, maxUploadBytes int64) chi.Router {
	h := NewHandler(svc)
	uh := NewUploadHandler(h, maxUploadBytes)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Cards CRUD.
	r.Get("/cards", h.ListCards)
	r.Post("/cards", h.CreateCard)
	r.Post("/cards/move", h.MoveCard)
	r.Get("/cards/*", h.GetCard)
	r.Put("/cards/*", h.UpdateCard)
	r.Delete("/cards/*", h.DeleteCard)

	r.Get("/search", h.Search)
	r.Post("/convert/card", h.ConvertCard)

	// File views.
	r.Get("/files", uh.Files)
	r.Post("/upload", uh.Upload)
	r.Get("/uploads/*", uh.Download)
	r.Get("/summary", uh.Summary)
	r.Get("/properties", uh.Properties)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
