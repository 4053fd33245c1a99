package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/starford/cardex/internal/apperr"
)

// uploadFields are the multipart field names accepted by Upload, in order.
var uploadFields = []string{"uploadFile", "file"}

// UploadHandler serves the file-oriented endpoints: upload, download,
// listing, summary and property views.
type UploadHandler struct {
	h        *Handler
	maxBytes int64
}

// NewUploadHandler creates a handler accepting uploads up to maxBytes.
func NewUploadHandler(h *Handler, maxBytes int64) *UploadHandler {
	return &UploadHandler{h: h, maxBytes: maxBytes}
}

// Upload handles POST /api/upload (multipart/form-data, field "uploadFile"
// or "file"). The card is parsed and validated before it is stored.
//
//	@Summary		Upload a .vcf file
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Success		201	{object}	vcard.Summary
//	@Success		200	{object}	vcard.Summary	"Existing file replaced"
//	@Failure		400	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/upload [post]
func (u *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes)
	if err := r.ParseMultipartForm(u.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	var (
		file   io.ReadCloser
		header string
	)
	for _, field := range uploadFields {
		f, fh, err := r.FormFile(field)
		if err == nil {
			file, header = f, fh.Filename
			break
		}
	}
	if file == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("no files were uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	sum, created, err := u.h.svc.Upload(r.Context(), header, data)
	if err != nil {
		writeServiceError(w, err, "upload", header)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, sum)
}

// Download handles GET /api/uploads/*, returning the raw file.
func (u *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	path := cardPath(r)
	abs, err := u.h.svc.Locate(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		writeServiceError(w, err, "download", path)
		return
	}
	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	http.ServeFile(w, r, abs)
}

// Files handles GET /api/files, listing every card file in the vault.
func (u *UploadHandler) Files(w http.ResponseWriter, r *http.Request) {
	files, err := u.h.svc.ListFiles(r.Context())
	if err != nil {
		writeServiceError(w, err, "list files", "")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func fileParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	file := strings.TrimSpace(r.URL.Query().Get("file"))
	if file == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'file' is required"))
		return "", false
	}
	return file, true
}

// Summary handles GET /api/summary?file=.
//
//	@Summary		Summarize a card file
//	@Tags			files
//	@Produce		json
//	@Param			file	query		string	true	"Vault path of the card"
//	@Success		200		{object}	vcard.Summary
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/summary [get]
func (u *UploadHandler) Summary(w http.ResponseWriter, r *http.Request) {
	file, ok := fileParam(w, r)
	if !ok {
		return
	}
	sum, err := u.h.svc.Summary(r.Context(), file)
	if err != nil {
		writeServiceError(w, err, "summary", file)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Properties handles GET /api/properties?file=.
//
//	@Summary		List the properties of a card file
//	@Tags			files
//	@Produce		json
//	@Param			file	query		string	true	"Vault path of the card"
//	@Success		200		{array}		vcard.PropertyRow
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/properties [get]
func (u *UploadHandler) Properties(w http.ResponseWriter, r *http.Request) {
	file, ok := fileParam(w, r)
	if !ok {
		return
	}
	rows, err := u.h.svc.Properties(r.Context(), file)
	if err != nil {
		writeServiceError(w, err, "properties", file)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
