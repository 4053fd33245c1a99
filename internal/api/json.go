package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/cardservice"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	// Code is the vCard error code for rejected card content.
	Code string `json:"code,omitempty" example:"INV_PROP"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeServiceError maps service errors onto HTTP statuses. op and path
// only feed the log line for unexpected failures.
func writeServiceError(w http.ResponseWriter, err error, op, path string) {
	var invalid *cardservice.InvalidCardError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{Error: invalid.Err.Error(), Code: invalid.Code()})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("card already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrUnsupportedFile):
		writeJSON(w, http.StatusBadRequest, errorBody("only .vcf files are supported"))
	case errors.Is(err, apperr.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorBody("path must stay inside the vault"))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
