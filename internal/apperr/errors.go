// Package apperr holds the sentinel errors shared by the service, HTTP and
// MCP layers.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrInvalidCard     = errors.New("invalid card")
	// ErrInvalidPath marks absolute paths and paths leaving the vault.
	ErrInvalidPath = errors.New("invalid path")
)
