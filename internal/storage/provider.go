// Package storage defines the card vault file-system abstraction.
package storage

import "github.com/starford/cardex/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every .vcf file under dir.
	List(dir string) ([]models.CardMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Abs resolves path to an absolute file-system path inside the vault.
	Abs(path string) (string, error)
}
