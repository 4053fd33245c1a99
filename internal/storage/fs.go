package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/checksum"
	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/vcard"
)

// tmpPrefix marks in-flight atomic writes; such files are never listed.
const tmpPrefix = ".cardex-tmp-"

// FS implements Provider on a local directory.
type FS struct {
	root string // absolute
}

// NewFS opens the vault at root, which must be an existing directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// resolve maps a slash-separated vault path onto the file system. The empty
// path is the root itself.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("storage: %s: absolute path: %w", rel, apperr.ErrInvalidPath)
	}
	abs := filepath.Join(f.root, cleaned)
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: %s: escapes vault: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}

func (f *FS) rel(abs string) string {
	r, err := filepath.Rel(f.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(r)
}

// Abs resolves a vault path, rejecting traversal.
func (f *FS) Abs(path string) (string, error) {
	return f.resolve(path)
}

// List walks dir in lexical order and describes every card file. Hidden
// directories (.git, .trash) are skipped.
func (f *FS) List(dir string) ([]models.CardMetadata, error) {
	base, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	var out []models.CardMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsCardFile(d.Name()) {
			return nil
		}
		meta, err := f.describe(p, d)
		if err != nil {
			return err
		}
		out = append(out, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %q: %w", dir, err)
	}
	return out, nil
}

func (f *FS) describe(abs string, d fs.DirEntry) (models.CardMetadata, error) {
	info, err := d.Info()
	if err != nil {
		return models.CardMetadata{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.CardMetadata{}, err
	}
	return models.CardMetadata{
		Path:      f.rel(abs),
		Checksum:  checksum.Sum(data),
		Size:      info.Size(),
		UpdatedAt: info.ModTime().UTC(),
	}, nil
}

// Read returns the raw bytes of a vault file. A missing file reports
// apperr.ErrNotFound.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path with content via a synced temp file in the same
// directory, so readers see either the old or the new card.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := writeAtomic(abs, content); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return nil
}

func writeAtomic(abs string, content []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(abs), tmpPrefix+"*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), abs)
}

// Delete removes a card and any directories the removal leaves empty.
func (f *FS) Delete(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", path, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	f.pruneEmpty(filepath.Dir(abs))
	return nil
}

// pruneEmpty removes empty directories from dir up to, not including, the
// root. os.Remove refuses non-empty directories, which ends the walk.
func (f *FS) pruneEmpty(dir string) {
	for dir != f.root && strings.HasPrefix(dir, f.root+string(os.PathSeparator)) {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// Move renames a card within the vault. An existing destination is refused
// with apperr.ErrAlreadyExists.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.resolve(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.resolve(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(absOld); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: move %s: %w", oldPath, apperr.ErrNotFound)
	}
	if _, err := os.Lstat(absNew); err == nil {
		return fmt.Errorf("storage: move to %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move %s: %w", oldPath, err)
	}
	f.pruneEmpty(filepath.Dir(absOld))
	return nil
}

// IsCardFile reports whether name is a card file the vault tracks.
func IsCardFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, vcard.Extension) && !strings.HasPrefix(base, tmpPrefix)
}
