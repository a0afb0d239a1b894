package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileKind selects the subfolder a stored file lands in.
type FileKind string

const (
	KindImage FileKind = "images"
	KindFile  FileKind = "files"
)

var allowedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".pdf":  {},
}

// ErrDisallowedType is returned when an upload's extension is not accepted.
var ErrDisallowedType = errors.New("file type not allowed")

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// LocalStorage keeps uploads on disk under a base directory.
type LocalStorage struct {
	baseDir string
	maxSize int64
}

// NewLocalStorage ensures the upload directory exists. maxSize <= 0 disables the limit.
func NewLocalStorage(baseDir string, maxSize int64) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, maxSize: maxSize}, nil
}

// Allowed reports whether name carries an accepted extension.
func Allowed(name string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Save writes r as {context}/{images|files}/{name}_{id}{ext} and returns that relative path.
func (s *LocalStorage) Save(ctx context.Context, r io.Reader, name, scope string, kind FileKind, id string) (string, error) {
	if !Allowed(name) {
		return "", ErrDisallowedType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if kind != KindImage {
		kind = KindFile
	}

	clean := sanitize(name)
	ext := filepath.Ext(clean)
	stem := strings.TrimSuffix(clean, ext)
	if id != "" {
		clean = fmt.Sprintf("%s_%s%s", stem, sanitize(id), ext)
	}
	rel := filepath.ToSlash(filepath.Join(sanitize(scope), string(kind), clean))

	path := s.resolve(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(file, src)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if s.maxSize > 0 && written > s.maxSize {
		_ = os.Remove(path)
		return "", ErrTooLarge
	}
	return rel, nil
}

// Open returns a read-only handle for a stored file.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	file, err := os.Open(s.resolve(rel))
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(rel string) error {
	if err := os.Remove(s.resolve(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// resolve confines rel to the base directory.
func (s *LocalStorage) resolve(rel string) string {
	cleaned := filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(s.baseDir, cleaned)
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}
