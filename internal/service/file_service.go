package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/storage"
)

type fileStore interface {
	Save(ctx context.Context, r io.Reader, name, scope string, kind storage.FileKind, id string) (string, error)
	Open(rel string) (*os.File, error)
	Delete(rel string) error
}

type urlSigner interface {
	Generate(relPath string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

// FileLink is a time-limited download link for a stored file.
type FileLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileService stores uploads and issues signed download links for them.
type FileService struct {
	store    fileStore
	signer   urlSigner
	basePath string
	logger   *zap.Logger
}

// NewFileService constructs a file service. basePath prefixes generated links, e.g. /api/v1/files.
func NewFileService(store fileStore, signer urlSigner, basePath string, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{store: store, signer: signer, basePath: strings.TrimRight(basePath, "/"), logger: logger}
}

// Save stores r under scope and returns its relative path.
func (s *FileService) Save(ctx context.Context, r io.Reader, name, scope string) (string, error) {
	kind := storage.KindFile
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".pdf" {
		kind = storage.KindImage
	}
	rel, err := s.store.Save(ctx, r, name, scope, kind, uuid.NewString()[:8])
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDisallowedType):
			return "", appErrors.Clone(appErrors.ErrValidation, "file type not allowed; use png, jpg, jpeg or pdf")
		case errors.Is(err, storage.ErrTooLarge):
			return "", appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	return rel, nil
}

// Link signs a download link for rel.
func (s *FileService) Link(rel string) (*FileLink, error) {
	token, expires, err := s.signer.Generate(rel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &FileLink{URL: s.basePath + "/" + token, ExpiresAt: expires}, nil
}

// Open resolves a signed token to the file it grants.
func (s *FileService) Open(token string) (*os.File, string, error) {
	rel, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	f, err := s.store.Open(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return f, filepath.Base(rel), nil
}

// Delete removes rel from the store.
func (s *FileService) Delete(rel string) error {
	return s.store.Delete(rel)
}
