// Package storage provides the attachment store backed by the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tidyhome/backend/usecase"
)

type localStore struct {
	root string
}

// NewLocal returns an AttachmentStore writing blobs under root, one
// subdirectory per owner. The returned reference is the path relative to
// root; only that reference is persisted on the task.
func NewLocal(root string) (usecase.AttachmentStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &localStore{root: root}, nil
}

func (s *localStore) Save(_ context.Context, ownerID, filename string, data []byte) (string, error) {
	if ownerID == "" || len(data) == 0 {
		return "", fmt.Errorf("owner id and data are required")
	}

	name := uuid.NewString() + sanitizeExt(filename)
	rel := filepath.Join(ownerID, name)
	abs := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ""
}
