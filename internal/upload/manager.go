// Package upload persists uploaded files and inline base64 images through
// the local store.
package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/ctutil/backend/internal/logging"
	"github.com/ctutil/backend/internal/models"
	"github.com/ctutil/backend/internal/storage"
)

const (
	DefaultField    = "file"
	DefaultCategory = "image"
)

// Manager stores request uploads.
type Manager struct {
	store storage.Store
	log   logging.Logger
}

// NewManager creates a new upload manager.
func NewManager(store storage.Store, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{store: store, log: log}
}

// StoreFile persists the part uploaded under field. A missing part is not an
// error: it yields nil, nil and the caller decides what to do.
func (m *Manager) StoreFile(ctx context.Context, form Form, field, category string) (*models.StoredUpload, error) {
	part, ok := form.Part(field)
	if !ok {
		return nil, nil
	}

	path, err := m.storePart(ctx, part, category)
	if err != nil {
		return nil, err
	}
	return &models.StoredUpload{OriginalName: part.Filename(), Path: path}, nil
}

// StoreAll persists every uploaded part and returns the stored paths.
func (m *Manager) StoreAll(ctx context.Context, form Form, category string) ([]string, error) {
	paths := []string{}
	for _, part := range form.Parts() {
		path, err := m.storePart(ctx, part, category)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (m *Manager) storePart(ctx context.Context, part Part, category string) (string, error) {
	src, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("opening uploaded file %q: %w", part.Filename(), err)
	}
	defer src.Close()

	info, err := m.store.Save(category, Extension(part.Filename()), src)
	if err != nil {
		return "", err
	}

	m.log.Debug(ctx, "upload stored", "name", part.Filename(), "path", info.Path, "size", info.Size)
	return info.Path, nil
}

// Extension returns the text after the last dot of name, or name itself when
// it has no dot.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
