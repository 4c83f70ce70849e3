package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/models"
	"github.com/google/uuid"
)

// DefaultRoot is the directory stored uploads live under.
const DefaultRoot = "static"

// Store defines the interface for upload storage.
type Store interface {
	NewPath(category, ext string) (string, error)
	Save(category, ext string, r io.Reader) (*models.FileInfo, error)
	SaveBytes(category, ext string, data []byte) (*models.FileInfo, error)
}

// LocalStore implements Store on the local filesystem using the layout
// <root>/<category>/<YYYYMMDD>/<uuid>.<ext>.
type LocalStore struct {
	root string
	now  func() time.Time
}

// NewLocalStore creates a new LocalStore rooted at root.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	return &LocalStore{root: root, now: time.Now}, nil
}

// WithClock overrides the clock used for the dated directory.
func (s *LocalStore) WithClock(now func() time.Time) *LocalStore {
	s.now = now
	return s
}

// Root returns the storage root directory.
func (s *LocalStore) Root() string {
	return s.root
}

// NewPath generates a fresh destination path and creates its directory.
// Uniqueness relies on the random UUID alone. category and ext must be single
// path segments so the result always stays under the root.
func (s *LocalStore) NewPath(category, ext string) (string, error) {
	if err := checkSegment("category", category); err != nil {
		return "", err
	}
	if err := checkSegment("extension", ext); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, category, s.now().Format("20060102"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	name := strings.ReplaceAll(uuid.New().String(), "-", "") + "." + ext
	return filepath.ToSlash(filepath.Join(dir, name)), nil
}

// Save streams r into a newly generated path.
func (s *LocalStore) Save(category, ext string, r io.Reader) (*models.FileInfo, error) {
	path, err := s.NewPath(category, ext)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.FromSlash(path))
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filepath.FromSlash(path))
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &models.FileInfo{
		Path:     path,
		Category: category,
		Ext:      ext,
		Size:     size,
		StoredAt: s.now(),
	}, nil
}

// SaveBytes writes data into a newly generated path.
func (s *LocalStore) SaveBytes(category, ext string, data []byte) (*models.FileInfo, error) {
	return s.Save(category, ext, bytes.NewReader(data))
}

func checkSegment(kind, v string) error {
	if strings.TrimSpace(v) == "" || strings.ContainsAny(v, `/\`) || strings.Contains(v, "..") {
		return fmt.Errorf("invalid %s %q: %w", kind, v, common.ErrInvalidArgument)
	}
	return nil
}
