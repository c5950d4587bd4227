package services

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// StoredBlob describes a successfully persisted upload
type StoredBlob struct {
	// URL is the durable, externally resolvable location of the file
	URL string
	// Path is the location relative to the store root
	Path string
	// Size is the number of bytes written
	Size int64
}

// BlobStore persists uploaded file contents and hands back a durable URL.
// Uploads happen before any database row is written, so every deliverable
// row always points at a resolvable file.
type BlobStore interface {
	Save(projectID uuid.UUID, filename string, r io.Reader) (*StoredBlob, error)
}

// LocalBlobStore stores uploads on the local filesystem under
// projects/{project_id}/uploads/{timestamp}_{sanitized_filename} and serves
// them through the web server's /files/ mount.
type LocalBlobStore struct {
	root    string
	baseURL string
	maxSize int64
	now     func() time.Time
}

func NewLocalBlobStore(root, baseURL string, maxSize int64) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob store root %s: %w", root, err)
	}
	return &LocalBlobStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		now:     time.Now,
	}, nil
}

func (s *LocalBlobStore) Save(projectID uuid.UUID, filename string, r io.Reader) (*StoredBlob, error) {
	relPath := path.Join(
		"projects",
		projectID.String(),
		"uploads",
		fmt.Sprintf("%d_%s", s.now().Unix(), sanitizeFilename(filename)),
	)

	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	// +1 so a stream exactly at the limit is distinguishable from one past it
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		s.discard(fullPath)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if written > s.maxSize {
		s.discard(fullPath)
		return nil, fmt.Errorf("upload exceeds maximum size of %d bytes", s.maxSize)
	}

	return &StoredBlob{
		URL:  s.baseURL + "/files/" + relPath,
		Path: relPath,
		Size: written,
	}, nil
}

// Root returns the directory the store writes under, for mounting a static
// file handler over it.
func (s *LocalBlobStore) Root() string {
	return s.root
}

func (s *LocalBlobStore) discard(fullPath string) {
	if err := os.Remove(fullPath); err != nil {
		slog.Warn("Failed to remove partial upload", "path", fullPath, "error", err)
	}
}

// sanitizeFilename slugs the base name while keeping the extension so the
// stored path is safe to embed in URLs and shell commands.
func sanitizeFilename(filename string) string {
	base := path.Base(filename)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	slugged := slug.Make(name)
	if slugged == "" {
		slugged = "file"
	}
	return slugged + strings.ToLower(url.PathEscape(ext))
}
