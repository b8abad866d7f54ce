// Package storage keeps attachment bytes on local disk under one directory
// per form (uploads/form_<id>/...), the layout the database rows point at.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Allowed upload extensions, lower-cased without the dot.
var allowedExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"jpg": true, "jpeg": true, "png": true, "csv": true, "txt": true,
}

// AttachmentStore writes and serves attachment files. Writes to the same
// form serialize on a per-form lock so concurrent uploads never interleave;
// writes to different forms go to different directories and need no
// coordination. Name collisions within a form overwrite.
type AttachmentStore struct {
	root   string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewAttachmentStore(root string, logger *zap.Logger) (*AttachmentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root %s: %w", root, err)
	}
	return &AttachmentStore{
		root:   root,
		logger: logger,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}, nil
}

func (s *AttachmentStore) formLock(formID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[formID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[formID] = l
	return l
}

// Save writes one attachment under the form's directory and returns the
// sanitized filename it was stored as.
func (s *AttachmentStore) Save(formID uuid.UUID, filename string, r io.Reader) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	lock := s.formLock(formID)
	lock.Lock()
	defer lock.Unlock()

	dir := s.formDir(formID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create form directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	return name, nil
}

// Open returns a reader over a stored attachment.
func (s *AttachmentStore) Open(formID uuid.UUID, filename string) (io.ReadCloser, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.formDir(formID), name))
}

// Path returns the on-disk location of a stored attachment.
func (s *AttachmentStore) Path(formID uuid.UUID, filename string) (string, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.formDir(formID), name), nil
}

// Cleanup removes a form's directory and everything in it. Only the hard
// maintenance path uses this; soft delete leaves files in place.
func (s *AttachmentStore) Cleanup(formID uuid.UUID) (int, error) {
	lock := s.formLock(formID)
	lock.Lock()
	defer lock.Unlock()

	dir := s.formDir(formID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := len(entries)
	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	s.logger.Info("cleaned up form uploads",
		zap.String("form_id", formID.String()),
		zap.Int("files_removed", removed))
	return removed, nil
}

func (s *AttachmentStore) formDir(formID uuid.UUID) string {
	return filepath.Join(s.root, fmt.Sprintf("form_%s", formID))
}

// sanitizeFilename strips any path component and rejects disallowed
// extensions.
func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}
	return name, nil
}
