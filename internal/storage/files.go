package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Purpose selects the directory, size ceiling and media-type allow-list an
// upload is validated against.
type Purpose string

const (
	PurposeDocuments Purpose = "documents"
	PurposeImages    Purpose = "images"
	PurposeResources Purpose = "resources"
	PurposeLogos     Purpose = "logos"
	PurposeGuides    Purpose = "guides"
)

const MB = 1 << 20

type Rule struct {
	MaxSize      int64
	AllowedTypes []string
}

var rules = map[Purpose]Rule{
	PurposeDocuments: {MaxSize: 10 * MB, AllowedTypes: []string{"application/pdf", "image"}},
	PurposeImages:    {MaxSize: 5 * MB, AllowedTypes: []string{"image"}},
	PurposeResources: {MaxSize: 50 * MB, AllowedTypes: []string{
		"application/pdf",
		"image",
		"application/zip",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}},
	PurposeLogos:  {MaxSize: 2 * MB, AllowedTypes: []string{"image"}},
	PurposeGuides: {MaxSize: 20 * MB, AllowedTypes: []string{"application/pdf"}},
}

var ErrNotFound = errors.New("file not found")

// TypeAllowed reports whether a declared media type matches the allow-list.
// Entries are either exact ("application/pdf") or a family prefix ("image"
// accepts "image/png").
func TypeAllowed(contentType string, allowed []string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	for _, entry := range allowed {
		if contentType == entry {
			return true
		}
		if !strings.Contains(entry, "/") && strings.HasPrefix(contentType, entry+"/") {
			return true
		}
	}

	return false
}

// Validate returns every rule the upload violates; an empty list means the
// file is acceptable for the purpose.
func Validate(header *multipart.FileHeader, purpose Purpose) []string {
	rule, ok := rules[purpose]

	if !ok {
		return []string{fmt.Sprintf("unknown upload purpose %q", purpose)}
	}

	var violations []string

	contentType := header.Header.Get("Content-Type")

	if !TypeAllowed(contentType, rule.AllowedTypes) {
		violations = append(violations, fmt.Sprintf("file type %q is not allowed, expected one of: %s",
			contentType, strings.Join(rule.AllowedTypes, ", ")))
	}

	if header.Size > rule.MaxSize {
		violations = append(violations, fmt.Sprintf("file exceeds the %dMB size limit", rule.MaxSize/MB))
	}

	return violations
}

// Store persists accepted uploads under a base directory, one subdirectory
// per purpose.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	for purpose := range rules {
		if err := os.MkdirAll(filepath.Join(baseDir, string(purpose)), 0o755); err != nil {
			return nil, err
		}
	}

	return &Store{baseDir: baseDir}, nil
}

func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save validates and writes the upload, returning the path relative to the
// base directory. The stored name is a fresh random identifier: the
// client-supplied name is never used, only its extension.
func (s *Store) Save(header *multipart.FileHeader, purpose Purpose) (string, error) {
	if violations := Validate(header, purpose); len(violations) > 0 {
		return "", fmt.Errorf("invalid upload: %s", strings.Join(violations, "; "))
	}

	src, err := header.Open()

	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + sanitizeExt(header.Filename)
	relPath := filepath.Join(string(purpose), name)

	dst, err := os.Create(filepath.Join(s.baseDir, relPath))

	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return relPath, nil
}

// Delete removes a stored file. A missing file reports ErrNotFound so
// callers can treat it as non-fatal.
func (s *Store) Delete(relPath string) error {
	if relPath == "" {
		return ErrNotFound
	}

	full := filepath.Join(s.baseDir, filepath.Clean(relPath))

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}

	return nil
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}

	return ext
}
