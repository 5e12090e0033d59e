package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Store persists uploaded images under a bucket-style prefix on disk and
// hands back the public URL the HTTP layer serves them from.
type Store struct {
	root   string
	bucket string
	clock  func() time.Time
}

func NewStore(root, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "quiz-images"
	}
	dir := filepath.Join(root, bucket, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{root: root, bucket: bucket, clock: time.Now}, nil
}

// Upload writes the blob under images/ with a timestamped name derived
// from the original filename's extension and returns its public path.
func (s *Store) Upload(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	name := fmt.Sprintf("%d%s", s.clock().UnixNano(), ext)
	rel := path.Join(s.bucket, "images", name)

	f, err := os.Create(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/storage/" + rel, nil
}

// Root returns the directory the HTTP layer should serve at /storage/.
func (s *Store) Root() string {
	return s.root
}
