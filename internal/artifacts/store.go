// Package artifacts stores failure evidence (screenshots, page HTML) from
// harness runs, either below a local directory or in an S3 bucket.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kuitang/moviecheck/internal/errs"
)

// Store persists one artifact and returns where it can be found.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
}

// Key builds the artifact key for a check within a run, e.g.
// "run-1234/search.png".
func Key(runID, check, ext string) string {
	return path.Join(sanitize(runID), sanitize(check)+"."+strings.TrimPrefix(ext, "."))
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// validKey rejects keys that are empty or escape the store root.
func validKey(key string) error {
	if key == "" {
		return errs.New(errs.InvalidArgument, "artifact key is empty")
	}
	clean := path.Clean("/" + key)
	if clean != "/"+key || strings.Contains(key, "..") {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("artifact key %q is not a clean relative path", key))
	}
	return nil
}

// DirStore writes artifacts below a local directory.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at dir. The directory is created on
// first write.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// Root returns the base directory.
func (s *DirStore) Root() string { return s.root }

// Put writes data to root/key and returns the file path.
func (s *DirStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validKey(key); err != nil {
		return "", err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("artifacts: create directory for %q: %w", key, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("artifacts: write %q: %w", key, err)
	}
	return dst, nil
}
