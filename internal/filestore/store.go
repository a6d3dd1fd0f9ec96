package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Request carries one durable blob write. The payload is immutable once
// enqueued; the worker and the enqueuer share nothing else.
type Request struct {
	Filename string
	MimeType string
	Data     []byte
}

// Store persists attachment payloads keyed by filename.
type Store interface {
	Store(ctx context.Context, req Request) error
}

// DiskStore writes attachment payloads below a base directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Store writes the payload; the filename is generated upstream and never
// contains path separators.
func (s *DiskStore) Store(_ context.Context, req Request) error {
	if s == nil || strings.TrimSpace(s.dir) == "" {
		return errors.New("disk store not configured")
	}
	if req.Filename == "" || strings.ContainsRune(req.Filename, os.PathSeparator) {
		return fmt.Errorf("invalid attachment filename %q", req.Filename)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	path := filepath.Join(s.dir, req.Filename)
	if err := os.WriteFile(path, req.Data, 0o644); err != nil {
		return fmt.Errorf("write attachment %s: %w", req.Filename, err)
	}
	return nil
}

var _ Store = (*DiskStore)(nil)
