package storage

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reclamos/internal/complaint"
	apperrors "reclamos/internal/errors"
	"reclamos/internal/metrics"
)

const backendFile = "file"

// FileStore keeps the collection in a JSON file.
//
// Data flow:
//
//	Read:   lock (shared) → read file → parse
//	Append: lock (exclusive) → read file → parse → append → write temp file → rename
//
// The rename replaces the file in one step, so processes reading the file
// directly also never see a half-written collection.
type FileStore struct {
	mu   sync.RWMutex // Protects the load-append-write cycle
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
//
// Nothing is touched on disk until the first append; the parent directory
// is created then.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the collection file.
func (s *FileStore) Path() string {
	return s.path
}

// Append adds a record to the end of the collection.
//
// Flow:
//  1. Acquire exclusive lock
//  2. Load the current collection (empty if absent or corrupt)
//  3. Append the record and encode the whole collection
//  4. Write it to a temp file next to the target, fsync, rename over the target
//
// Returns:
//   - error: *errors.StoreError of kind WriteFailed on any medium failure
func (s *FileStore) Append(_ context.Context, record complaint.Record) error {
	defer observe(backendFile, "append", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.load()
	if err != nil {
		return apperrors.NewWriteError("load before append", err)
	}

	collection = append(collection, record)

	data, err := encodeCollection(collection)
	if err != nil {
		return apperrors.NewWriteError("encode collection", err)
	}

	if err := s.writeFile(data); err != nil {
		return err
	}

	metrics.CollectionSize.WithLabelValues(backendFile).Set(float64(len(collection)))
	return nil
}

// LoadAll returns the whole collection.
//
// A missing file is an empty collection. A corrupt file is logged and read
// as empty. Other read failures (e.g. permission denied) are returned as
// *errors.StoreError of kind ReadFailed.
func (s *FileStore) LoadAll(_ context.Context) (complaint.Collection, error) {
	defer observe(backendFile, "load", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load()
}

// LoadLast returns the most recent record, or nil if there is none.
func (s *FileStore) LoadLast(ctx context.Context) (*complaint.Record, error) {
	collection, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Last(), nil
}

// Close is a no-op; the file is only open during each operation.
func (s *FileStore) Close() error {
	return nil
}

// load reads and parses the file. Caller must hold the lock.
func (s *FileStore) load() (complaint.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return complaint.Collection{}, nil
		}
		return nil, apperrors.NewReadError("read "+s.path, err)
	}
	return decodeCollection(data, s.path, backendFile), nil
}

// writeFile atomically replaces the collection file. Caller must hold the
// exclusive lock.
func (s *FileStore) writeFile(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewWriteError("create data directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return apperrors.NewWriteError("create temp file", err)
	}
	tmpPath := tmp.Name()

	// Remove the temp file on any failure below
	committed := false
	defer func() {
		if !committed {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Printf("⚠️  Failed to remove temp file %s: %v", tmpPath, rmErr)
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewWriteError("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewWriteError("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewWriteError("close temp file", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return apperrors.NewWriteError("chmod temp file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return apperrors.NewWriteError("rename over "+s.path, err)
	}

	committed = true
	return nil
}
