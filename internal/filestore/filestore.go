// Package filestore implements a file-backed JSON document store. Each named
// collection lives in its own directory under the store root, holding an
// index.json with every record plus one <id>.json file per record for direct
// lookups. The index is the source of truth for scans; per-id files are kept
// in sync with it on every mutation.
//
// All mutations are funneled through a single writer lock and every file is
// written with a write-temp-then-rename sequence, so readers always observe
// either the previous or the next state of a file, never a torn write. The
// store is still a local development backend: it makes no durability claims
// beyond that.
package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrExists is returned by CreateUnique when a record matching the given
// natural key already exists.
var ErrExists = errors.New("filestore: record already exists")

// Doc is implemented by every record type persisted in a collection.
type Doc interface {
	DocID() string
	SetDocID(id string)
	StampNew(now time.Time)
	StampUpdated(now time.Time)
}

// Store is a root directory holding one subdirectory per collection.
type Store struct {
	root string

	// mu serializes all mutations across every collection in this store.
	mu sync.Mutex
}

// Open creates the root directory if needed and returns a Store over it.
func Open(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("filestore: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) collectionDir(name string) string {
	return filepath.Join(s.root, name)
}

// newID mints a collection-record id: a time-based prefix for rough ordering
// plus a random suffix. Unique enough for a single-process store.
func newID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + uuid.NewString()[:8]
}

// atomicWrite writes data to path via a temp file in the same directory and a
// rename, so concurrent readers never see a partially written file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
