package filestore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"time"
)

// Pagination describes one page of a paginated scan.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// Page holds one page of records plus its pagination metadata.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Collection is a typed view over one named collection in a Store.
type Collection[T any, P interface {
	*T
	Doc
}] struct {
	store *Store
	name  string
}

// NewCollection binds a typed collection to a store. The pointer type of T
// must implement Doc.
func NewCollection[T any, P interface {
	*T
	Doc
}](s *Store, name string) *Collection[T, P] {
	return &Collection[T, P]{store: s, name: name}
}

func (c *Collection[T, P]) dir() string {
	return c.store.collectionDir(c.name)
}

func (c *Collection[T, P]) indexPath() string {
	return filepath.Join(c.dir(), "index.json")
}

func (c *Collection[T, P]) docPath(id string) string {
	return filepath.Join(c.dir(), id+".json")
}

// readIndex loads the raw records from the collection's index file. A
// collection that was never written reads as empty; any other read or parse
// failure is reported to the caller.
func (c *Collection[T, P]) readIndex() ([]json.RawMessage, error) {
	data, err := os.ReadFile(c.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

func (c *Collection[T, P]) writeIndex(raws []json.RawMessage) error {
	if raws == nil {
		raws = []json.RawMessage{}
	}
	data, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return atomicWrite(c.indexPath(), data)
}

func decode[T any](raw json.RawMessage) (*T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// normalizeFilter round-trips filter values through JSON so they compare
// equal to decoded document fields (e.g. ints become float64).
func normalizeFilter(filter map[string]any) (map[string]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matches reports whether every filter field equals the corresponding
// document field. Equality only; there are no range or pattern operators.
func matches(raw json.RawMessage, filter map[string]any) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// FindAll returns every record tracked by the collection's index.
func (c *Collection[T, P]) FindAll() ([]T, error) {
	raws, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		rec, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Find returns every record whose fields equal all filter key/value pairs.
func (c *Collection[T, P]) Find(filter map[string]any) ([]T, error) {
	norm, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	raws, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	var out []T
	for _, raw := range raws {
		ok, err := matches(raw, norm)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rec, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// FindByID returns the record with the given id, or nil if it does not
// exist. The per-id file is consulted first; if it is missing the index is
// scanned, so records created before per-id files existed still resolve.
func (c *Collection[T, P]) FindByID(id string) (*T, error) {
	data, err := os.ReadFile(c.docPath(id))
	if err == nil {
		return decode[T](data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	raws, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		rec, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		if P(rec).DocID() == id {
			return rec, nil
		}
	}
	return nil, nil
}

// Create assigns the record an id and creation stamp, then persists it to
// both the per-id file and the index.
func (c *Collection[T, P]) Create(rec *T) (*T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.createLocked(rec)
}

// CreateUnique creates the record only if no existing record matches the
// given natural-key filter. The check and the write happen under the same
// writer lock, so two concurrent CreateUnique calls for the same key cannot
// both succeed. Returns ErrExists on a duplicate.
func (c *Collection[T, P]) CreateUnique(rec *T, filter map[string]any) (*T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	norm, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	raws, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		ok, err := matches(raw, norm)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, ErrExists
		}
	}
	return c.createLocked(rec)
}

func (c *Collection[T, P]) createLocked(rec *T) (*T, error) {
	now := time.Now().UTC()
	doc := P(rec)
	if doc.DocID() == "" {
		doc.SetDocID(newID(now))
	}
	doc.StampNew(now)

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.dir(), 0o755); err != nil {
		return nil, err
	}
	raws, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	if err := atomicWrite(c.docPath(doc.DocID()), raw); err != nil {
		return nil, err
	}
	// Index last: a crash between the two writes leaves an orphan per-id
	// file, never a record the index knows about but cannot resolve.
	if err := c.writeIndex(append(raws, raw)); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update merges the partial fields onto the stored record, bumps its update
// stamp, and rewrites both representations. Returns nil if the id does not
// exist.
func (c *Collection[T, P]) Update(id string, partial map[string]any) (*T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	norm, err := normalizeFilter(partial)
	if err != nil {
		return nil, err
	}
	raws, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	for i, raw := range raws {
		rec, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		if P(rec).DocID() != id {
			continue
		}

		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		for k, v := range norm {
			doc[k] = v
		}
		merged, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		updated, err := decode[T](merged)
		if err != nil {
			return nil, err
		}
		P(updated).StampUpdated(time.Now().UTC())

		out, err := json.Marshal(updated)
		if err != nil {
			return nil, err
		}
		if err := atomicWrite(c.docPath(id), out); err != nil {
			return nil, err
		}
		raws[i] = out
		if err := c.writeIndex(raws); err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, nil
}

// Delete removes the record's per-id file and its index entry. Deleting an
// id with no per-id file still succeeds as long as nothing else fails.
func (c *Collection[T, P]) Delete(id string) (bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := os.Remove(c.docPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	raws, err := c.readIndex()
	if err != nil {
		return false, err
	}
	kept := make([]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		rec, err := decode[T](raw)
		if err != nil {
			return false, err
		}
		if P(rec).DocID() == id {
			continue
		}
		kept = append(kept, raw)
	}
	if err := c.writeIndex(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of records matching the filter (all records for
// an empty filter).
func (c *Collection[T, P]) Count(filter map[string]any) (int, error) {
	norm, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}
	raws, err := c.readIndex()
	if err != nil {
		return 0, err
	}
	if len(norm) == 0 {
		return len(raws), nil
	}
	n := 0
	for _, raw := range raws {
		ok, err := matches(raw, norm)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Paginate applies the filter and slices the result into 1-based pages.
// A page past the end of the result set yields an empty data slice.
func (c *Collection[T, P]) Paginate(page, limit int, filter map[string]any) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	records, err := c.Find(filter)
	if err != nil {
		return nil, err
	}

	total := len(records)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Page[T]{
		Data: records[start:end],
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, nil
}
