// Package memstore is an in-process store.Store. Writes are encoded with
// the same bson codec the mongo backend uses, so documents round-trip the
// same way in both. Unordered queries come back in map order.
package memstore

import (
	"cmp"
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"dietplanner/internal/store"
)

// FaultFunc lets tests fail individual operations. op is one of get, set,
// update, delete, query, commit, transaction, tx.get, tx.set, tx.update
// and tx.delete; path is the addressed document or collection.
type FaultFunc func(op, path string) error

type record struct {
	collection string
	data       bson.Raw
}

type Store struct {
	mu   sync.RWMutex
	docs map[string]record

	faultMu sync.RWMutex
	fault   FaultFunc
}

func New() *Store {
	return &Store{docs: make(map[string]record)}
}

// InjectFault installs fn; nil removes it.
func (s *Store) InjectFault(fn FaultFunc) {
	s.faultMu.Lock()
	s.fault = fn
	s.faultMu.Unlock()
}

func (s *Store) check(op, path string) error {
	s.faultMu.RLock()
	fn := s.fault
	s.faultMu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(op, path)
}

// Len reports how many documents are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *Store) NewID() string {
	return uuid.NewString()
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Get(ctx context.Context, path string) (store.Document, error) {
	if err := s.check("get", path); err != nil {
		return store.Document{}, err
	}
	if _, _, err := store.SplitDocument(path); err != nil {
		return store.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.docs[path]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return toDocument(path, rec), nil
}

func (s *Store) Set(ctx context.Context, path string, doc interface{}) error {
	if err := s.check("set", path); err != nil {
		return err
	}
	rec, err := newRecord(path, doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[path] = rec
	s.mu.Unlock()
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := s.check("update", path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[path]
	if !ok {
		return store.ErrNotFound
	}
	data, err := applyFields(rec.data, fields)
	if err != nil {
		return err
	}
	rec.data = data
	s.docs[path] = rec
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.check("delete", path); err != nil {
		return err
	}
	if _, _, err := store.SplitDocument(path); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	if err := s.check("query", collection); err != nil {
		return nil, err
	}
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	docs := make([]store.Document, 0)
	for path, rec := range s.docs {
		if rec.collection == collection {
			docs = append(docs, toDocument(path, rec))
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i].Data.Lookup(q.OrderBy), docs[j].Data.Lookup(q.OrderBy))
			if c == 0 {
				c = strings.Compare(docs[i].Path, docs[j].Path)
			}
			if q.Direction == store.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	return docs, nil
}

func (s *Store) Batch() store.Batch {
	return &batch{s: s}
}

type batch struct {
	store.Ops
	s *Store
}

func (b *batch) Commit(ctx context.Context) error {
	if err := b.s.check("commit", ""); err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	view := newOverlay(b.s.docs)
	for _, op := range b.List {
		var err error
		switch op.Kind {
		case store.OpSet:
			err = view.set(op.Path, op.Doc)
		case store.OpUpdate:
			err = view.update(op.Path, op.Fields)
		case store.OpDelete:
			err = view.delete(op.Path)
		}
		if err != nil {
			return err
		}
	}
	view.apply()
	return nil
}

// RunTransaction holds the write lock for the whole call; fn must only use
// the handle it is given.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := s.check("transaction", ""); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{s: s, view: newOverlay(s.docs)}
	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.view.apply()
	return nil
}

type tx struct {
	s    *Store
	view *overlay
}

func (t *tx) Get(path string) (store.Document, error) {
	if err := t.s.check("tx.get", path); err != nil {
		return store.Document{}, err
	}
	rec, ok := t.view.get(path)
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return toDocument(path, rec), nil
}

func (t *tx) Set(path string, doc interface{}) error {
	if err := t.s.check("tx.set", path); err != nil {
		return err
	}
	return t.view.set(path, doc)
}

func (t *tx) Update(path string, fields map[string]interface{}) error {
	if err := t.s.check("tx.update", path); err != nil {
		return err
	}
	return t.view.update(path, fields)
}

func (t *tx) Delete(path string) error {
	if err := t.s.check("tx.delete", path); err != nil {
		return err
	}
	return t.view.delete(path)
}

// overlay stages writes over the committed documents; a nil entry marks a
// deletion.
type overlay struct {
	base    map[string]record
	pending map[string]*record
}

func newOverlay(base map[string]record) *overlay {
	return &overlay{base: base, pending: make(map[string]*record)}
}

func (o *overlay) get(path string) (record, bool) {
	if rec, ok := o.pending[path]; ok {
		if rec == nil {
			return record{}, false
		}
		return *rec, true
	}
	rec, ok := o.base[path]
	return rec, ok
}

func (o *overlay) set(path string, doc interface{}) error {
	rec, err := newRecord(path, doc)
	if err != nil {
		return err
	}
	o.pending[path] = &rec
	return nil
}

func (o *overlay) update(path string, fields map[string]interface{}) error {
	rec, ok := o.get(path)
	if !ok {
		return store.ErrNotFound
	}
	data, err := applyFields(rec.data, fields)
	if err != nil {
		return err
	}
	rec.data = data
	o.pending[path] = &rec
	return nil
}

func (o *overlay) delete(path string) error {
	if _, _, err := store.SplitDocument(path); err != nil {
		return err
	}
	o.pending[path] = nil
	return nil
}

func (o *overlay) apply() {
	for path, rec := range o.pending {
		if rec == nil {
			delete(o.base, path)
			continue
		}
		o.base[path] = *rec
	}
}

func newRecord(path string, doc interface{}) (record, error) {
	collection, _, err := store.SplitDocument(path)
	if err != nil {
		return record{}, err
	}
	data, err := store.Marshal(doc)
	if err != nil {
		return record{}, err
	}
	return record{collection: collection, data: data}, nil
}

func toDocument(path string, rec record) store.Document {
	_, id, _ := store.SplitDocument(path)
	data := make(bson.Raw, len(rec.data))
	copy(data, rec.data)
	return store.Document{ID: id, Path: path, Data: data}
}

func applyFields(data bson.Raw, fields map[string]interface{}) (bson.Raw, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		replaced := false
		for i := range doc {
			if doc[i].Key == key {
				doc[i].Value = fields[key]
				replaced = true
				break
			}
		}
		if !replaced {
			doc = append(doc, bson.E{Key: key, Value: fields[key]})
		}
	}
	return store.Marshal(doc)
}

// compareValues orders missing values first, then by bson type, then by
// value for the scalar types documents are sorted on.
func compareValues(a, b bson.RawValue) int {
	if a.Type != b.Type {
		return cmp.Compare(a.Type, b.Type)
	}
	switch a.Type {
	case bsontype.DateTime:
		return cmp.Compare(a.DateTime(), b.DateTime())
	case bsontype.Double:
		return cmp.Compare(a.Double(), b.Double())
	case bsontype.Int32:
		return cmp.Compare(a.Int32(), b.Int32())
	case bsontype.Int64:
		return cmp.Compare(a.Int64(), b.Int64())
	case bsontype.String:
		return strings.Compare(a.StringValue(), b.StringValue())
	case bsontype.Boolean:
		if a.Boolean() == b.Boolean() {
			return 0
		}
		if !a.Boolean() {
			return -1
		}
		return 1
	}
	return 0
}
