package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned by Get and Update when the addressed document
// does not exist.
var ErrNotFound = errors.New("document not found")

type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Query selects the documents of one collection. An empty OrderBy leaves
// the result order up to the backend.
type Query struct {
	OrderBy   string
	Direction Direction
}

// Document is a decoded-on-demand snapshot of a stored document.
type Document struct {
	ID   string
	Path string
	Data bson.Raw
}

func (d Document) Decode(out interface{}) error {
	return bson.Unmarshal(d.Data, out)
}

// Store is the hierarchical document store every manager reads and writes.
type Store interface {
	NewID() string
	Get(ctx context.Context, path string) (Document, error)
	Set(ctx context.Context, path string, doc interface{}) error
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Batch() Batch
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}

// Batch collects writes that Commit applies atomically, in the order they
// were added.
type Batch interface {
	Set(path string, doc interface{})
	Update(path string, fields map[string]interface{})
	Delete(path string)
	Len() int
	Commit(ctx context.Context) error
}

// Tx is the read/write handle passed to RunTransaction. Writes become
// visible only if the transaction function returns nil.
type Tx interface {
	Get(path string) (Document, error)
	Set(path string, doc interface{}) error
	Update(path string, fields map[string]interface{}) error
	Delete(path string) error
}

// Op is one staged batch write, shared by the backends.
type Op struct {
	Kind   OpKind
	Path   string
	Doc    interface{}
	Fields map[string]interface{}
}

type OpKind int

const (
	OpSet OpKind = iota + 1
	OpUpdate
	OpDelete
)

// Ops is an embeddable Batch recorder; backends only implement Commit.
type Ops struct {
	List []Op
}

func (o *Ops) Set(path string, doc interface{}) {
	o.List = append(o.List, Op{Kind: OpSet, Path: path, Doc: doc})
}

func (o *Ops) Update(path string, fields map[string]interface{}) {
	o.List = append(o.List, Op{Kind: OpUpdate, Path: path, Fields: fields})
}

func (o *Ops) Delete(path string) {
	o.List = append(o.List, Op{Kind: OpDelete, Path: path})
}

func (o *Ops) Len() int {
	return len(o.List)
}

// Marshal encodes a document for storage.
func Marshal(doc interface{}) (bson.Raw, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return bson.Raw(data), nil
}
