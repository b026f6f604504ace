// Package mongostore implements store.Store on a single MongoDB collection.
// Every document is one record keyed by its full path; batches and
// transactions run inside mongo sessions and need a replica set.
package mongostore

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"dietplanner/internal/store"
)

// Record is the persisted shape of a document.
type Record struct {
	Path       string   `bson:"_id"`
	Collection string   `bson:"collection"`
	Data       bson.Raw `bson:"data"`
}

type Store struct {
	coll *mongo.Collection
}

func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

func (s *Store) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Get(ctx context.Context, path string) (store.Document, error) {
	return getRecord(ctx, s.coll, path)
}

func (s *Store) Set(ctx context.Context, path string, doc interface{}) error {
	return setRecord(ctx, s.coll, path, doc)
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	return updateRecord(ctx, s.coll, path, fields)
}

func (s *Store) Delete(ctx context.Context, path string) error {
	return deleteRecord(ctx, s.coll, path)
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	if err := store.ValidateCollection(collection); err != nil {
		return nil, err
	}

	opts := options.Find()
	if q.OrderBy != "" {
		direction := 1
		if q.Direction == store.Descending {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: "data." + q.OrderBy, Value: direction}})
	}

	cursor, err := s.coll.Find(ctx, bson.M{"collection": collection}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, toDocument(rec))
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
	if b.Len() == 0 {
		return nil
	}
	return b.s.withSession(ctx, func(sessCtx mongo.SessionContext) error {
		for _, op := range b.List {
			var err error
			switch op.Kind {
			case store.OpSet:
				err = setRecord(sessCtx, b.s.coll, op.Path, op.Doc)
			case store.OpUpdate:
				err = updateRecord(sessCtx, b.s.coll, op.Path, op.Fields)
			case store.OpDelete:
				err = deleteRecord(sessCtx, b.s.coll, op.Path)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.withSession(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(&tx{ctx: sessCtx, coll: s.coll})
	})
}

func (s *Store) withSession(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := s.coll.Database().Client().StartSession()
	if err != nil {
		log.Println("[STORE] [ERROR] start session failed:", err)
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

type tx struct {
	ctx  mongo.SessionContext
	coll *mongo.Collection
}

func (t *tx) Get(path string) (store.Document, error) {
	return getRecord(t.ctx, t.coll, path)
}

func (t *tx) Set(path string, doc interface{}) error {
	return setRecord(t.ctx, t.coll, path, doc)
}

func (t *tx) Update(path string, fields map[string]interface{}) error {
	return updateRecord(t.ctx, t.coll, path, fields)
}

func (t *tx) Delete(path string) error {
	return deleteRecord(t.ctx, t.coll, path)
}

func getRecord(ctx context.Context, coll *mongo.Collection, path string) (store.Document, error) {
	if _, _, err := store.SplitDocument(path); err != nil {
		return store.Document{}, err
	}
	var rec Record
	err := coll.FindOne(ctx, bson.M{"_id": path}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, err
	}
	return toDocument(rec), nil
}

func setRecord(ctx context.Context, coll *mongo.Collection, path string, doc interface{}) error {
	collection, _, err := store.SplitDocument(path)
	if err != nil {
		return err
	}
	data, err := store.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = coll.ReplaceOne(ctx,
		bson.M{"_id": path},
		Record{Path: path, Collection: collection, Data: data},
		options.Replace().SetUpsert(true),
	)
	return err
}

func updateRecord(ctx context.Context, coll *mongo.Collection, path string, fields map[string]interface{}) error {
	if _, _, err := store.SplitDocument(path); err != nil {
		return err
	}
	set := bson.M{}
	for key, value := range fields {
		set["data."+key] = value
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": path}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func deleteRecord(ctx context.Context, coll *mongo.Collection, path string) error {
	if _, _, err := store.SplitDocument(path); err != nil {
		return err
	}
	_, err := coll.DeleteOne(ctx, bson.M{"_id": path})
	return err
}

func toDocument(rec Record) store.Document {
	_, id, _ := store.SplitDocument(rec.Path)
	return store.Document{ID: id, Path: rec.Path, Data: rec.Data}
}
