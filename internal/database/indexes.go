package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureDocumentIndexes creates the indexes the store queries rely on:
// listing a collection, and listing it ordered by the fields the managers
// sort on.
func EnsureDocumentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(DocumentsCollection).Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "collection", Value: 1}},
			Options: options.Index().SetName("collection_index"),
		},
		{
			Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "data.date", Value: -1}},
			Options: options.Index().SetName("collection_date_index"),
		},
		{
			Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "data.position", Value: 1}},
			Options: options.Index().SetName("collection_position_index"),
		},
		{
			Keys:    bson.D{{Key: "collection", Value: 1}, {Key: "data.addedAt", Value: 1}},
			Options: options.Index().SetName("collection_added_at_index"),
		},
	}

	log.Println("EnsureDocumentIndexes: creating document indexes")
	names, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureDocumentIndexes: index error:", err)
		return err
	}
	log.Println("EnsureDocumentIndexes: indexes created:", names)
	return nil
}
