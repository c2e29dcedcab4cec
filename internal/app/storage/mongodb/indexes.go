package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the adapter depends on. Uniqueness
// constraints here are load-bearing: duplicate users, likes and shelf items
// are rejected by the engine, not by read-then-write checks. Call once at
// startup; index creation is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colPosts: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "creationTime", Value: -1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "creationTime", Value: -1}}},
		},
		colComments: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "creationTime", Value: 1}}},
		},
		colLikes: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		colJournals: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "creationTime", Value: -1}}},
			{Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "content", Value: "text"},
				{Key: "tags", Value: "text"},
			}},
		},
		colShelves: {
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "ol_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colConfessions: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "creationTime", Value: -1}}},
		},
		colLetters: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "target_date", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "target_date", Value: 1}}},
		},
	}

	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}
