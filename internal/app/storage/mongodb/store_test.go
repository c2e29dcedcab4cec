package mongodb_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/mongodb"
	"github.com/booklovin/backend/internal/app/storage/storagetest"
)

// TestConformance runs the shared storage suite against a real MongoDB.
// Set TEST_MONGO_URI (for example mongodb://localhost:27017) to enable it.
func TestConformance(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping document-store integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	seq := 0
	storagetest.Run(t, func(t *testing.T) storage.Store {
		seq++
		db := client.Database(fmt.Sprintf("booklovin_test_%d_%d", time.Now().UnixNano(), seq))
		t.Cleanup(func() { db.Drop(context.Background()) })

		s := mongodb.New(db, nil)
		if err := s.EnsureIndexes(context.Background()); err != nil {
			t.Fatalf("ensure indexes: %v", err)
		}
		return s
	})
}
