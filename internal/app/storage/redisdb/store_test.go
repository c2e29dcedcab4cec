package redisdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/booklovin/backend/internal/app/domain/post"
	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/redisdb"
	"github.com/booklovin/backend/internal/app/storage/storagetest"
)

func newStore(t *testing.T) (*redisdb.Store, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisdb.New(client, nil), m
}

func TestConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, _ := newStore(t)
		return s
	})
}

func TestEmailClaimSurvivesRestart(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, user.User{Email: "ana@example.com"})
	require.NoError(t, err)

	// A second store on the same keyspace sees the SETNX claim.
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	other := redisdb.New(client, nil)

	_, err = other.CreateUser(ctx, user.User{Email: "ana@example.com"})
	require.True(t, storage.IsAlreadyExists(err))
}

func TestLikeScoresCarryTimestamps(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()

	p, err := s.CreatePost(ctx, post.Post{AuthorID: "author"})
	require.NoError(t, err)

	first := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.AddLike(ctx, p.ID, "fan", first))
	// A repeat like must not refresh the original score.
	require.NoError(t, s.AddLike(ctx, p.ID, "fan", first.Add(time.Hour)))

	score, err := m.ZScore("likes:"+p.ID, "fan")
	require.NoError(t, err)
	require.Equal(t, float64(first.UnixMilli()), score)
}

func TestScanSurvivesKeyDeletionMidWalk(t *testing.T) {
	s, m := newStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreatePost(ctx, post.Post{
			AuthorID:  "author",
			CreatedAt: time.Date(2026, 5, 1, i, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	// A key-value blob vanishing between SCAN and GET is skipped, not fatal.
	keys := m.Keys()
	for _, k := range keys {
		if len(k) > 5 && k[:5] == "post:" {
			m.Del(k)
			break
		}
	}

	posts, err := s.ListPosts(ctx, 0, 40)
	require.NoError(t, err)
	require.Len(t, posts, 4)
}
