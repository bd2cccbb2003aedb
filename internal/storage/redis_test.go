package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

// setupRedisStore connects to a local Redis or skips the test when
// none is running.
func setupRedisStore(t *testing.T) (Store, *redis.Client) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: testRedisAddr,
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return NewRedisStore(zerolog.Nop(), client), client
}

func TestRedisStorePutGetRoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	task := newTestTask("a", dayAt(t, 9, 0), dayAt(t, 11, 0))
	require.NoError(t, store.Put(ctx, task))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.Description, got.Description)
	assert.True(t, task.StartTime.Equal(got.StartTime))
	assert.True(t, task.EndTime.Equal(got.EndTime))
	assert.Equal(t, task.ReferenceTickets, got.ReferenceTickets)
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, task.UpdatedAt.Equal(got.UpdatedAt))
}

func TestRedisStoreGetNotFound(t *testing.T) {
	store, _ := setupRedisStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDeleteRemovesIndexEntry(t *testing.T) {
	store, client := setupRedisStore(t)
	ctx := context.Background()

	task := newTestTask("a", dayAt(t, 9, 0), dayAt(t, 11, 0))
	require.NoError(t, store.Put(ctx, task))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	indexed, err := client.ZRange(ctx, startIndexKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, indexed)

	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)
}

func TestRedisStoreQueryRangeUsesIndex(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	rangeStart := dayAt(t, 9, 0)
	rangeEnd := dayAt(t, 17, 0)

	require.NoError(t, store.Put(ctx, newTestTask("inside", dayAt(t, 13, 0), dayAt(t, 14, 0))))
	require.NoError(t, store.Put(ctx, newTestTask("on-start", rangeStart, dayAt(t, 10, 0))))
	require.NoError(t, store.Put(ctx, newTestTask("outside", dayAt(t, 19, 0), dayAt(t, 20, 0))))

	got, err := store.QueryRange(ctx, rangeStart, rangeEnd)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.ElementsMatch(t, []string{"inside", "on-start"}, ids)
}

func TestRedisStorePutOverwriteMovesIndexEntry(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	task := newTestTask("a", dayAt(t, 9, 0), dayAt(t, 10, 0))
	require.NoError(t, store.Put(ctx, task))

	moved := task.Clone()
	moved.StartTime = dayAt(t, 15, 0)
	moved.EndTime = dayAt(t, 16, 0)
	require.NoError(t, store.Put(ctx, moved))

	got, err := store.QueryRange(ctx, dayAt(t, 8, 0), dayAt(t, 11, 0))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.QueryRange(ctx, dayAt(t, 14, 0), dayAt(t, 17, 0))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestRedisStoreDecodeFailsClosed(t *testing.T) {
	store, client := setupRedisStore(t)
	ctx := context.Background()

	// A document missing mandatory fields must produce a decode
	// error instead of a silently defaulted task.
	require.NoError(t, client.Set(ctx, taskKeyPrefix+"broken", `{"id":"broken"}`, 0).Err())

	_, err := store.Get(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreAll(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newTestTask("a", dayAt(t, 9, 0), dayAt(t, 10, 0))))
	require.NoError(t, store.Put(ctx, newTestTask("b", dayAt(t, 11, 0), dayAt(t, 12, 0))))

	got, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRedisStoreRangeBoundPrecision(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	// Start time with sub-millisecond precision right past the range
	// end; the millisecond-scored index alone would include it.
	end := dayAt(t, 17, 0)
	justPast := newTestTask("just-past", end.Add(200*time.Microsecond), end.Add(time.Hour))
	require.NoError(t, store.Put(ctx, justPast))

	got, err := store.QueryRange(ctx, dayAt(t, 9, 0), end)
	require.NoError(t, err)
	assert.Empty(t, got)
}
