package chatbot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func storeContract(t *testing.T, store MemoryStore) {
	ctx := context.Background()

	_, found, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, "alice", Memory{Food: "salmon"}))
	require.NoError(t, store.Save(ctx, "bob", Memory{Condition: "gout"}))

	mem, found, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Memory{Food: "salmon"}, mem)

	require.NoError(t, store.Delete(ctx, "alice"))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, found, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)

	mem, found, err = store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Memory{Condition: "gout"}, mem)
}

func TestLRUStore_Contract(t *testing.T) {
	storeContract(t, NewLRUStore(10, time.Minute))
}

func TestLRUStore_IdleEviction(t *testing.T) {
	store := NewLRUStore(10, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", Memory{Food: "salmon"}))
	time.Sleep(150 * time.Millisecond)

	_, found, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUStore_CapacityEviction(t *testing.T) {
	store := NewLRUStore(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", Memory{Food: "rice"}))
	require.NoError(t, store.Save(ctx, "b", Memory{Food: "rice"}))
	require.NoError(t, store.Save(ctx, "c", Memory{Food: "rice"}))

	assert.Equal(t, 2, store.Len())
	_, found, _ := store.Load(ctx, "a")
	assert.False(t, found)
}

func TestLRUStore_Defaults(t *testing.T) {
	store := NewLRUStore(0, 0)
	require.NoError(t, store.Save(context.Background(), "a", Memory{}))
	assert.Equal(t, 1, store.Len())
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setupRedis(t)
	storeContract(t, NewRedisStore(client, time.Minute))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", Memory{Food: "salmon"}))
	assert.Equal(t, 10*time.Minute, mr.TTL(sessionKey("alice")))

	raw, err := mr.Get(sessionKey("alice"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"food":"salmon"}`, raw)

	mr.FastForward(11 * time.Minute)

	_, found, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Errors(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set(sessionKey("broken"), "not json"))
	_, _, err := store.Load(ctx, "broken")
	assert.ErrorContains(t, err, "decode session memory")

	require.NoError(t, store.Ping(ctx))
	mr.Close()
	assert.Error(t, store.Ping(ctx))
	assert.Error(t, store.Save(ctx, "alice", Memory{}))
}
