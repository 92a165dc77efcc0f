package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage(t *testing.T) {
	c := context.Background()

	t.Run("given missing file should report absent key", func(t *testing.T) {
		storage := NewFileStorage(filepath.Join(t.TempDir(), "nested", "cart.json"))

		_, ok, err := storage.Get(c, StorageKey)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("given stored cart should survive a new storage on the same file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cart.json")
		product := newProduct("mug", "5.00", uuid.New())
		require.NoError(t, NewStore(NewFileStorage(path)).AddItem(c, product))

		lines := NewStore(NewFileStorage(path)).GetCart(c)

		require.Len(t, lines, 1)
		assert.Equal(t, product.ID, lines[0].Product.ID)
		assert.Equal(t, product.Shop, lines[0].Product.Shop)
	})

	t.Run("given removed key should keep other keys", func(t *testing.T) {
		storage := NewFileStorage(filepath.Join(t.TempDir(), "cart.json"))
		require.NoError(t, storage.Set(c, "a", []byte(`[1]`)))
		require.NoError(t, storage.Set(c, "b", []byte(`{"x":2}`)))

		require.NoError(t, storage.Remove(c, "a"))
		require.NoError(t, storage.Remove(c, "missing"))

		_, ok, err := storage.Get(c, "a")
		require.NoError(t, err)
		assert.False(t, ok)
		value, ok, err := storage.Get(c, "b")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"x":2}`, string(value))
	})

	t.Run("given non json value should refuse it", func(t *testing.T) {
		storage := NewFileStorage(filepath.Join(t.TempDir(), "cart.json"))

		assert.Error(t, storage.Set(c, StorageKey, []byte("plain")))
	})

	t.Run("given corrupt file should fail read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cart.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, _, err := NewFileStorage(path).Get(c, StorageKey)

		assert.Error(t, err)
		assert.Equal(t, 0, NewStore(NewFileStorage(path)).ItemCount(c))
	})
}

func TestMemoryStorage(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()
	value := []byte(`[]`)
	require.NoError(t, storage.Set(c, StorageKey, value))
	value[0] = 'x'

	stored, ok, err := storage.Get(c, StorageKey)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(stored))
}

func TestRedisStorage(t *testing.T) {
	c := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	t.Run("given two sessions should keep carts apart", func(t *testing.T) {
		alice := NewStore(NewRedisStorage(client, "alice", 0))
		bob := NewStore(NewRedisStorage(client, "bob", 0))

		require.NoError(t, alice.AddItem(c, newProduct("mug", "5.00", uuid.New())))

		assert.Equal(t, 1, alice.ItemCount(c))
		assert.Equal(t, 0, bob.ItemCount(c))
		assert.True(t, mr.Exists("session:alice:cart"))
	})

	t.Run("given ttl should expire the session cart", func(t *testing.T) {
		store := NewStore(NewRedisStorage(client, "carol", time.Hour))
		require.NoError(t, store.AddItem(c, newProduct("mug", "5.00", uuid.New())))

		mr.FastForward(2 * time.Hour)

		assert.Equal(t, 0, store.ItemCount(c))
	})

	t.Run("given clear should delete the session key", func(t *testing.T) {
		store := NewStore(NewRedisStorage(client, "dave", 0))
		require.NoError(t, store.AddItem(c, newProduct("mug", "5.00", uuid.New())))

		require.NoError(t, store.Clear(c))

		assert.False(t, mr.Exists("session:dave:cart"))
	})

	t.Run("given unreachable redis should degrade reads and fail writes", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		t.Cleanup(func() { broken.Close() })
		store := NewStore(NewRedisStorage(broken, "erin", 0))

		assert.Equal(t, 0, store.ItemCount(c))
		assert.Error(t, store.AddItem(c, newProduct("mug", "5.00", uuid.New())))
	})
}
