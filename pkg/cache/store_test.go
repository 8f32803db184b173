package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(namespace string) *Record {
	return &Record{
		Namespace:   namespace,
		Fingerprint: "abc123",
		Inputs:      map[string]FileStamp{"a.proto": {ModTimeNanos: 1, Size: 2}},
		Outputs:     []string{"out/A.java"},
		CreatedAt:   time.Now().UTC(),
	}
}

func TestStore(t *testing.T) {
	t.Run("creates the store directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "cache")
		_, err := NewStore(dir)
		require.NoError(t, err)
		assert.DirExists(t, dir)
	})

	t.Run("get before put is a miss", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Get("protoc")
		assert.ErrorIs(t, err, ErrCacheMiss)
		assert.Equal(t, int64(1), store.Stats().Misses)
	})

	t.Run("put then get roundtrips", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		rec := testRecord("protoc")
		require.NoError(t, store.Put(rec))

		got, err := store.Get("protoc")
		require.NoError(t, err)
		assert.Equal(t, rec.Fingerprint, got.Fingerprint)
		assert.Equal(t, rec.Outputs, got.Outputs)
		assert.Equal(t, rec.Inputs, got.Inputs)
	})

	t.Run("records survive a store restart", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Put(testRecord("protoc")))

		reopened, err := NewStore(dir)
		require.NoError(t, err)
		got, err := reopened.Get("protoc")
		require.NoError(t, err)
		assert.Equal(t, "abc123", got.Fingerprint)
	})

	t.Run("invalidate removes the record", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Put(testRecord("protoc")))

		require.NoError(t, store.Invalidate("protoc"))
		_, err = store.Get("protoc")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("invalidating an absent record is not an error", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)
		assert.NoError(t, store.Invalidate("never-written"))
	})

	t.Run("rejects unsafe namespaces", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)

		for _, namespace := range []string{"", "a/b", `a\b`, ".."} {
			_, err := store.Get(namespace)
			assert.ErrorIs(t, err, ErrInvalidNamespace, "namespace %q", namespace)
		}
	})

	t.Run("namespaces are independent", func(t *testing.T) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Put(testRecord("main")))

		other := testRecord("test")
		other.Fingerprint = "def456"
		require.NoError(t, store.Put(other))

		got, err := store.Get("main")
		require.NoError(t, err)
		assert.Equal(t, "abc123", got.Fingerprint)
	})
}
