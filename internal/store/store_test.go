package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adapters builds one of each KV implementation over a temp dir so the
// contract tests run against all of them.
func adapters(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	b, err := OpenBolt(filepath.Join(dir, "kv.bolt"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	s, err := OpenSQLite(filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return map[string]KV{
		"bolt":   b,
		"sqlite": s,
		"memory": NewMemory(),
	}
}

func TestKVContract(t *testing.T) {
	for name, kv := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			v, err := kv.Get("missing")
			require.NoError(t, err)
			assert.Nil(t, v, "an absent key reads as nil, not an error")

			require.NoError(t, kv.Put("cards", []byte(`[{"id":"a"}]`)))
			v, err = kv.Get("cards")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[{"id":"a"}]`), v)

			require.NoError(t, kv.Put("cards", []byte(`[]`)))
			v, err = kv.Get("cards")
			require.NoError(t, err)
			assert.Equal(t, []byte(`[]`), v, "put overwrites")

			require.NoError(t, kv.Delete("cards"))
			v, err = kv.Get("cards")
			require.NoError(t, err)
			assert.Nil(t, v)

			assert.NoError(t, kv.Delete("cards"), "deleting an absent key is not an error")
		})
	}
}

func TestBoltQuota(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "kv.bolt"), 8)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Put("small", []byte("12345678")))
	err = b.Put("large", []byte("123456789"))
	assert.ErrorIs(t, err, ErrValueTooLarge)

	v, err := b.Get("large")
	require.NoError(t, err)
	assert.Nil(t, v, "a rejected write leaves nothing behind")
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.bolt")

	b, err := OpenBolt(path, 0)
	require.NoError(t, err)
	require.NoError(t, b.Put("current-list", []byte(`"abc"`)))
	require.NoError(t, b.Close())

	b, err = OpenBolt(path, 0)
	require.NoError(t, err)
	defer b.Close()
	v, err := b.Get("current-list")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"abc"`), v)
}
