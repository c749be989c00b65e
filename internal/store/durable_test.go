package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDurable(t *testing.T) (*Durable, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.db")
	d, err := OpenDurable(path)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, path
}

func TestDurable_SetGetDelete(t *testing.T) {
	d, _ := setupDurable(t)

	_, ok, err := d.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Set(KeyToken, []byte("tok")))
	v, ok, err := d.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("tok"), v)

	// Overwrite wins.
	require.NoError(t, d.Set(KeyToken, []byte("tok2")))
	v, _, _ = d.Get(KeyToken)
	assert.Equal(t, []byte("tok2"), v)

	require.NoError(t, d.Delete(KeyToken))
	_, ok, err = d.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDurable_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")

	d, err := OpenDurable(path)
	require.NoError(t, err)
	require.NoError(t, d.Set(KeyCart, []byte(`[{"product_id":1}]`)))
	require.NoError(t, d.Close())

	reopened, err := OpenDurable(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"product_id":1}]`), v)
}

func TestDurable_CreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "client.db")
	d, err := OpenDurable(path)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Set("k", []byte("v")))
}

func TestSession_Isolation(t *testing.T) {
	s := NewSession()

	require.NoError(t, s.Set(KeyProfile, []byte("abc")))
	v, ok, err := s.Get(KeyProfile)
	require.NoError(t, err)
	assert.True(t, ok)

	// Mutating the returned slice must not corrupt the stored value.
	v[0] = 'x'
	v2, _, _ := s.Get(KeyProfile)
	assert.Equal(t, []byte("abc"), v2)

	require.NoError(t, s.Delete(KeyProfile))
	_, ok, _ = s.Get(KeyProfile)
	assert.False(t, ok)
}
