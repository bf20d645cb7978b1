package cache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsStable(t *testing.T) {
	k1 := Key([]byte("program p\nend\n"))
	k2 := Key([]byte("program p\nend\n"))
	k3 := Key([]byte("program q\nend\n"))

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, 64)
}

func TestGetSetDelete(t *testing.T) {
	c := New()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "report text")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "report text", got)
	assert.Equal(t, 1, c.Len())

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New()
	c.Set("a", "report a")
	c.Set("b", "report b")

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))

	restored := New()
	require.NoError(t, restored.Load(&buf))

	assert.Equal(t, 2, restored.Len())
	got, ok := restored.Get("a")
	require.True(t, ok)
	assert.Equal(t, "report a", got)
}

func TestLoadFileMissing(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "nope.msgpack"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestSaveFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.msgpack")

	c := New()
	c.Set("k", "v")
	require.NoError(t, c.SaveFile(path))

	restored, err := LoadFile(path)
	require.NoError(t, err)
	got, ok := restored.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestLoadGarbage(t *testing.T) {
	c := New()
	err := c.Load(bytes.NewReader([]byte{0xc1, 0xff, 0x00}))
	assert.Error(t, err)
}
