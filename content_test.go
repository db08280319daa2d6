package orrery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContent(t *testing.T) {
	store, err := DefaultContent(Bodies())
	require.NoError(t, err)
	assert.Equal(t, 9, store.Len())
	earth, ok := store.Lookup("earth")
	require.True(t, ok)
	assert.Equal(t, BodyKey("earth"), earth.Key)
	assert.Equal(t, "Earth", earth.Title)
	assert.Contains(t, earth.HTML, "<p>Home.")
	assert.Contains(t, earth.HTML, "<li>Semi-major axis: 149,598,023 km (1.000 AU)</li>")
	_, ok = store.Lookup("pluto")
	assert.False(t, ok, "a miss is a valid result")

	sun, ok := store.Lookup("sun")
	require.True(t, ok)
	assert.Contains(t, sun.HTML, "<strong>99.86%</strong>")
	assert.NotContains(t, sun.HTML, "Semi-major axis")
}

func TestContentSanitized(t *testing.T) {
	src := []byte(`
Vulcan:
  summary: |
    Hidden <script>alert("x")</script> planet, see [here](javascript:alert(1)).
ceres: {}
`)
	store, err := NewContentStore(src, Bodies())
	require.NoError(t, err)
	vulcan, ok := store.Lookup("vulcan")
	require.True(t, ok)
	assert.Equal(t, "Vulcan", vulcan.Title)
	assert.NotContains(t, vulcan.HTML, "<script>")
	assert.NotContains(t, vulcan.HTML, "javascript:")
	assert.Contains(t, vulcan.HTML, "Hidden")
	ceres, ok := store.Lookup("ceres")
	require.True(t, ok)
	assert.Equal(t, "ceres", ceres.Title)
}

func TestContentErrors(t *testing.T) {
	_, err := NewContentStore([]byte("earth: [unclosed"), Bodies())
	assert.Error(t, err)
	_, err = LoadContentFile(filepath.Join(t.TempDir(), "missing.yaml"), Bodies())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mars:\n  title: Ares\n  summary: War\n"), 0o644))
	store, err := LoadContentFile(path, Bodies())
	require.NoError(t, err)
	mars, ok := store.Lookup("mars")
	require.True(t, ok)
	assert.Equal(t, "Ares", mars.Title)

	var nilStore *ContentStore
	_, ok = nilStore.Lookup("mars")
	assert.False(t, ok)
}
