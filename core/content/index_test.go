package content_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"content-manager/core/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// memSource is a Source over an in-memory path -> content map.
type memSource struct {
	files map[string]string
	dirs  []string
	err   error
}

func (m *memSource) Entries(ctx context.Context) ([]content.RawEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []content.RawEntry
	for _, d := range m.dirs {
		out = append(out, content.RawEntry{Path: d, Dir: true})
	}
	for p, c := range m.files {
		out = append(out, content.RawEntry{Path: p, Size: int64(len(c))})
	}
	return out, nil
}

func (m *memSource) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	c, ok := m.files[p]
	if !ok {
		return nil, content.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(c)), nil
}

func TestBuildIndex_Classification(t *testing.T) {
	src := &memSource{
		dirs: []string{"data", "data/example"},
		files: map[string]string{
			"data/example/structures/house.cbor":       "h",
			"data/example/structures/ruins/tower.cbor": "t",
			"data/example/loot.json":                   "l",
			"assets/example/textures/stone.png":        "s",
			"plugin.yml":                               "ignored",
		},
	}

	idx, err := content.BuildIndex(context.Background(), src, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 3, idx.Len(content.Data))
	assert.Equal(t, 1, idx.Len(content.Asset))

	house, ok := idx.Get(content.Data, content.Identifier{Namespace: "example", Path: "structures/house"})
	require.True(t, ok)
	assert.Equal(t, "structures", house.Type)
	assert.Equal(t, "example", house.Namespace)
	assert.Equal(t, "data/example/structures/house.cbor", house.FullPath)

	tower, ok := idx.Get(content.Data, content.Identifier{Namespace: "example", Path: "structures/ruins/tower"})
	require.True(t, ok)
	assert.Equal(t, "structures", tower.Type)

	loot, ok := idx.Get(content.Data, content.Identifier{Namespace: "example", Path: "loot"})
	require.True(t, ok)
	assert.Empty(t, loot.Type)

	stone, ok := idx.Get(content.Asset, content.Identifier{Namespace: "example", Path: "textures/stone"})
	require.True(t, ok)
	assert.Equal(t, content.Asset, stone.Category)

	_, ok = idx.Get(content.Asset, content.Identifier{Namespace: "example", Path: "structures/house"})
	assert.False(t, ok)
}

func TestBuildIndex_MalformedPathsAreSkippedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := &memSource{files: map[string]string{
		"data/short.json":               "x",
		"data/example/ok.json":          "x",
		"assets/example/sounds/hit.ogg": "x",
	}}

	idx, err := content.BuildIndex(context.Background(), src, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len(content.Data))
	assert.Equal(t, 1, idx.Len(content.Asset))
	assert.Equal(t, []string{"data/short.json"}, idx.Rejected())
	assert.Equal(t, 1, logs.FilterMessage("Skipping malformed content path").Len())
}

func TestBuildIndex_ExcludesMetadataFromData(t *testing.T) {
	src := &memSource{files: map[string]string{
		"data/example/pack.mcmeta":        "{}",
		"data/example/index.json":         "{}",
		"data/example/extra/info.mcmeta":  "{}",
		"data/example/recipes/bread.json": "{}",
	}}

	idx, err := content.BuildIndex(context.Background(), src, nil)
	require.NoError(t, err)

	entries := idx.Entries(content.Data)
	require.Len(t, entries, 1)
	assert.Equal(t, "example:recipes/bread", entries[0].Key.String())
}

func TestBuildIndex_EntriesSorted(t *testing.T) {
	src := &memSource{files: map[string]string{
		"assets/b/x/2.png": "",
		"assets/a/x/1.png": "",
		"assets/a/y/0.png": "",
	}}
	idx, err := content.BuildIndex(context.Background(), src, nil)
	require.NoError(t, err)

	var paths []string
	for _, e := range idx.Entries(content.Asset) {
		paths = append(paths, e.FullPath)
	}
	assert.Equal(t, []string{"assets/a/x/1.png", "assets/a/y/0.png", "assets/b/x/2.png"}, paths)
}

func TestBuildIndex_ListingFailure(t *testing.T) {
	_, err := content.BuildIndex(context.Background(), &memSource{err: errors.New("archive truncated")}, nil)
	assert.ErrorContains(t, err, "archive truncated")
}

func TestParseIdentifier(t *testing.T) {
	id, err := content.ParseIdentifier("example:structures/house")
	require.NoError(t, err)
	assert.Equal(t, content.Identifier{Namespace: "example", Path: "structures/house"}, id)

	for _, bad := range []string{"", "nonamespace", ":path", "ns:"} {
		_, err := content.ParseIdentifier(bad)
		assert.Error(t, err, bad)
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "data", content.Data.String())
	assert.Equal(t, "assets", content.Asset.String())
}

func TestParseCategory(t *testing.T) {
	c, err := content.ParseCategory("assets")
	require.NoError(t, err)
	assert.Equal(t, content.Asset, c)

	c, err = content.ParseCategory("DATA")
	require.NoError(t, err)
	assert.Equal(t, content.Data, c)

	_, err = content.ParseCategory("textures")
	assert.Error(t, err)
}
