package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/jsonc"
)

func TestLines(t *testing.T) {
	doc := New("file:///a.mist", "mist", 1, "{\r\n  \"a\": 1\n}")

	assert.Equal(t, 3, doc.LineCount())
	assert.Equal(t, "{", doc.LineAt(0))
	assert.Equal(t, `  "a": 1`, doc.LineAt(1))
	assert.Equal(t, "}", doc.LineAt(2))
	assert.Equal(t, "", doc.LineAt(3))
	assert.Equal(t, "", doc.LineAt(-1))

	assert.Equal(t, 0, doc.LineOf(0))
	assert.Equal(t, 0, doc.LineOf(2))
	assert.Equal(t, 1, doc.LineOf(3))
	assert.Equal(t, 2, doc.LineOf(len(doc.Text)))
	assert.Equal(t, 2, doc.LineOf(1000))
	assert.Equal(t, 0, doc.LineOf(-4))
}

func TestPositionCountsUTF16Units(t *testing.T) {
	text := "{\"t\": \"é😀\", \"x\": 1}"
	doc := New("file:///u.mist", "mist", 1, text)

	x := len("{\"t\": \"é😀\", ")
	pos := doc.PositionAt(x)
	assert.Equal(t, protocol.Position{Line: 0, Character: uint32(7 + 1 + 2 + 3)}, pos)
	assert.Equal(t, x, doc.OffsetAt(pos))
}

func TestOffsetRoundTripsAcrossLines(t *testing.T) {
	text := "{\n  \"layout\": {\n    \"type\": \"text\"\n  }\n}\n"
	doc := New("file:///r.mist", "mist", 1, text)

	for offset := 0; offset <= len(text); offset++ {
		assert.Equal(t, offset, doc.OffsetAt(doc.PositionAt(offset)), "offset %d", offset)
	}
	assert.Equal(t, len(text), doc.OffsetAt(protocol.Position{Line: 99}))
	assert.Equal(t, 1, doc.OffsetAt(protocol.Position{Line: 0, Character: 50}))
}

func TestRangeOf(t *testing.T) {
	doc := New("file:///r.mist", "mist", 1, "{\n  \"type\": \"text\"\n}")
	rng := doc.RangeOf(4, 6)
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, rng.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 8}, rng.End)
}

func TestStoreTracksOpenDocuments(t *testing.T) {
	store, err := NewStore("mist", 0, nil)
	require.NoError(t, err)

	_, ok := store.ActiveDocument()
	assert.False(t, ok)

	a := New("file:///a.mist", "mist", 1, `{}`)
	b := New("file:///b.json", "json", 1, `[]`)
	store.Open(a)
	store.Open(b)

	active, ok := store.ActiveDocument()
	require.True(t, ok)
	assert.Same(t, a, active)

	store.SetActive(b.URI)
	active, _ = store.ActiveDocument()
	assert.Same(t, b, active)
	assert.False(t, store.IsMist(active))
	assert.True(t, store.IsMist(a))

	store.Close(b.URI)
	active, _ = store.ActiveDocument()
	assert.Same(t, a, active)
	assert.Equal(t, []*Document{a}, store.Documents())

	_, err = store.Update(b.URI, 2, `{}`)
	assert.Error(t, err)
}

func TestStoreFallsBackToFirstOpenMistDocument(t *testing.T) {
	store, err := NewStore("mist", 0, nil)
	require.NoError(t, err)

	x := New("file:///x.json", "json", 1, `{}`)
	a := New("file:///a.mist", "mist", 1, `{}`)
	b := New("file:///b.mist", "mist", 1, `{}`)
	store.Open(x)
	_, ok := store.ActiveDocument()
	assert.False(t, ok)

	store.Open(a)
	store.Open(b)
	store.SetActive(b.URI)
	store.Close(b.URI)

	active, ok := store.ActiveDocument()
	require.True(t, ok)
	assert.Same(t, a, active)

	store.SetActive(x.URI)
	active, _ = store.ActiveDocument()
	assert.Same(t, x, active)
}

func TestStoreReparsesOnUpdate(t *testing.T) {
	var reports []int32
	sink := SinkFunc(func(doc *Document, issues []jsonc.Issue) {
		reports = append(reports, doc.Version)
	})
	store, err := NewStore("mist", 4, sink)
	require.NoError(t, err)

	doc := New("file:///a.mist", "mist", 1, `{"type": "text"}`)
	store.Open(doc)

	first := store.ResolveRoot(doc.URI)
	require.NotNil(t, first)
	assert.Same(t, first, store.ResolveRoot(doc.URI))
	assert.Equal(t, []int32{1}, reports)

	updated, err := store.Update(doc.URI, 2, `{"type": "image"}`)
	require.NoError(t, err)
	assert.Equal(t, int32(2), updated.Version)

	second := store.ResolveRoot(doc.URI)
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, []int32{1, 2}, reports)

	store.Close(doc.URI)
	assert.Nil(t, store.ResolveRoot(doc.URI))
	assert.Empty(t, store.cache.Keys())
}

func TestStoreReportsParseIssues(t *testing.T) {
	var got []jsonc.Issue
	store, err := NewStore("mist", 0, SinkFunc(func(_ *Document, issues []jsonc.Issue) {
		got = issues
	}))
	require.NoError(t, err)

	doc := New("file:///bad.mist", "mist", 1, `{"type": }`)
	store.Open(doc)
	store.ResolveRoot(doc.URI)
	assert.NotEmpty(t, got)
}
