package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/symbols"
)

func sampleSources() []Source {
	return []Source{
		{
			Path: "pages/home.mist",
			Symbols: []symbols.Symbol{
				{Name: "layout", Kind: protocol.SymbolKindProperty, Container: "<template>"},
				{Name: "\tbutton", Kind: protocol.SymbolKindObject, Container: `"Checkout"`, Position: protocol.Position{Line: 4}},
				{Name: "\ttext", Kind: protocol.SymbolKindObject, Container: `"Welcome back"`, Position: protocol.Position{Line: 7}},
			},
		},
		{
			Path: "cells/banner.mist",
			Symbols: []symbols.Symbol{
				{Name: "image", Kind: protocol.SymbolKindObject, Container: `"banner.png"`, Position: protocol.Position{Line: 1}},
			},
		},
	}
}

func TestSearchRanksNameAndContainerMatches(t *testing.T) {
	index := Build(sampleSources())
	require.Equal(t, 4, index.DocumentCount)

	results := Search(index, "checkout button", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "pages/home.mist|5|object|button", results[0].ID)
	assert.Equal(t, "button", results[0].Document.Name)
	assert.Equal(t, 5, results[0].Document.Line)

	results = Search(index, "banner", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "cells/banner.mist", results[0].Document.File)
}

func TestSearchTypoFallback(t *testing.T) {
	index := &Index{
		Version:       Version,
		DocumentCount: 1,
		AvgDocLength:  1,
		DocFreq:       map[string]int{},
		Documents: []Document{
			{ID: "id-1", Name: "indicator", Length: 1, Terms: map[string]int{"indicator": 1}},
		},
	}

	results := Search(index, "indicatr", 3)
	require.NotEmpty(t, results)
	assert.Equal(t, "id-1", results[0].ID)
}

func TestSearchDeterministicOrdering(t *testing.T) {
	index := &Index{
		Version:       Version,
		DocumentCount: 2,
		AvgDocLength:  1,
		DocFreq:       map[string]int{"alpha": 2},
		Documents: []Document{
			{ID: "b", Length: 1, Terms: map[string]int{"alpha": 1}},
			{ID: "a", Length: 1, Terms: map[string]int{"alpha": 1}},
		},
	}

	results := Search(index, "alpha", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
}

func TestSearchEmptyInputs(t *testing.T) {
	assert.Nil(t, Search(nil, "x", 1))
	assert.Nil(t, Search(Build(sampleSources()), "  ", 1))
	assert.Empty(t, Build(nil).Documents)
}

func TestWriteAndLoad(t *testing.T) {
	root := t.TempDir()
	index := Build(sampleSources())

	wrote, err := Write(root, index)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = Write(root, index)
	require.NoError(t, err)
	assert.False(t, wrote)

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, index.DocumentCount, loaded.DocumentCount)
	assert.Equal(t, index.Documents[0].ID, loaded.Documents[0].ID)

	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "search index missing")
}
