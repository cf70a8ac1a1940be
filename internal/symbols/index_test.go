package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/jsonc"
)

func index(t *testing.T, src string) ([]Symbol, *document.Document) {
	t.Helper()
	doc := document.New("file:///t.mist", "mist", 1, src)
	res := jsonc.Parse([]byte(src))
	require.NotNil(t, res.Root)
	return IndexDocument(res.Root, doc), doc
}

func TestIndexDocumentOrder(t *testing.T) {
	syms, _ := index(t, `{"state": {"a": 1, "b": 2}, "layout": {"type": "stack", "children": []}}`)

	type row struct {
		name      string
		kind      protocol.SymbolKind
		container string
	}
	var got []row
	for _, s := range syms {
		got = append(got, row{s.Name, s.Kind, s.Container})
	}
	assert.Equal(t, []row{
		{"state", protocol.SymbolKindProperty, "<template>"},
		{"\ta", protocol.SymbolKindField, "<state>"},
		{"\tb", protocol.SymbolKindField, "<state>"},
		{"layout", protocol.SymbolKindProperty, "<template>"},
		{"stack", protocol.SymbolKindObject, "<layout>"},
	}, got)
}

func TestIndexDocumentLocations(t *testing.T) {
	src := "{\n  \"styles\": {\"title\": {}},\n  \"layout\": {\n    \"style\": {},\n    \"type\": \"text\"\n  }\n}"
	syms, doc := index(t, src)
	require.Len(t, syms, 4)

	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, syms[0].Position)
	assert.Equal(t, protocol.Position{Line: 1, Character: 13}, syms[1].Position)
	assert.Equal(t, "\ttitle", syms[1].Name)
	assert.Equal(t, "<styles>", syms[1].Container)

	text := syms[3]
	assert.Equal(t, "text", text.Name)
	assert.Equal(t, protocol.Position{Line: 4, Character: 4}, text.Position)
	assert.Equal(t, doc.URI, text.URI)

	info := text.Information()
	assert.Equal(t, "text", info.Name)
	assert.Equal(t, protocol.SymbolKindObject, info.Kind)
	assert.Equal(t, doc.URI, info.Location.URI)
	assert.Equal(t, info.Location.Range.Start, info.Location.Range.End)
}

func TestIndexNodeNesting(t *testing.T) {
	src := `{"layout": {
  "type": "stack",
  "style": {"wrap": "wrap", "background-color": "#fff"},
  "children": [
    {"type": "text", "style": {"text": "hi"}}, // hello
    {"children": [{"style": {}}]}
  ]
}}`
	syms, _ := index(t, src)
	require.Len(t, syms, 5)

	layout := syms[1:]
	assert.Equal(t, "stack", layout[0].Name)
	assert.Equal(t, "[wrap] - #fff", layout[0].Container)
	assert.Equal(t, "\ttext", layout[1].Name)
	assert.Equal(t, `"hi" // hello`, layout[1].Container)
	assert.Equal(t, "\tstack", layout[2].Name)
	assert.Equal(t, "\t\tnode", layout[3].Name)

	assert.Equal(t, []int{0, 1, 1, 2}, []int{layout[0].Depth(), layout[1].Depth(), layout[2].Depth(), layout[3].Depth()})
	assert.Equal(t, "node", layout[3].Title())
}

func TestIndexNodeOffsetFallbacks(t *testing.T) {
	src := `{"layout": {"children": [{}, {"style": {}}]}}`
	syms, _ := index(t, src)
	require.Len(t, syms, 4)

	assert.Equal(t, len(`{"layout": {`), syms[1].Offset)
	assert.Equal(t, len(`{"layout": {"children": [`), syms[2].Offset)
	assert.Equal(t, len(`{"layout": {"children": [{}, {`), syms[3].Offset)
}

func TestIndexToleratesMalformedLayout(t *testing.T) {
	syms, _ := index(t, `{"layout": "oops", "data": 3}`)
	require.Len(t, syms, 3)
	assert.Equal(t, "layout", syms[0].Name)
	assert.Equal(t, "unknown", syms[1].Name)
	assert.Equal(t, protocol.SymbolKindObject, syms[1].Kind)
	assert.Equal(t, "oops", syms[1].Container)
	assert.Equal(t, "data", syms[2].Name)
}

func TestIndexToleratesParseErrors(t *testing.T) {
	src := `{"state": {"a": 1,}, "layout": {"type": "text", "children": [}`
	res := jsonc.Parse([]byte(src))
	require.NotEmpty(t, res.Issues)

	assert.NotPanics(t, func() {
		IndexDocument(res.Root, document.New("file:///bad.mist", "mist", 1, src))
	})
}

func TestIndexDocumentRequiresObjectRoot(t *testing.T) {
	assert.Nil(t, IndexDocument(nil, nil))
	res := jsonc.Parse([]byte(`[1, 2]`))
	assert.Nil(t, IndexDocument(res.Root, nil))
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "property", KindName(protocol.SymbolKindProperty))
	assert.Equal(t, "field", KindName(protocol.SymbolKindField))
	assert.Equal(t, "object", KindName(protocol.SymbolKindObject))
}
