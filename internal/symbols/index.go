// Package symbols flattens a mist template into an ordered list of named
// locations for document and workspace symbol queries.
package symbols

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/outline"
	"github.com/mistkit/mistlens/internal/semantics"
)

const (
	indentMarker      = "\t"
	templateContainer = "<template>"
	layoutContainer   = "<layout>"
)

// Symbol is one named location in a document. Name carries one leading
// indent marker per nesting level.
type Symbol struct {
	Name      string               `json:"name"`
	Kind      protocol.SymbolKind  `json:"kind"`
	Container string               `json:"container"`
	URI       protocol.DocumentURI `json:"uri"`
	Offset    int                  `json:"offset"`
	Position  protocol.Position    `json:"position"`
}

// Depth returns the nesting level encoded in the name.
func (s Symbol) Depth() int {
	return len(s.Name) - len(strings.TrimLeft(s.Name, indentMarker))
}

// Title returns the name without indent markers.
func (s Symbol) Title() string {
	return strings.TrimLeft(s.Name, indentMarker)
}

func (s Symbol) Information() protocol.SymbolInformation {
	return protocol.SymbolInformation{
		Name:          s.Name,
		Kind:          s.Kind,
		ContainerName: s.Container,
		Location: protocol.Location{
			URI:   s.URI,
			Range: protocol.Range{Start: s.Position, End: s.Position},
		},
	}
}

// KindName is the lowercase protocol name of a symbol kind.
func KindName(kind protocol.SymbolKind) string {
	switch kind {
	case protocol.SymbolKindProperty:
		return "property"
	case protocol.SymbolKindField:
		return "field"
	case protocol.SymbolKindObject:
		return "object"
	default:
		return "symbol"
	}
}

// IndexDocument lists the symbols of a template root in document order:
// every top-level property, the entries of the state, styles and data
// tables, and the layout tree. A root that is not an object yields nothing.
func IndexDocument(root *jsonc.Node, doc *document.Document) []Symbol {
	if root == nil || root.Type != jsonc.TypeObject {
		return nil
	}

	var out []Symbol
	for _, prop := range root.Children {
		key, ok := prop.Key()
		if !ok {
			continue
		}
		out = append(out, newSymbol(doc, key, protocol.SymbolKindProperty, templateContainer, prop.KeyNode().Offset))

		value := prop.ValueNode()
		switch key {
		case "state", "styles", "data":
			out = append(out, indexTable(value, key, doc)...)
		case "layout":
			if value != nil {
				out = append(out, IndexNode(value, doc, 0)...)
			}
		}
	}
	return out
}

func indexTable(table *jsonc.Node, key string, doc *document.Document) []Symbol {
	if table == nil {
		return nil
	}
	container := "<" + key + ">"
	var out []Symbol
	for _, entry := range table.Children {
		name, ok := entry.Key()
		if !ok {
			continue
		}
		out = append(out, newSymbol(doc, indentMarker+name, protocol.SymbolKindField, container, entry.KeyNode().Offset))
	}
	return out
}

// IndexNode lists node and its nested layout nodes depth first. The
// container is the node's description and comment, or "<layout>" when it
// has neither.
func IndexNode(node *jsonc.Node, doc *document.Document, depth int) []Symbol {
	if node == nil {
		return nil
	}

	var text semantics.Lines
	if doc != nil {
		text = doc
	}
	container := strings.TrimSpace(semantics.Describe(node) + " " + semantics.Comment(node, text))
	if container == "" {
		container = layoutContainer
	}

	name := strings.Repeat(indentMarker, depth) + semantics.Classify(node).String()
	out := []Symbol{newSymbol(doc, name, protocol.SymbolKindObject, container, symbolOffset(node))}
	for _, child := range outline.Children(node) {
		out = append(out, IndexNode(child, doc, depth+1)...)
	}
	return out
}

// symbolOffset points at the type key when there is one, else at the first
// member, else at the node itself.
func symbolOffset(node *jsonc.Node) int {
	if node.Type != jsonc.TypeObject {
		return node.Offset
	}
	if pair := semantics.PropertyPair(node, "type"); pair != nil {
		return pair.KeyNode().Offset
	}
	if len(node.Children) > 0 {
		return node.Children[0].Offset
	}
	return node.Offset
}

func newSymbol(doc *document.Document, name string, kind protocol.SymbolKind, container string, offset int) Symbol {
	sym := Symbol{Name: name, Kind: kind, Container: container, Offset: offset}
	if doc != nil {
		sym.URI = doc.URI
		sym.Position = doc.PositionAt(offset)
	}
	return sym
}
