// Package semantics recovers mist template meaning from a generic JSON
// tree: which layout component a node is, how to describe it in one line,
// which comment belongs to it and how to label and iconify it. Every
// function here is total over any tree shape; missing structure yields
// empty results, never errors.
package semantics

import (
	"regexp"

	"github.com/mistkit/mistlens/internal/jsonc"
)

// Kind is the classified semantic type of a node. Known kinds are listed
// below; a node whose "type" property names a component this package does
// not know keeps that name as its Kind.
type Kind string

const (
	KindStack     Kind = "stack"
	KindText      Kind = "text"
	KindButton    Kind = "button"
	KindImage     Kind = "image"
	KindScroll    Kind = "scroll"
	KindPaging    Kind = "paging"
	KindIndicator Kind = "indicator"
	KindLine      Kind = "line"
	KindImport    Kind = "import"
	KindExp       Kind = "exp"
	KindNode      Kind = "node"
	KindUnknown   Kind = "unknown"
)

var knownKinds = map[Kind]bool{
	KindStack:     true,
	KindText:      true,
	KindButton:    true,
	KindImage:     true,
	KindScroll:    true,
	KindPaging:    true,
	KindIndicator: true,
	KindLine:      true,
	KindImport:    true,
	KindExp:       true,
	KindNode:      true,
	KindUnknown:   true,
}

// Known reports whether k is one of the built-in kinds.
func (k Kind) Known() bool {
	return knownKinds[k]
}

func (k Kind) String() string {
	if k == "" {
		return string(KindUnknown)
	}
	return string(k)
}

var expPattern = regexp.MustCompile(`^\$\{.*\}$`)

// Classify derives the semantic type of node from its current shape.
func Classify(node *jsonc.Node) Kind {
	if node == nil {
		return KindUnknown
	}
	switch node.Type {
	case jsonc.TypeObject:
		if typeNode := Property(node, "type"); typeNode != nil {
			name, ok := typeNode.Value.(string)
			if !ok || name == "" {
				return KindUnknown
			}
			return Kind(name)
		}
		if Property(node, "import") != nil {
			return KindImport
		}
		if Property(node, "children") != nil {
			return KindStack
		}
		return KindNode
	case jsonc.TypeString:
		if value, ok := node.Value.(string); ok && expPattern.MatchString(value) {
			return KindExp
		}
	}
	return KindUnknown
}

// Property returns the value paired with key in an object node. The first
// pair with a matching key wins. It returns nil for non-objects, missing
// keys and pairs without a value.
func Property(node *jsonc.Node, key string) *jsonc.Node {
	if node == nil || node.Type != jsonc.TypeObject {
		return nil
	}
	for _, prop := range node.Children {
		if name, ok := prop.Key(); ok && name == key {
			return prop.ValueNode()
		}
	}
	return nil
}

// PropertyPair returns the property node (key and value) for key.
func PropertyPair(node *jsonc.Node, key string) *jsonc.Node {
	if node == nil || node.Type != jsonc.TypeObject {
		return nil
	}
	for _, prop := range node.Children {
		if name, ok := prop.Key(); ok && name == key {
			return prop
		}
	}
	return nil
}

// StringValue returns the value of key when it is a string.
func StringValue(node *jsonc.Node, key string) (string, bool) {
	prop := Property(node, key)
	if prop == nil || prop.Type != jsonc.TypeString {
		return "", false
	}
	value, ok := prop.Value.(string)
	return value, ok
}

// stringOr returns the value of key or "" when absent.
func stringOr(node *jsonc.Node, key string) string {
	value, _ := StringValue(node, key)
	return value
}
