package jsonc

import "strconv"

// NodeType is the syntactic kind of a CST node.
type NodeType string

const (
	TypeObject   NodeType = "object"
	TypeArray    NodeType = "array"
	TypeString   NodeType = "string"
	TypeNumber   NodeType = "number"
	TypeBoolean  NodeType = "boolean"
	TypeNull     NodeType = "null"
	TypeProperty NodeType = "property"
)

// Node is one element of the concrete syntax tree. Object children are
// property nodes whose own children are [key, value]; array children are
// the elements. Parent links point at the enclosing node, so the parent
// of an object member value is the property pair, not the object.
type Node struct {
	Type     NodeType
	Value    any
	Offset   int
	Length   int
	Children []*Node
	Parent   *Node
}

// End returns the byte offset just past the node.
func (n *Node) End() int {
	if n == nil {
		return 0
	}
	return n.Offset + n.Length
}

// Key returns the key text of a property node.
func (n *Node) Key() (string, bool) {
	if n == nil || n.Type != TypeProperty || len(n.Children) == 0 {
		return "", false
	}
	key, ok := n.Children[0].Value.(string)
	return key, ok
}

// KeyNode returns the key node of a property pair.
func (n *Node) KeyNode() *Node {
	if n == nil || n.Type != TypeProperty || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// ValueNode returns the value node of a property pair, nil when the pair
// is incomplete.
func (n *Node) ValueNode() *Node {
	if n == nil || n.Type != TypeProperty || len(n.Children) < 2 {
		return nil
	}
	return n.Children[1]
}

// Text renders a scalar value the way it reads in a description. Objects,
// arrays and null render as "".
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	switch v := n.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}
