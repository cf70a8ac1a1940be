package jsonc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"gitlab.com/tozd/go/errors"
)

// Severity levels for parse issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is a non-fatal problem found while building the tree. The tree is
// still returned; issues are only reported.
type Issue struct {
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at %d: %s", i.Severity, i.Offset, i.Message)
}

// Result is the outcome of parsing one document. Root is nil only when the
// text holds no JSON value at all.
type Result struct {
	Root   *Node
	Issues []Issue
}

// Parser builds JSON-with-comments trees with the tree-sitter javascript
// grammar. The document is parsed as a parenthesized expression so that a
// top-level object is not mistaken for a block statement. A Parser is safe
// for concurrent use.
type Parser struct {
	mu sync.Mutex
	ts *sitter.Parser
}

// NewParser creates a new JSONC parser
func NewParser() *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(javascript.GetLanguage())
	return &Parser{ts: ts}
}

// wrapOffset is the length of the "(" prepended before parsing.
const wrapOffset = 1

func (p *Parser) Parse(ctx context.Context, content []byte) (*Result, error) {
	src := make([]byte, 0, len(content)+3)
	src = append(src, '(')
	src = append(src, content...)
	src = append(src, '\n', ')')

	p.mu.Lock()
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	p.mu.Unlock()
	if err != nil {
		return nil, errors.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	b := &builder{src: src, size: len(content)}
	root := tree.RootNode()
	if value := findValue(root); value != nil {
		b.result.Root = b.lower(value, nil)
	}
	b.collectSyntaxIssues(root)
	if b.result.Root == nil && len(b.result.Issues) == 0 {
		b.issue(0, 0, SeverityError, "document contains no JSON value")
	}

	sort.SliceStable(b.result.Issues, func(i, j int) bool {
		return b.result.Issues[i].Offset < b.result.Issues[j].Offset
	})
	return &b.result, nil
}

// Parse parses content with a throwaway parser.
func Parse(content []byte) *Result {
	res, err := NewParser().Parse(context.Background(), content)
	if err != nil {
		return &Result{Issues: []Issue{{Severity: SeverityError, Message: err.Error()}}}
	}
	return res
}

type builder struct {
	src    []byte
	size   int
	result Result
}

var valueTypes = map[string]bool{
	"object":           true,
	"array":            true,
	"string":           true,
	"number":           true,
	"true":             true,
	"false":            true,
	"null":             true,
	"unary_expression": true,
}

// findValue returns the outermost JSON-looking node, descending through
// statement and parenthesis wrappers and through error nodes.
func findValue(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if valueTypes[node.Type()] {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findValue(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func (b *builder) span(node *sitter.Node) (int, int) {
	start := int(node.StartByte()) - wrapOffset
	end := int(node.EndByte()) - wrapOffset
	if start < 0 {
		start = 0
	}
	if start > b.size {
		start = b.size
	}
	if end > b.size {
		end = b.size
	}
	if end < start {
		end = start
	}
	return start, end - start
}

func (b *builder) newNode(node *sitter.Node, typ NodeType, parent *Node) *Node {
	offset, length := b.span(node)
	return &Node{Type: typ, Offset: offset, Length: length, Parent: parent}
}

func (b *builder) issue(offset, length int, severity, message string) {
	b.result.Issues = append(b.result.Issues, Issue{
		Offset:   offset,
		Length:   length,
		Severity: severity,
		Message:  message,
	})
}

func (b *builder) unsupported(node *sitter.Node) {
	offset, length := b.span(node)
	b.issue(offset, length, SeverityWarning, fmt.Sprintf("unsupported value %q", node.Type()))
}

func (b *builder) lower(node *sitter.Node, parent *Node) *Node {
	switch node.Type() {
	case "object":
		return b.lowerObject(node, parent)
	case "array":
		return b.lowerArray(node, parent)
	case "string":
		n := b.newNode(node, TypeString, parent)
		raw := node.Content(b.src)
		if !strings.HasPrefix(raw, `"`) {
			b.issue(n.Offset, n.Length, SeverityError, "strings must use double quotes")
		}
		n.Value = decodeString(raw)
		return n
	case "number":
		return b.lowerNumber(node, node.Content(b.src), parent)
	case "unary_expression":
		text := strings.Join(strings.Fields(node.Content(b.src)), "")
		arg := node.ChildByFieldName("argument")
		if arg == nil || arg.Type() != "number" || text == "" || (text[0] != '-' && text[0] != '+') {
			b.unsupported(node)
			return nil
		}
		if text[0] == '+' {
			offset, length := b.span(node)
			b.issue(offset, length, SeverityError, "numbers must not start with +")
			text = text[1:]
		}
		return b.lowerNumber(node, text, parent)
	case "true", "false":
		n := b.newNode(node, TypeBoolean, parent)
		n.Value = node.Type() == "true"
		return n
	case "null":
		return b.newNode(node, TypeNull, parent)
	case "parenthesized_expression":
		if inner := findValue(node); inner != nil && inner != node {
			return b.lower(inner, parent)
		}
	}
	b.unsupported(node)
	return nil
}

func (b *builder) lowerObject(node *sitter.Node, parent *Node) *Node {
	obj := b.newNode(node, TypeObject, parent)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "pair":
			if prop := b.lowerPair(child, obj); prop != nil {
				obj.Children = append(obj.Children, prop)
			}
		case "comment", "ERROR":
			// comments carry no structure; errors are collected separately
		default:
			b.unsupported(child)
		}
	}
	return obj
}

func (b *builder) lowerPair(node *sitter.Node, parent *Node) *Node {
	keyNode := node.ChildByFieldName("key")
	if keyNode == nil {
		return nil
	}
	prop := b.newNode(node, TypeProperty, parent)

	key := b.newNode(keyNode, TypeString, prop)
	raw := keyNode.Content(b.src)
	if keyNode.Type() == "string" {
		key.Value = decodeString(raw)
	} else {
		key.Value = raw
	}
	if keyNode.Type() != "string" || !strings.HasPrefix(raw, `"`) {
		b.issue(key.Offset, key.Length, SeverityError, "property keys must be double-quoted strings")
	}
	prop.Children = append(prop.Children, key)

	if valueNode := node.ChildByFieldName("value"); valueNode != nil && !valueNode.IsMissing() {
		if value := b.lower(valueNode, prop); value != nil {
			prop.Children = append(prop.Children, value)
		}
	}
	return prop
}

func (b *builder) lowerArray(node *sitter.Node, parent *Node) *Node {
	arr := b.newNode(node, TypeArray, parent)
	b.checkArrayHoles(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "comment" || child.Type() == "ERROR" {
			continue
		}
		if element := b.lower(child, arr); element != nil {
			arr.Children = append(arr.Children, element)
		}
	}
	return arr
}

// checkArrayHoles reports commas that follow "[" or another comma with no
// value in between, such as [1,,2].
func (b *builder) checkArrayHoles(node *sitter.Node) {
	expectValue := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "comment":
		case "[":
			expectValue = true
		case "]":
			expectValue = false
		case ",":
			if expectValue {
				offset, length := b.span(child)
				b.issue(offset, length, SeverityError, "value expected before comma")
			}
			expectValue = true
		default:
			expectValue = false
		}
	}
}

func (b *builder) lowerNumber(node *sitter.Node, text string, parent *Node) *Node {
	n := b.newNode(node, TypeNumber, parent)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		b.issue(n.Offset, n.Length, SeverityWarning, fmt.Sprintf("invalid number %q", text))
		value = 0
	}
	n.Value = value
	return n
}

// collectSyntaxIssues records every ERROR and missing node in the tree.
func (b *builder) collectSyntaxIssues(node *sitter.Node) {
	if node == nil {
		return
	}
	if node.IsMissing() {
		offset, _ := b.span(node)
		b.issue(offset, 0, SeverityError, fmt.Sprintf("missing %q", node.Type()))
		return
	}
	if node.Type() == "ERROR" {
		offset, length := b.span(node)
		b.issue(offset, length, SeverityError, "unexpected syntax")
		return
	}
	if !node.HasError() {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		b.collectSyntaxIssues(node.Child(i))
	}
}

func decodeString(raw string) string {
	if strings.HasPrefix(raw, `"`) {
		var decoded string
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			return decoded
		}
	}
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return raw
}
