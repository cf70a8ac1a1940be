// Package outline backs a lazily expanded outline of the layout nodes of
// the active mist document.
//
// A Model is either empty (no document) or tracks one parsed root together
// with the document it came from. The root is re-derived from scratch on
// every Refresh; nothing is patched incrementally. Model does no locking:
// hosts must deliver Refresh, SetRoot and queries one at a time.
package outline

import (
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/semantics"
)

// Host exposes the editor state the model follows.
type Host interface {
	ActiveDocument() (*document.Document, bool)
}

// Resolver returns the parsed root of a document, nil when unresolvable.
type Resolver interface {
	ResolveRoot(uri protocol.DocumentURI) *jsonc.Node
}

// Selector moves the editor selection to a range and reveals it.
type Selector interface {
	Select(uri protocol.DocumentURI, rng protocol.Range) error
}

// State is the model's lifecycle state.
type State int

const (
	NoDocument State = iota
	HasDocument
)

func (s State) String() string {
	if s == HasDocument {
		return "has-document"
	}
	return "no-document"
}

// Entry is the rendered form of one outline node.
type Entry struct {
	Node        *jsonc.Node    `json:"-"`
	Kind        string         `json:"kind"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	IconKey     string         `json:"icon"`
	Expandable  bool           `json:"expandable"`
	Range       protocol.Range `json:"range"`
}

type Model struct {
	languageID string
	host       Host
	resolver   Resolver
	selector   Selector

	root      *jsonc.Node
	doc       *document.Document
	listeners []func()
}

// Option configures a Model.
type Option func(*Model)

func WithHost(host Host) Option {
	return func(m *Model) { m.host = host }
}

func WithResolver(resolver Resolver) Option {
	return func(m *Model) { m.resolver = resolver }
}

func WithSelector(selector Selector) Option {
	return func(m *Model) { m.selector = selector }
}

// New creates an empty model that follows documents of languageID.
func New(languageID string, opts ...Option) *Model {
	m := &Model{languageID: languageID}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnChange registers fn to run after every Refresh.
func (m *Model) OnChange(fn func()) {
	m.listeners = append(m.listeners, fn)
}

// Refresh re-derives the root from the host's active document. It is the
// handler for both "active document changed" and "document changed".
func (m *Model) Refresh() {
	m.Clear()
	if m.host != nil && m.resolver != nil {
		if doc, ok := m.host.ActiveDocument(); ok && doc != nil && doc.LanguageID == m.languageID {
			if root := LayoutRoot(m.resolver.ResolveRoot(doc.URI)); root != nil {
				m.SetRoot(root, doc)
			}
		}
	}
	for _, fn := range m.listeners {
		fn()
	}
}

// SetRoot replaces the tracked root. A nil root or document clears it.
func (m *Model) SetRoot(root *jsonc.Node, doc *document.Document) {
	if root == nil || doc == nil {
		m.Clear()
		return
	}
	m.root = root
	m.doc = doc
}

func (m *Model) Clear() {
	m.root = nil
	m.doc = nil
}

func (m *Model) State() State {
	if m.root == nil {
		return NoDocument
	}
	return HasDocument
}

// Document returns the document the current root was parsed from.
func (m *Model) Document() *document.Document {
	return m.doc
}

// Roots returns the top-level outline nodes: the root alone, or nothing.
func (m *Model) Roots() []*jsonc.Node {
	if m.root == nil {
		return nil
	}
	return []*jsonc.Node{m.root}
}

// LayoutRoot returns the top layout node of a template: the value of its
// "layout" property, or the root itself for a bare node document.
func LayoutRoot(root *jsonc.Node) *jsonc.Node {
	if layout := semantics.Property(root, "layout"); layout != nil {
		return layout
	}
	return root
}

// Children returns the nested layout nodes of node: the elements of its
// "children" property.
func Children(node *jsonc.Node) []*jsonc.Node {
	children := semantics.Property(node, "children")
	if children == nil {
		return nil
	}
	return children.Children
}

func (m *Model) Children(node *jsonc.Node) []*jsonc.Node {
	return Children(node)
}

// Parent skips the property pair between a value and its enclosing object.
func (m *Model) Parent(node *jsonc.Node) *jsonc.Node {
	if node == nil || node.Parent == nil {
		return nil
	}
	return node.Parent.Parent
}

// Entry renders node against the tracked document.
func (m *Model) Entry(node *jsonc.Node) Entry {
	entry := Entry{
		Node:        node,
		Kind:        semantics.Classify(node).String(),
		Description: semantics.Describe(node),
		IconKey:     semantics.IconKey(node),
		Expandable:  len(Children(node)) > 0,
	}
	if m.doc != nil {
		entry.Comment = semantics.Comment(node, m.doc)
		entry.Label = semantics.Label(node, m.doc)
		if node != nil {
			entry.Range = m.doc.RangeOf(node.Offset, node.Length)
		}
	} else {
		entry.Label = semantics.Label(node, nil)
	}
	return entry
}

// Select asks the editor to select rng in the tracked document.
func (m *Model) Select(rng protocol.Range) error {
	if m.selector == nil || m.doc == nil {
		return nil
	}
	return m.selector.Select(m.doc.URI, rng)
}

// Walk visits the outline in pre-order with each node's depth. Returning
// false from fn skips that node's children.
func (m *Model) Walk(fn func(node *jsonc.Node, depth int) bool) {
	for _, root := range m.Roots() {
		walk(root, 0, fn)
	}
}

func walk(node *jsonc.Node, depth int, fn func(*jsonc.Node, int) bool) {
	if !fn(node, depth) {
		return
	}
	for _, child := range Children(node) {
		walk(child, depth+1, fn)
	}
}

// Find returns the outline node that starts at offset, nil when no node of
// the current outline does.
func (m *Model) Find(offset int) *jsonc.Node {
	var found *jsonc.Node
	m.Walk(func(node *jsonc.Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Offset == offset {
			found = node
			return false
		}
		return node.Offset < offset && offset < node.End()
	})
	return found
}

// Owner returns the outline node whose children list holds node. Roots and
// nodes outside the outline have no owner.
func (m *Model) Owner(node *jsonc.Node) *jsonc.Node {
	parent := m.Parent(node)
	if parent != nil && parent.Type == jsonc.TypeProperty {
		parent = parent.Parent
	}
	if parent == nil || m.Find(parent.Offset) != parent {
		return nil
	}
	return parent
}
