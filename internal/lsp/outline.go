package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"
	slogctx "github.com/veqryn/slog-context"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/outline"
)

// Item is one outline node as sent to clients. Offset is the node's byte
// offset in the document and addresses it in follow-up requests.
type Item struct {
	Offset int `json:"offset"`
	outline.Entry
	Command *protocol.Command `json:"command,omitempty"`
}

// NodeParams addresses an outline node by byte offset.
type NodeParams struct {
	Offset int `json:"offset"`
}

// OutlineChange is the payload of MethodOutlineDidChange.
type OutlineChange struct {
	URI     protocol.DocumentURI `json:"uri,omitempty"`
	Version int32                `json:"version,omitempty"`
	State   string               `json:"state"`
}

type selectorFunc func(uri protocol.DocumentURI, rng protocol.Range) error

func (f selectorFunc) Select(uri protocol.DocumentURI, rng protocol.Range) error {
	return f(uri, rng)
}

func (s *Server) item(node *jsonc.Node) Item {
	entry := s.outline.Entry(node)
	return Item{
		Offset: node.Offset,
		Entry:  entry,
		Command: &protocol.Command{
			Title:     "Select node",
			Command:   CommandOpenNodeSelection,
			Arguments: []interface{}{entry.Range},
		},
	}
}

func (s *Server) items(nodes []*jsonc.Node) []Item {
	items := make([]Item, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, s.item(node))
	}
	return items
}

func (s *Server) outlineRoots() []Item {
	return s.items(s.outline.Roots())
}

func (s *Server) outlineChildren(req *jsonrpc2.Request) ([]Item, error) {
	node, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	return s.items(s.outline.Children(node)), nil
}

// outlineParent answers null for roots.
func (s *Server) outlineParent(req *jsonrpc2.Request) (*Item, error) {
	node, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	owner := s.outline.Owner(node)
	if owner == nil {
		return nil, nil
	}
	item := s.item(owner)
	return &item, nil
}

func (s *Server) outlineItem(req *jsonrpc2.Request) (*Item, error) {
	node, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	item := s.item(node)
	return &item, nil
}

func (s *Server) lookup(req *jsonrpc2.Request) (*jsonc.Node, error) {
	var params NodeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	node := s.outline.Find(params.Offset)
	if node == nil {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("no outline node at offset %d", params.Offset),
		}
	}
	return node, nil
}

func (s *Server) executeCommand(params protocol.ExecuteCommandParams) (interface{}, error) {
	if params.Command != CommandOpenNodeSelection {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "unknown command: " + params.Command}
	}
	if len(params.Arguments) != 1 {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: CommandOpenNodeSelection + " takes one range argument"}
	}
	// Arguments arrive as generic JSON values.
	raw, err := json.Marshal(params.Arguments[0])
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	var rng protocol.Range
	if err := json.Unmarshal(raw, &rng); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil, s.outline.Select(rng)
}

// showSelection asks the client to reveal rng. The request is sent from
// its own goroutine: handlers run on the connection's read loop, which
// must stay free to receive the response.
func (s *Server) showSelection(uri protocol.DocumentURI, rng protocol.Range) error {
	ctx, conn := s.client()
	if conn == nil {
		return nil
	}
	params := &protocol.ShowDocumentParams{
		URI:       protocol.URI(uri),
		TakeFocus: true,
		Selection: &rng,
	}
	go func() {
		var result protocol.ShowDocumentResult
		if err := conn.Call(ctx, "window/showDocument", params, &result); err != nil {
			slogctx.Warn(ctx, "Show document failed", "uri", uri, "error", err)
			return
		}
		if !result.Success {
			slogctx.Debug(ctx, "Client declined to show document", "uri", uri)
		}
	}()
	return nil
}

func (s *Server) notifyOutlineChange() {
	ctx, conn := s.client()
	if conn == nil {
		return
	}
	change := OutlineChange{State: s.outline.State().String()}
	if doc := s.outline.Document(); doc != nil {
		change.URI = doc.URI
		change.Version = doc.Version
	}
	if err := conn.Notify(ctx, MethodOutlineDidChange, &change); err != nil {
		slogctx.Warn(ctx, "Outline notification failed", "error", err)
	}
}
