// Package lsp serves mist outlines and symbols over the Language Server
// Protocol on a JSON-RPC 2.0 stream.
package lsp

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/outline"
)

const (
	ServerName = "mistlens"

	// CommandOpenNodeSelection selects the range passed as its only
	// argument in the client editor.
	CommandOpenNodeSelection = "mist.openNodeSelection"

	MethodOutlineRoots     = "mist/outline/roots"
	MethodOutlineChildren  = "mist/outline/children"
	MethodOutlineParent    = "mist/outline/parent"
	MethodOutlineItem      = "mist/outline/item"
	MethodOutlineDidChange = "mist/outline/didChange"
)

var errExitWithoutShutdown = errors.Base("client sent exit before shutdown")

type Options struct {
	LanguageID string
	CacheSize  int
	Version    string
}

// Server answers one client. Requests are handled one at a time in the
// order they arrive, which is what the outline model requires.
type Server struct {
	opts    Options
	store   *document.Store
	outline *outline.Model

	mu       sync.Mutex
	conn     *jsonrpc2.Conn
	ctx      context.Context
	shutdown bool
	exited   bool
}

func NewServer(opts Options) (*Server, error) {
	if opts.LanguageID == "" {
		opts.LanguageID = "mist"
	}
	s := &Server{opts: opts, ctx: context.Background()}
	store, err := document.NewStore(opts.LanguageID, opts.CacheSize, document.SinkFunc(s.logIssues))
	if err != nil {
		return nil, err
	}
	s.store = store
	s.outline = outline.New(opts.LanguageID,
		outline.WithHost(store),
		outline.WithResolver(store),
		outline.WithSelector(selectorFunc(s.showSelection)),
	)
	s.outline.OnChange(s.notifyOutlineChange)
	return s, nil
}

// Store exposes the documents the client has opened.
func (s *Server) Store() *document.Store {
	return s.store
}

// Serve runs the protocol on rwc until the client disconnects, sends exit
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	slogctx.Info(ctx, "Language server started", "language", s.opts.LanguageID)

	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exited && !s.shutdown {
		return errExitWithoutShutdown
	}
	slogctx.Info(ctx, "Language server stopped")
	return nil
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// Stdio is the stream a client talks to when it spawns the server.
func Stdio() io.ReadWriteCloser {
	return stdio{}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	s.mu.Lock()
	s.conn = conn
	shutdown := s.shutdown
	s.mu.Unlock()

	slogctx.Debug(ctx, "Handling message", "method", req.Method, "notification", req.Notif)

	if shutdown && req.Method != "exit" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}

	switch req.Method {
	case "initialize":
		return s.initialize()
	case "initialized", "$/cancelRequest", "$/setTrace", "workspace/didChangeConfiguration":
		return nil, nil
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil
	case "exit":
		s.mu.Lock()
		s.exited = true
		s.mu.Unlock()
		return nil, conn.Close()

	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.didOpen(ctx, conn, params)
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.didChange(ctx, conn, params)
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.didClose(ctx, conn, params)

	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return s.documentSymbol(params), nil
	case "workspace/symbol":
		var params protocol.WorkspaceSymbolParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return s.workspaceSymbol(params), nil
	case "workspace/executeCommand":
		var params protocol.ExecuteCommandParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return s.executeCommand(params)

	case MethodOutlineRoots:
		return s.outlineRoots(), nil
	case MethodOutlineChildren:
		return s.outlineChildren(req)
	case MethodOutlineParent:
		return s.outlineParent(req)
	case MethodOutlineItem:
		return s.outlineItem(req)

	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
	}
}

func (s *Server) initialize() (*protocol.InitializeResult, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{CommandOpenNodeSelection},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: ServerName, Version: s.opts.Version},
	}, nil
}

func (s *Server) didOpen(ctx context.Context, conn *jsonrpc2.Conn, params protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	doc := document.New(item.URI, string(item.LanguageID), item.Version, item.Text)
	s.store.Open(doc)
	if s.store.IsMist(doc) {
		s.store.SetActive(doc.URI)
	}
	return s.reparse(ctx, conn, doc)
}

func (s *Server) didChange(ctx context.Context, conn *jsonrpc2.Conn, params protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// Full sync: the last change carries the whole text.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	doc, err := s.store.Update(params.TextDocument.URI, params.TextDocument.Version, text)
	if err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	if s.store.IsMist(doc) {
		s.store.SetActive(doc.URI)
	}
	return s.reparse(ctx, conn, doc)
}

func (s *Server) didClose(ctx context.Context, conn *jsonrpc2.Conn, params protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc, ok := s.store.Get(uri)
	s.store.Close(uri)
	if ok && s.store.IsMist(doc) {
		if err := s.publish(ctx, conn, uri, nil, nil); err != nil {
			return err
		}
	}
	s.outline.Refresh()
	return nil
}

// reparse publishes the diagnostics of doc and re-derives the outline.
func (s *Server) reparse(ctx context.Context, conn *jsonrpc2.Conn, doc *document.Document) error {
	if s.store.IsMist(doc) {
		res := s.store.Parse(doc)
		if err := s.publish(ctx, conn, doc.URI, doc, res.Issues); err != nil {
			return err
		}
	}
	s.outline.Refresh()
	return nil
}

func (s *Server) publish(ctx context.Context, conn *jsonrpc2.Conn, uri protocol.DocumentURI, doc *document.Document, issues []jsonc.Issue) error {
	diagnostics := make([]protocol.Diagnostic, 0, len(issues))
	for _, issue := range issues {
		severity := protocol.DiagnosticSeverityError
		if issue.Severity == jsonc.SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    doc.RangeOf(issue.Offset, issue.Length),
			Severity: severity,
			Source:   ServerName,
			Message:  issue.Message,
		})
	}
	err := conn.Notify(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	if err != nil {
		return errors.Errorf("failed to publish diagnostics: %w", err)
	}
	return nil
}

func (s *Server) logIssues(doc *document.Document, issues []jsonc.Issue) {
	for _, issue := range issues {
		slogctx.Debug(s.context(), "Parse issue", "uri", doc.URI, "version", doc.Version, "issue", issue.String())
	}
}

func (s *Server) client() (context.Context, *jsonrpc2.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx, s.conn
}

func (s *Server) context() context.Context {
	ctx, _ := s.client()
	return ctx
}

func decodeParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
