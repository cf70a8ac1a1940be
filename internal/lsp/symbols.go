package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/search"
	"github.com/mistkit/mistlens/internal/symbols"
)

const workspaceSymbolLimit = 100

func (s *Server) documentSymbol(params protocol.DocumentSymbolParams) []protocol.SymbolInformation {
	out := make([]protocol.SymbolInformation, 0)
	doc, ok := s.store.Get(params.TextDocument.URI)
	if !ok || !s.store.IsMist(doc) {
		return out
	}
	for _, sym := range symbols.IndexDocument(s.store.Parse(doc).Root, doc) {
		out = append(out, sym.Information())
	}
	return out
}

// workspaceSymbol ranks the symbols of every open mist document. An empty
// query lists them all.
func (s *Server) workspaceSymbol(params protocol.WorkspaceSymbolParams) []protocol.SymbolInformation {
	out := make([]protocol.SymbolInformation, 0)
	byID := make(map[string]symbols.Symbol)
	var sources []search.Source
	for _, doc := range s.store.Documents() {
		if !s.store.IsMist(doc) {
			continue
		}
		path := string(doc.URI)
		syms := symbols.IndexDocument(s.store.Parse(doc).Root, doc)
		for _, sym := range syms {
			if params.Query == "" {
				out = append(out, sym.Information())
				continue
			}
			byID[search.DocumentID(path, sym)] = sym
		}
		sources = append(sources, search.Source{Path: path, Symbols: syms})
	}
	if params.Query == "" {
		return out
	}

	for _, hit := range search.Search(search.Build(sources), params.Query, workspaceSymbolLimit) {
		if sym, ok := byID[hit.ID]; ok {
			out = append(out, sym.Information())
		}
	}
	return out
}
