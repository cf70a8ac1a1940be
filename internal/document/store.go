package document

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"

	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/jsonc"
)

const DefaultCacheSize = 64

// DiagnosticSink receives the parse issues of a document each time it is
// parsed afresh.
type DiagnosticSink interface {
	Report(doc *Document, issues []jsonc.Issue)
}

// SinkFunc adapts a function to DiagnosticSink.
type SinkFunc func(doc *Document, issues []jsonc.Issue)

func (f SinkFunc) Report(doc *Document, issues []jsonc.Issue) {
	f(doc, issues)
}

// Store tracks open documents and the active one, and resolves parsed
// roots. Parsed trees are cached per document snapshot, so an edit always
// yields a fresh tree. Store is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	languageID string
	documents  map[protocol.DocumentURI]*Document
	order      []protocol.DocumentURI
	active     protocol.DocumentURI

	parser *jsonc.Parser
	cache  *lru.Cache[string, *jsonc.Result]
	sink   DiagnosticSink
}

// NewStore creates a store recognizing documents with languageID. A nil
// sink discards issues.
func NewStore(languageID string, cacheSize int, sink DiagnosticSink) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *jsonc.Result](cacheSize)
	if err != nil {
		return nil, errors.Errorf("failed to create parse cache: %w", err)
	}
	return &Store{
		languageID: languageID,
		documents:  make(map[protocol.DocumentURI]*Document),
		parser:     jsonc.NewParser(),
		cache:      cache,
		sink:       sink,
	}, nil
}

func (s *Store) LanguageID() string {
	return s.languageID
}

// IsMist reports whether doc is of the recognized language.
func (s *Store) IsMist(doc *Document) bool {
	return doc != nil && doc.LanguageID == s.languageID
}

// Open registers doc, replacing any earlier snapshot with the same URI.
func (s *Store) Open(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.URI]; !ok {
		s.order = append(s.order, doc.URI)
	}
	s.documents[doc.URI] = doc
}

// Update replaces the text of an open document.
func (s *Store) Update(uri protocol.DocumentURI, version int32, text string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.documents[uri]
	if !ok {
		return nil, errors.Errorf("document %s is not open", uri)
	}
	doc := New(uri, prev.LanguageID, version, text)
	s.documents[uri] = doc
	return doc, nil
}

// Close forgets a document and its cached trees.
func (s *Store) Close(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
	for i, candidate := range s.order {
		if candidate == uri {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == uri {
		s.active = ""
	}
	prefix := string(uri) + "@"
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
		}
	}
}

func (s *Store) Get(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[uri]
	return doc, ok
}

// Documents returns open documents in the order they were opened.
func (s *Store) Documents() []*Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Document, 0, len(s.order))
	for _, uri := range s.order {
		out = append(out, s.documents[uri])
	}
	return out
}

func (s *Store) SetActive(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = uri
}

// ActiveDocument returns the active document, falling back to the first
// open mist document when none is active.
func (s *Store) ActiveDocument() (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[s.active]; ok {
		return doc, true
	}
	for _, uri := range s.order {
		if doc := s.documents[uri]; s.IsMist(doc) {
			return doc, true
		}
	}
	return nil, false
}

// ResolveRoot returns the parsed root of an open document, nil when the
// document is unknown or holds no JSON value.
func (s *Store) ResolveRoot(uri protocol.DocumentURI) *jsonc.Node {
	doc, ok := s.Get(uri)
	if !ok {
		return nil
	}
	return s.Parse(doc).Root
}

// Parse returns the tree for a document snapshot, parsing it on first use.
func (s *Store) Parse(doc *Document) *jsonc.Result {
	key := cacheKey(doc)
	if res, ok := s.cache.Get(key); ok {
		return res
	}

	res, err := s.parser.Parse(context.Background(), []byte(doc.Text))
	if err != nil {
		res = &jsonc.Result{Issues: []jsonc.Issue{{Severity: jsonc.SeverityError, Message: err.Error()}}}
	}
	s.cache.Add(key, res)
	if s.sink != nil {
		s.sink.Report(doc, res.Issues)
	}
	return res
}

func cacheKey(doc *Document) string {
	return fmt.Sprintf("%s@%d#%s", doc.URI, doc.Version, fileutil.HashBytes([]byte(doc.Text)))
}
