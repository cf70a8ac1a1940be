// Package workspace finds mist templates on disk and indexes their symbols.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/mistkit/mistlens/internal/document"
	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/ignore"
	"github.com/mistkit/mistlens/internal/jsonc"
	"github.com/mistkit/mistlens/internal/search"
	"github.com/mistkit/mistlens/internal/symbols"
)

// DefaultExtensions are the file suffixes treated as mist templates.
var DefaultExtensions = []string{".mist", ".mist.json"}

// File is one scanned template.
type File struct {
	Path    string               `json:"path"`
	URI     protocol.DocumentURI `json:"uri"`
	Hash    string               `json:"hash"`
	Symbols []symbols.Symbol     `json:"symbols"`
	Issues  []jsonc.Issue        `json:"issues,omitempty"`
}

// Issue is a non-fatal problem met while scanning.
type Issue struct {
	File     string `json:"file"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type Result struct {
	Root   string  `json:"root"`
	Files  []File  `json:"files"`
	Issues []Issue `json:"issues,omitempty"`
}

// Sources adapts the scanned files for the search index.
func (r *Result) Sources() []search.Source {
	sources := make([]search.Source, 0, len(r.Files))
	for _, f := range r.Files {
		sources = append(sources, search.Source{Path: f.Path, Symbols: f.Symbols})
	}
	return sources
}

// Options controls a scan. Zero values fall back to defaults.
type Options struct {
	LanguageID string
	Extensions []string
	Ignore     *ignore.Matcher
	// Progress is called after each parsed file with its path and the
	// running count.
	Progress func(path string, count int)
}

// Scanner parses templates with one reused parser.
type Scanner struct {
	opts   Options
	parser *jsonc.Parser
}

func NewScanner(opts Options) *Scanner {
	if opts.LanguageID == "" {
		opts.LanguageID = "mist"
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &Scanner{opts: opts, parser: jsonc.NewParser()}
}

// IsTemplate reports whether name carries one of the template extensions.
func IsTemplate(name string, extensions []string) bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Load reads one template from disk.
func Load(path, languageID string) (*document.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("failed to resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Errorf("failed to read %s: %w", path, err)
	}
	return document.New(protocol.DocumentURI(uri.File(abs)), languageID, 1, string(data)), nil
}

// Index parses doc and lists its symbols. Parse issues are returned next to
// the symbols; indexing always runs on the tree that was recovered.
func (s *Scanner) Index(ctx context.Context, doc *document.Document) ([]symbols.Symbol, []jsonc.Issue, error) {
	res, err := s.parser.Parse(ctx, []byte(doc.Text))
	if err != nil {
		return nil, nil, err
	}
	return symbols.IndexDocument(res.Root, doc), res.Issues, nil
}

// Scan walks root for templates. A root naming a single file scans just
// that file. Per-file failures are collected as issues, not returned.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("failed to scan %s: %w", root, err)
	}

	result := &Result{Root: root, Files: make([]File, 0)}
	if !info.IsDir() {
		file, err := s.scanFile(ctx, root, filepath.Base(root))
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, *file)
		return result, nil
	}

	count := 0
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)
		if walkErr != nil {
			result.Issues = append(result.Issues, Issue{File: relPath, Severity: "warning", Message: "walk error: " + walkErr.Error()})
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if relPath == "." {
			return nil
		}
		if s.opts.Ignore.ShouldIgnore(relPath, entry.IsDir()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !IsTemplate(entry.Name(), s.opts.Extensions) {
			return nil
		}

		file, err := s.scanFile(ctx, path, relPath)
		if err != nil {
			result.Issues = append(result.Issues, Issue{File: relPath, Severity: "error", Message: err.Error()})
			return nil
		}
		result.Files = append(result.Files, *file)
		count++
		if s.opts.Progress != nil {
			s.opts.Progress(relPath, count)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.SliceStable(result.Issues, func(i, j int) bool {
		return result.Issues[i].File < result.Issues[j].File
	})
	return result, nil
}

func (s *Scanner) scanFile(ctx context.Context, path, relPath string) (*File, error) {
	doc, err := Load(path, s.opts.LanguageID)
	if err != nil {
		return nil, err
	}
	syms, issues, err := s.Index(ctx, doc)
	if err != nil {
		return nil, errors.Errorf("failed to parse %s: %w", relPath, err)
	}
	return &File{
		Path:    relPath,
		URI:     doc.URI,
		Hash:    fileutil.HashBytes([]byte(doc.Text)),
		Symbols: syms,
		Issues:  issues,
	}, nil
}
