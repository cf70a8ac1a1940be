// Package search ranks workspace symbols against free-text queries with
// BM25, falling back to typo-tolerant name matching.
package search

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/mistkit/mistlens/internal/fileutil"
	"github.com/mistkit/mistlens/internal/symbols"
)

const (
	IndexDir  = ".mistlens"
	IndexFile = "search-index.json"
	Version   = "mist-search-index-v1"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

// Source is one file's worth of symbols to index.
type Source struct {
	Path    string
	Symbols []symbols.Symbol
}

type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Container string         `json:"container,omitempty"`
	File      string         `json:"file"`
	Line      int            `json:"line"`
	Column    int            `json:"column"`
	Length    int            `json:"length"`
	Terms     map[string]int `json:"terms"`
}

type Index struct {
	Version       string         `json:"version"`
	DocumentCount int            `json:"document_count"`
	AvgDocLength  float64        `json:"avg_doc_length"`
	DocFreq       map[string]int `json:"doc_freq"`
	Documents     []Document     `json:"documents"`
}

type Result struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Document Document `json:"document"`
}

// DocumentID is the stable identity of a symbol: file|line|kind|name.
func DocumentID(file string, sym symbols.Symbol) string {
	return strings.Join([]string{
		file,
		strconv.Itoa(int(sym.Position.Line) + 1),
		symbols.KindName(sym.Kind),
		sym.Title(),
	}, "|")
}

func Build(sources []Source) *Index {
	documents := make([]Document, 0)
	docFreq := make(map[string]int)
	totalLength := 0

	for _, src := range sources {
		for _, sym := range src.Symbols {
			terms := buildTerms(sym.Title(), sym.Container, src.Path)
			length := 0
			for _, count := range terms {
				length += count
			}
			if length == 0 {
				continue
			}

			documents = append(documents, Document{
				ID:        DocumentID(src.Path, sym),
				Name:      sym.Title(),
				Kind:      symbols.KindName(sym.Kind),
				Container: sym.Container,
				File:      src.Path,
				Line:      int(sym.Position.Line) + 1,
				Column:    int(sym.Position.Character) + 1,
				Length:    length,
				Terms:     terms,
			})
			totalLength += length
			for term := range terms {
				docFreq[term]++
			}
		}
	}

	sort.SliceStable(documents, func(i, j int) bool {
		return documents[i].ID < documents[j].ID
	})

	avgDocLength := 0.0
	if len(documents) > 0 {
		avgDocLength = float64(totalLength) / float64(len(documents))
	}

	return &Index{
		Version:       Version,
		DocumentCount: len(documents),
		AvgDocLength:  avgDocLength,
		DocFreq:       docFreq,
		Documents:     documents,
	}
}

// Write stores the index under root/IndexDir. It reports whether the file
// changed.
func Write(root string, index *Index) (bool, error) {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return false, errors.Errorf("failed to encode search index: %w", err)
	}
	dir := filepath.Join(root, IndexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Errorf("failed to create %s: %w", dir, err)
	}
	return fileutil.WriteIfChangedTracked(filepath.Join(dir, IndexFile), append(data, '\n'))
}

func Load(root string) (*Index, error) {
	path := filepath.Join(root, IndexDir, IndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("search index missing at %s (run mistlens index)", path)
		}
		return nil, errors.Errorf("failed to read search index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, errors.Errorf("failed to decode search index: %w", err)
	}
	if index.Version != Version {
		return nil, errors.Errorf("search index at %s has version %q, want %q (run mistlens index)", path, index.Version, Version)
	}
	if index.DocFreq == nil {
		index.DocFreq = map[string]int{}
	}
	return &index, nil
}

func Search(index *Index, query string, limit int) []Result {
	if index == nil || len(index.Documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	uniqueTerms := fileutil.DedupeStrings(tokenize(query))
	if len(uniqueTerms) == 0 {
		return nil
	}

	const (
		k1 = 1.2
		b  = 0.75
	)
	n := float64(index.DocumentCount)
	avgLen := index.AvgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	for _, doc := range index.Documents {
		score := 0.0
		docLen := float64(doc.Length)
		for _, term := range uniqueTerms {
			tf := float64(doc.Terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(index.DocFreq[term])
			if df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			score += idf * (tf * (k1 + 1.0)) / (tf + k1*(1.0-b+b*(docLen/avgLen)))
		}
		if score > 0 {
			results = append(results, Result{ID: doc.ID, Score: score, Document: doc})
		}
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	if len(results) == 0 {
		return fuzzyNameFallback(index.Documents, query, limit)
	}
	return results
}

func buildTerms(name, container, filePath string) map[string]int {
	terms := make(map[string]int)
	addWeighted(terms, name, 4)
	addWeighted(terms, container, 2)
	addWeighted(terms, filePath, 1)
	return terms
}

func addWeighted(terms map[string]int, value string, weight int) {
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

func tokenize(value string) []string {
	value = strings.ToLower(value)
	if value == "" {
		return nil
	}
	return tokenPattern.FindAllString(value, -1)
}

func fuzzyNameFallback(documents []Document, query string, limit int) []Result {
	needle := normalizeForFuzzy(query)
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range documents {
		candidate := normalizeForFuzzy(doc.Name)
		if candidate == "" {
			continue
		}
		distance := levenshteinDistance(needle, candidate)
		if distance > max(len(candidate)/3, 2) {
			continue
		}
		results = append(results, Result{ID: doc.ID, Score: 1.0 / float64(1+distance), Document: doc})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

func normalizeForFuzzy(value string) string {
	return strings.Join(tokenize(value), "")
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, current = current, prev
	}
	return prev[len(b)]
}
