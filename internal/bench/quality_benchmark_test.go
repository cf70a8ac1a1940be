package bench

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistkit/mistlens/internal/render"
	"github.com/mistkit/mistlens/internal/search"
	"github.com/mistkit/mistlens/internal/workspace"
)

const fixturesDir = "../../fixtures/mist"

type curatedQuery struct {
	query string
	file  string
	name  string
}

func curatedQueries() []curatedQuery {
	return []curatedQuery{
		{query: "indicator", file: "home.mist", name: "indicator"},
		{query: "arrow", file: "home.mist", name: "button"},
		{query: "feed", file: "home.mist", name: "feed"},
		{query: "exp", file: "cells/footer.mist", name: "exp"},
		{query: "pagng", file: "home.mist", name: "paging"},
	}
}

func scanFixtures(tb testing.TB) *workspace.Result {
	tb.Helper()
	result, err := workspace.NewScanner(workspace.Options{}).Scan(context.Background(), fixturesDir)
	if err != nil {
		tb.Fatalf("scan fixtures: %v", err)
	}
	return result
}

func BenchmarkSearchQuality_Curated(b *testing.B) {
	index := search.Build(scanFixtures(b).Sources())
	queries := curatedQueries()
	var precision float64
	var recall float64

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		precision, recall = searchMetrics(index, queries)
	}
	b.StopTimer()

	b.ReportMetric(precision, "precision@1")
	b.ReportMetric(recall, "recall@5")
}

func BenchmarkSymbolListing_TokenCost(b *testing.B) {
	result := scanFixtures(b)

	tokenCount := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		for _, file := range result.Files {
			if err := render.Symbols(&buf, file.Path, file.Symbols); err != nil {
				b.Fatalf("render: %v", err)
			}
		}
		tokenCount = estimateTokenCount(buf.String())
	}
	b.StopTimer()
	b.ReportMetric(float64(tokenCount), "tokens/listing")
}

func TestCuratedQueriesRankExpectedSymbolFirst(t *testing.T) {
	result := scanFixtures(t)
	require.NotEmpty(t, result.Files)
	index := search.Build(result.Sources())

	for _, q := range curatedQueries() {
		hits := search.Search(index, q.query, 5)
		require.NotEmpty(t, hits, "query %q", q.query)
		assert.Equal(t, q.file, hits[0].Document.File, "query %q", q.query)
		assert.Equal(t, q.name, strings.TrimLeft(hits[0].Document.Name, "\t"), "query %q", q.query)
	}
}

func searchMetrics(index *search.Index, queries []curatedQuery) (precision float64, recall float64) {
	top := 0
	found := 0
	for _, q := range queries {
		hits := search.Search(index, q.query, 5)
		for rank, hit := range hits {
			if hit.Document.File != q.file || strings.TrimLeft(hit.Document.Name, "\t") != q.name {
				continue
			}
			if rank == 0 {
				top++
			}
			found++
			break
		}
	}
	if len(queries) > 0 {
		precision = float64(top) / float64(len(queries))
		recall = float64(found) / float64(len(queries))
	}
	return precision, recall
}

func estimateTokenCount(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return len(strings.Fields(text))
}
