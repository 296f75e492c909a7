// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv API for keyword matches and parses the
// returned Atom feed into paper records.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// Query holds the search parameters: a keyword list combined with boolean
// AND, and a result limit.
type Query struct {
	Keywords   []string
	MaxResults int
}

// IsEmpty reports whether the query contains no searchable keywords.
func (q Query) IsEmpty() bool {
	for _, kw := range q.Keywords {
		if strings.TrimSpace(kw) != "" {
			return false
		}
	}
	return true
}

// Run performs a search and returns the matching paper records. The pipeline
// treats every failure mode the same way: an empty keyword list, an HTTP
// failure, and a feed parse failure all log a message to w and return an
// empty list. No network call is made for an empty query, and no retry is
// attempted. Callers that need the cause use Fetch directly.
func Run(ctx context.Context, client *http.Client, query Query, cfg types.SearchConfig, w io.Writer) []types.PaperRecord {
	if query.IsEmpty() {
		fmt.Fprintln(w, "search: keywords list cannot be empty")
		return nil
	}

	fmt.Fprintf(w, "searching arXiv for: %q (max %d results)\n",
		strings.Join(query.Keywords, " AND "), effectiveLimit(query, cfg))

	papers, err := Fetch(ctx, client, query, cfg)
	if err != nil {
		fmt.Fprintf(w, "search failed: %v\n", err)
		return nil
	}

	fmt.Fprintf(w, "found %d papers\n", len(papers))
	return papers
}

func effectiveLimit(query Query, cfg types.SearchConfig) int {
	if query.MaxResults > 0 {
		return query.MaxResults
	}
	if cfg.MaxResults > 0 {
		return cfg.MaxResults
	}
	return 10
}

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers []types.PaperRecord, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found matching the search criteria.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-8s  %s\n",
		"No.", "Title", "Authors", "Category", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, p := range papers {
		title := truncate(p.Title, 60)
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-8s  %s\n",
			i+1, title, formatAuthors(p.Authors), p.PrimaryCategory, p.ID)
	}

	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.PaperRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
