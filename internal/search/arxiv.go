// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Fetch issues one GET request to the arXiv API for the given query and
// parses the Atom feed into paper records. Entries are returned in document
// order with authors in document order.
func Fetch(ctx context.Context, client *http.Client, query Query, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	q := buildArxivQuery(query.Keywords)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.PaperRecord
	for _, entry := range feed.Entries {
		p := types.PaperRecord{
			Title:           strings.TrimSpace(entry.Title),
			Summary:         strings.TrimSpace(entry.Summary),
			ID:              strings.TrimSpace(entry.ID),
			PrimaryCategory: entry.PrimaryCategory.Term,
		}
		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery constructs the search_query parameter: one "all:" term per
// keyword, joined with boolean AND. Keywords are URL-escaped.
func buildArxivQuery(keywords []string) string {
	var parts []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		parts = append(parts, "all:"+url.QueryEscape(kw))
	}
	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures. The arxiv:primary_category element carries
// the category in its term attribute.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string        `xml:"id"`
	Title           string        `xml:"title"`
	Summary         string        `xml:"summary"`
	Authors         []arxivAuthor `xml:"author"`
	PrimaryCategory arxivCategory `xml:"primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}
