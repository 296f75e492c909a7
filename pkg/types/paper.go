// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the heuristics-engine
// pipeline: paper records from search, per-page text from PDF processing,
// and heuristic rules from extraction.
package types

import "strings"

// PaperRecord represents one paper returned by the arXiv search stage.
// Records are immutable once produced: acquisition consumes the ID and the
// dashboard renders the rest.
type PaperRecord struct {
	// Title is the paper title as returned by the feed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in document order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// ID is the opaque paper identifier, typically the arXiv abstract URL
	// (e.g. "http://arxiv.org/abs/2301.07041v1").
	ID string `json:"arxiv_id" yaml:"arxiv_id"`

	// PrimaryCategory is the arXiv primary category term (e.g. "cs.HC").
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`
}

// Stem returns the trailing path segment of the record's identifier, used as
// the filename stem for the downloaded PDF (e.g. "2301.07041v1").
func (p PaperRecord) Stem() string {
	if idx := strings.LastIndex(p.ID, "/"); idx >= 0 {
		return p.ID[idx+1:]
	}
	return p.ID
}
