// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PageText holds the raw text of one PDF page.
type PageText struct {
	// PageNum is the 1-indexed page number.
	PageNum int `json:"page_num" yaml:"page_num"`

	// Text is the raw extracted text of the page.
	Text string `json:"text" yaml:"text"`
}

// HeuristicRule is one design/usability guideline as extracted by the AI
// backend from a single page. Rules are accumulated across pages in page
// order; rules repeated on several pages are not merged.
type HeuristicRule struct {
	// RuleID is a short identifier for the rule (e.g. "H1",
	// "VisibilityOfSystemStatus").
	RuleID string `json:"rule_id" yaml:"rule_id"`

	// RuleName is a concise, descriptive name for the heuristic.
	RuleName string `json:"rule_name" yaml:"rule_name"`

	// Description is the full extracted text describing the rule.
	Description string `json:"description" yaml:"description"`

	// SourcePage is the 1-indexed page number the rule was found on.
	SourcePage int `json:"source_page" yaml:"source_page"`
}
