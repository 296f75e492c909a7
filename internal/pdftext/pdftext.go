// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts per-page plain text from local PDF files and
// filters out pages too short to be worth sending to the AI backend.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// DefaultMinPageChars is the default trimmed-text threshold. Pages whose
// stripped text is this long or shorter are excluded.
const DefaultMinPageChars = 100

// ExtractPages opens the PDF at path and returns the text of every page,
// 1-indexed. Pages that fail text extraction are returned with empty text
// rather than aborting the document.
func ExtractPages(path string) ([]types.PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var pages []types.PageText
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, types.PageText{PageNum: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, types.PageText{PageNum: i})
			continue
		}
		pages = append(pages, types.PageText{PageNum: i, Text: text})
	}
	return pages, nil
}

// FilterPages keeps only pages whose whitespace-trimmed text is longer than
// minChars. A minChars of zero or below uses DefaultMinPageChars.
func FilterPages(pages []types.PageText, minChars int) []types.PageText {
	if minChars <= 0 {
		minChars = DefaultMinPageChars
	}

	var kept []types.PageText
	for _, p := range pages {
		if len(strings.TrimSpace(p.Text)) > minChars {
			kept = append(kept, p)
		}
	}
	return kept
}

// SubstantialPages extracts and filters in one step.
func SubstantialPages(path string, minChars int) ([]types.PageText, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return nil, err
	}
	return FilterPages(pages, minChars), nil
}
