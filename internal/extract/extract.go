// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract asks a Generative AI backend for heuristic rules found in
// PDF page text. The backend call is guarded by exponential backoff; pages
// whose retries are exhausted or whose response fails to parse are dropped
// with a logged message, never fatally.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/heuristics-engine/internal/pdftext"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Extract handles a single page and returns the raw JSON text of the model
// response: an array of heuristic rule objects.
type AIBackend interface {
	Extract(ctx context.Context, page types.PageText) (string, error)
}

const defaultMaxAttempts = 5

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Summary holds counts from an extraction run.
type Summary struct {
	PagesProcessed int
	PagesFailed    int
	PDFsFailed     int
}

// Result holds the rules and counts from an extraction run. Rules are in
// page order; rules repeated across pages are kept as-is.
type Result struct {
	Rules   []types.HeuristicRule
	Summary Summary
}

// ExtractBatch processes each PDF in order, accumulating rules across all of
// them. A PDF that cannot be opened is logged and skipped.
func ExtractBatch(ctx context.Context, backend AIBackend, pdfPaths []string, cfg types.ExtractionConfig, w io.Writer) (*Result, error) {
	result := &Result{Rules: make([]types.HeuristicRule, 0)}
	limiter := newPageLimiter(cfg)

	for _, path := range pdfPaths {
		if err := extractPDF(ctx, backend, path, cfg, limiter, result, w); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			fmt.Fprintf(w, "failed %s: %v\n", filepath.Base(path), err)
			result.Summary.PDFsFailed++
		}
	}

	fmt.Fprintf(w, "\nExtraction complete: %d rules from %d pages (%d pages failed)\n",
		len(result.Rules), result.Summary.PagesProcessed, result.Summary.PagesFailed)
	return result, nil
}

// ExtractPDF processes a single PDF and returns its rules in page order.
func ExtractPDF(ctx context.Context, backend AIBackend, pdfPath string, cfg types.ExtractionConfig, w io.Writer) (*Result, error) {
	result := &Result{Rules: make([]types.HeuristicRule, 0)}
	if err := extractPDF(ctx, backend, pdfPath, cfg, newPageLimiter(cfg), result, w); err != nil {
		return nil, err
	}
	return result, nil
}

// newPageLimiter paces page requests at one per cfg.PageDelay, the
// rate-limiting courtesy applied between pages regardless of outcome.
func newPageLimiter(cfg types.ExtractionConfig) *rate.Limiter {
	delay := cfg.PageDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

func extractPDF(ctx context.Context, backend AIBackend, pdfPath string, cfg types.ExtractionConfig, limiter *rate.Limiter, result *Result, w io.Writer) error {
	pages, err := pdftext.SubstantialPages(pdfPath, cfg.MinPageChars)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d pages with substantial text\n", filepath.Base(pdfPath), len(pages))

	return processPages(ctx, backend, pages, cfg, limiter, result, w)
}

// ProcessPages runs the extraction loop over already-extracted page text.
func ProcessPages(ctx context.Context, backend AIBackend, pages []types.PageText, cfg types.ExtractionConfig, w io.Writer) (*Result, error) {
	result := &Result{Rules: make([]types.HeuristicRule, 0)}
	if err := processPages(ctx, backend, pages, cfg, newPageLimiter(cfg), result, w); err != nil {
		return nil, err
	}
	return result, nil
}

func processPages(ctx context.Context, backend AIBackend, pages []types.PageText, cfg types.ExtractionConfig, limiter *rate.Limiter, result *Result, w io.Writer) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for _, page := range pages {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		raw, err := callWithRetry(ctx, backend, page, maxAttempts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(w, "page %d: giving up: %v\n", page.PageNum, err)
			result.Summary.PagesFailed++
			continue
		}

		var rules []types.HeuristicRule
		if err := json.Unmarshal([]byte(raw), &rules); err != nil {
			fmt.Fprintf(w, "page %d: discarding malformed JSON response: %v\n", page.PageNum, err)
			result.Summary.PagesFailed++
			continue
		}

		fmt.Fprintf(w, "page %d: %d rules\n", page.PageNum, len(rules))
		result.Rules = append(result.Rules, rules...)
		result.Summary.PagesProcessed++
	}
	return nil
}

// callWithRetry calls the AI backend up to maxAttempts times. There is no
// wait before the second attempt; after that the wait doubles: 2s, 4s, 8s.
// A run that fails four times and succeeds on the fifth has waited 14s in
// total. After the final failure the last error is returned and the page is
// abandoned.
func callWithRetry(ctx context.Context, backend AIBackend, page types.PageText, maxAttempts int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if d := backoffDelay(attempt - 1); d > 0 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(d):
				}
			}
		}

		raw, err := backend.Extract(ctx, page)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// backoffDelay returns the wait after the given failed attempt (0-indexed):
// 0, 2s, 4s, 8s, ... scaled by backoffBase.
func backoffDelay(failedAttempt int) time.Duration {
	if failedAttempt == 0 {
		return 0
	}
	return time.Duration(1<<uint(failedAttempt)) * backoffBase
}

// WriteRules persists the rule list to path as an indented UTF-8 JSON array,
// overwriting any previous run. A nil list is written as an empty array. The
// write goes through a temporary file so the output is never partial.
func WriteRules(rules []types.HeuristicRule, path string) error {
	if rules == nil {
		rules = make([]types.HeuristicRule, 0)
	}

	data, err := json.MarshalIndent(rules, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".extract-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing rules: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadRules loads a previously persisted rule array.
func ReadRules(path string) ([]types.HeuristicRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []types.HeuristicRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rules, nil
}
