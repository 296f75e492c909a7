// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes the search, acquisition, and extraction stages
// into one sequential run: keywords in, persisted heuristic rules out.
// Everything is synchronous and blocking; stage failures degrade to empty
// results rather than aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/heuristics-engine/internal/acquire"
	"github.com/pdiddy/heuristics-engine/internal/extract"
	"github.com/pdiddy/heuristics-engine/internal/rulebase"
	"github.com/pdiddy/heuristics-engine/internal/search"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// Runner holds the collaborators for a pipeline run. Store is optional; when
// set, each run is also ingested into the rule base.
type Runner struct {
	Client  *http.Client
	Backend extract.AIBackend
	Cfg     types.PipelineConfig
	Store   *rulebase.Store
}

// RunOutput holds everything a run produced, for the CLI summary and the
// dashboard tables.
type RunOutput struct {
	Papers     []types.PaperRecord
	Rules      []types.HeuristicRule
	Downloads  acquire.BatchResult
	Extraction extract.Summary
}

// Run executes search → download → extract → persist for the given
// keywords. Papers that fail to download and pages that fail extraction are
// logged and skipped; the output file is written even when empty. The
// returned error covers only the persistence step and context cancellation.
func (r *Runner) Run(ctx context.Context, keywords []string, maxResults int, w io.Writer) (*RunOutput, error) {
	out := &RunOutput{Rules: make([]types.HeuristicRule, 0)}

	query := search.Query{Keywords: keywords, MaxResults: maxResults}
	out.Papers = search.Run(ctx, r.Client, query, r.Cfg.Search, w)
	if len(out.Papers) == 0 {
		return out, r.persist(ctx, out, w)
	}
	search.FormatTable(out.Papers, w)

	out.Downloads = acquire.DownloadAll(r.Client, out.Papers, r.Cfg.Acquisition, w)

	result, err := extract.ExtractBatch(ctx, r.Backend, out.Downloads.PDFPaths, r.Cfg.Extraction, w)
	if err != nil {
		return out, err
	}
	out.Rules = result.Rules
	out.Extraction = result.Summary

	return out, r.persist(ctx, out, w)
}

func (r *Runner) persist(ctx context.Context, out *RunOutput, w io.Writer) error {
	outputFile := r.Cfg.Extraction.OutputFile
	if outputFile == "" {
		outputFile = "extracted_heuristics.json"
	}

	if err := extract.WriteRules(out.Rules, outputFile); err != nil {
		return fmt.Errorf("persisting rules: %w", err)
	}
	fmt.Fprintf(w, "saved %d rules to %s\n", len(out.Rules), outputFile)

	if r.Store != nil {
		if err := r.Store.Ingest(ctx, out.Papers, out.Rules, w); err != nil {
			fmt.Fprintf(w, "warning: rule base ingest failed: %v\n", err)
		}
	}
	return nil
}
