// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rulebase

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.RuleBaseConfig{RulesDir: t.TempDir(), MaxResults: 20})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePapers() []types.PaperRecord {
	return []types.PaperRecord{
		{
			Title:           "Heuristic Evaluation Revisited",
			Authors:         []string{"Jane Doe", "John Roe"},
			Summary:         "A study of usability heuristics.",
			ID:              "http://arxiv.org/abs/2301.07041v1",
			PrimaryCategory: "cs.HC",
		},
	}
}

func sampleRules() []types.HeuristicRule {
	return []types.HeuristicRule{
		{RuleID: "H1", RuleName: "Visibility of system status", Description: "Keep users informed through timely feedback.", SourcePage: 2},
		{RuleID: "H2", RuleName: "Match with the real world", Description: "Speak the user's language with familiar concepts.", SourcePage: 2},
		{RuleID: "H3", RuleName: "User control and freedom", Description: "Provide clearly marked exits for mistaken actions.", SourcePage: 3},
	}
}

func TestIngestAndRetrieveAll(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := s.Ingest(ctx, samplePapers(), sampleRules(), &buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	// Run order preserved.
	for i, want := range []string{"H1", "H2", "H3"} {
		if results[i].RuleID != want {
			t.Errorf("results[%d].RuleID = %q, want %q", i, results[i].RuleID, want)
		}
	}
}

func TestIngestReplacesPreviousRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	var buf bytes.Buffer

	if err := s.Ingest(ctx, nil, sampleRules(), &buf); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if err := s.Ingest(ctx, nil, sampleRules()[:1], &buf); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1 after replacement", len(results))
	}
}

func TestRetrieveFullText(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	var buf bytes.Buffer

	if err := s.Ingest(ctx, nil, sampleRules(), &buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{Query: "exits"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].RuleID != "H3" {
		t.Errorf("RuleID = %q, want H3", results[0].RuleID)
	}
}

func TestRetrieveSourcePageFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	var buf bytes.Buffer

	if err := s.Ingest(ctx, nil, sampleRules(), &buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{SourcePage: 2})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestRetrieveMaxResults(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	var buf bytes.Buffer

	if err := s.Ingest(ctx, nil, sampleRules(), &buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := s.Retrieve(ctx, QueryOptions{MaxResults: 2})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestExportJSON(t *testing.T) {
	cfg := types.RuleBaseConfig{RulesDir: t.TempDir()}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	var buf bytes.Buffer
	if err := s.Ingest(ctx, samplePapers(), sampleRules(), &buf); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if err := s.ExportJSON(ctx, QueryOptions{}); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.RulesDir, "index", "export.json"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	var results []QueryResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}

func TestExportJSONEmptyIsArray(t *testing.T) {
	cfg := types.RuleBaseConfig{RulesDir: t.TempDir()}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if err := s.ExportJSON(context.Background(), QueryOptions{}); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.RulesDir, "index", "export.json"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if got := string(bytes.TrimSpace(data)); got != "[]" {
		t.Errorf("empty export = %q, want []", got)
	}
}
