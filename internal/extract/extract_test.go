// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	backoffBase = time.Millisecond
}

// mockBackend returns canned responses per page number, failing a configured
// number of times first.
type mockBackend struct {
	responses map[int]string // page number → raw JSON
	failFirst int
	calls     int
}

func (m *mockBackend) Extract(_ context.Context, page types.PageText) (string, error) {
	m.calls++
	if m.calls <= m.failFirst {
		return "", fmt.Errorf("transport error (call %d)", m.calls)
	}
	raw, ok := m.responses[page.PageNum]
	if !ok {
		return "[]", nil
	}
	return raw, nil
}

func testCfg() types.ExtractionConfig {
	return types.ExtractionConfig{
		AIConfig:     types.AIConfig{Model: "test-model", MaxAttempts: 5},
		MinPageChars: 100,
		PageDelay:    time.Millisecond,
	}
}

// --- callWithRetry ---

func TestCallWithRetryFourFailuresThenSuccess(t *testing.T) {
	backend := &mockBackend{failFirst: 4, responses: map[int]string{1: `[{"rule_id":"H1"}]`}}

	start := time.Now()
	raw, err := callWithRetry(context.Background(), backend, types.PageText{PageNum: 1}, 5)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, `[{"rule_id":"H1"}]`, raw)
	assert.Equal(t, 5, backend.calls)
	// Waits are 0, 2, 4, 8 units of backoffBase: 14 units total.
	assert.GreaterOrEqual(t, elapsed, 14*backoffBase)
}

func TestCallWithRetryAllAttemptsFail(t *testing.T) {
	backend := &mockBackend{failFirst: 100}

	_, err := callWithRetry(context.Background(), backend, types.PageText{PageNum: 1}, 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 5 attempts")
	// Exactly 5 attempts, no more.
	assert.Equal(t, 5, backend.calls)
}

func TestCallWithRetryImmediateSuccess(t *testing.T) {
	backend := &mockBackend{responses: map[int]string{1: `[]`}}

	raw, err := callWithRetry(context.Background(), backend, types.PageText{PageNum: 1}, 5)

	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Equal(t, 1, backend.calls)
}

func TestCallWithRetryContextCancelled(t *testing.T) {
	backend := &mockBackend{failFirst: 100}

	ctx, cancel := context.WithTimeout(context.Background(), 3*backoffBase)
	defer cancel()

	_, err := callWithRetry(ctx, backend, types.PageText{PageNum: 1}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoffDelaySchedule(t *testing.T) {
	want := []time.Duration{0, 2 * backoffBase, 4 * backoffBase, 8 * backoffBase}
	for i, d := range want {
		if got := backoffDelay(i); got != d {
			t.Errorf("backoffDelay(%d) = %v, want %v", i, got, d)
		}
	}
}

// --- ProcessPages ---

func longText(s string) string {
	return s + strings.Repeat(" filler", 30)
}

func TestProcessPagesAccumulatesInPageOrder(t *testing.T) {
	backend := &mockBackend{responses: map[int]string{
		2: `[{"rule_id":"H1","rule_name":"First","description":"d1","source_page":2},
		    {"rule_id":"H2","rule_name":"Second","description":"d2","source_page":2}]`,
		5: `[{"rule_id":"H3","rule_name":"Third","description":"d3","source_page":5}]`,
	}}
	pages := []types.PageText{
		{PageNum: 2, Text: longText("page two")},
		{PageNum: 5, Text: longText("page five")},
	}

	var buf bytes.Buffer
	result, err := ProcessPages(context.Background(), backend, pages, testCfg(), &buf)
	require.NoError(t, err)

	require.Len(t, result.Rules, 3)
	assert.Equal(t, "H1", result.Rules[0].RuleID)
	assert.Equal(t, "H2", result.Rules[1].RuleID)
	assert.Equal(t, "H3", result.Rules[2].RuleID)
	assert.Equal(t, 2, result.Summary.PagesProcessed)
	assert.Equal(t, 0, result.Summary.PagesFailed)
}

func TestProcessPagesDiscardsMalformedJSON(t *testing.T) {
	backend := &mockBackend{responses: map[int]string{
		1: `not json at all`,
		2: `[{"rule_id":"H1","rule_name":"Ok","description":"d","source_page":2}]`,
	}}
	pages := []types.PageText{
		{PageNum: 1, Text: longText("bad")},
		{PageNum: 2, Text: longText("good")},
	}

	var buf bytes.Buffer
	result, err := ProcessPages(context.Background(), backend, pages, testCfg(), &buf)
	require.NoError(t, err)

	require.Len(t, result.Rules, 1)
	assert.Equal(t, "H1", result.Rules[0].RuleID)
	assert.Equal(t, 1, result.Summary.PagesFailed)
	assert.Contains(t, buf.String(), "malformed JSON")
}

func TestProcessPagesContinuesAfterExhaustedRetries(t *testing.T) {
	// First page burns all 5 attempts, second page succeeds on the first
	// remaining call.
	backend := &mockBackend{
		failFirst: 5,
		responses: map[int]string{
			2: `[{"rule_id":"H9","rule_name":"Late","description":"d","source_page":2}]`,
		},
	}
	pages := []types.PageText{
		{PageNum: 1, Text: longText("doomed")},
		{PageNum: 2, Text: longText("fine")},
	}

	var buf bytes.Buffer
	result, err := ProcessPages(context.Background(), backend, pages, testCfg(), &buf)
	require.NoError(t, err)

	require.Len(t, result.Rules, 1)
	assert.Equal(t, "H9", result.Rules[0].RuleID)
	assert.Equal(t, 1, result.Summary.PagesFailed)
	assert.Equal(t, 1, result.Summary.PagesProcessed)
	assert.Contains(t, buf.String(), "giving up")
}

// --- WriteRules / ReadRules ---

func TestWriteRulesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extracted_heuristics.json")

	require.NoError(t, WriteRules(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteRulesValidJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extracted_heuristics.json")
	rules := []types.HeuristicRule{
		{RuleID: "H1", RuleName: "Visibility", Description: "Keep users informed.", SourcePage: 3},
		{RuleID: "H1", RuleName: "Visibility", Description: "Keep users informed.", SourcePage: 7},
	}

	require.NoError(t, WriteRules(rules, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []types.HeuristicRule
	require.NoError(t, json.Unmarshal(data, &got))
	// Repeated rules are not deduplicated.
	assert.Equal(t, rules, got)
}

func TestWriteRulesDeterministic(t *testing.T) {
	dir := t.TempDir()
	rules := []types.HeuristicRule{
		{RuleID: "H2", RuleName: "Match", Description: "Speak the user's language.", SourcePage: 1},
	}

	pathA := filepath.Join(dir, "a.json")
	pathB := filepath.Join(dir, "b.json")
	require.NoError(t, WriteRules(rules, pathA))
	require.NoError(t, WriteRules(rules, pathB))

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteRulesOverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extracted_heuristics.json")

	require.NoError(t, WriteRules([]types.HeuristicRule{{RuleID: "OLD"}}, path))
	require.NoError(t, WriteRules(nil, path))

	rules, err := ReadRules(path)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestReadRulesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	rules := []types.HeuristicRule{
		{RuleID: "H3", RuleName: "Control", Description: "Provide exits.", SourcePage: 4},
	}
	require.NoError(t, WriteRules(rules, path))

	got, err := ReadRules(path)
	require.NoError(t, err)
	assert.Equal(t, rules, got)
}
