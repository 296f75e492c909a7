// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

func geminiSuccessBody(text string) string {
	resp := geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeminiExtractRequestShape(t *testing.T) {
	const rulesJSON = `[{"rule_id":"H1","rule_name":"Visibility","description":"d","source_page":3}]`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "sk-test", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "page 3")
		assert.Contains(t, req.Contents[0].Parts[0].Text, "the page body text")

		require.NotNil(t, req.SystemInstruction)
		assert.Contains(t, req.SystemInstruction.Parts[0].Text, "heuristic rules")

		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		schema := req.GenerationConfig.ResponseSchema
		require.NotNil(t, schema)
		assert.Equal(t, "ARRAY", schema.Type)
		require.NotNil(t, schema.Items)
		assert.ElementsMatch(t,
			[]string{"rule_id", "rule_name", "description", "source_page"},
			schema.Items.Required)

		fmt.Fprint(w, geminiSuccessBody(rulesJSON))
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	backend := &GeminiBackend{APIKey: "sk-test", Model: "test-model", Client: ts.Client()}
	raw, err := backend.Extract(context.Background(), types.PageText{PageNum: 3, Text: "the page body text"})
	require.NoError(t, err)
	assert.Equal(t, rulesJSON, raw)
}

func TestGeminiExtractHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	backend := &GeminiBackend{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := backend.Extract(context.Background(), types.PageText{PageNum: 1, Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiExtractNoTextContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates":[]}`},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			old := geminiAPIBase
			geminiAPIBase = ts.URL
			defer func() { geminiAPIBase = old }()

			backend := &GeminiBackend{APIKey: "k", Model: "m", Client: ts.Client()}
			_, err := backend.Extract(context.Background(), types.PageText{PageNum: 1, Text: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no text content")
		})
	}
}

func TestGeminiExtractMalformedResponseBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<<< not json")
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	backend := &GeminiBackend{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := backend.Extract(context.Background(), types.PageText{PageNum: 1, Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding Gemini response")
}

func TestRenderUserPrompt(t *testing.T) {
	prompt, err := renderUserPrompt(types.PageText{PageNum: 7, Text: "body"})
	require.NoError(t, err)
	if !strings.Contains(prompt, "page 7") || !strings.Contains(prompt, "---\nbody\n---") {
		t.Errorf("prompt = %q", prompt)
	}
}
