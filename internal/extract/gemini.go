// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/template"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// geminiAPIBase is the generateContent endpoint base. Package-level var for
// test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// systemPrompt is the fixed system instruction sent with every page.
const systemPrompt = "You are an expert document analysis system specializing in extracting design and user experience " +
	"heuristic rules. Your task is to analyze the provided text content from a single PDF page. " +
	"Identify and extract all distinct, clearly defined heuristic rules mentioned on this page. " +
	"The extracted rules MUST strictly conform to the provided JSON schema. " +
	"Ensure the 'source_page' field is always set to the provided page number."

// userPromptTmpl is the per-page prompt carrying the page number and content.
var userPromptTmpl = template.Must(template.New("extraction").Parse(
	`Analyze the following text from page {{.PageNum}} and extract all heuristic rules. ` +
		`Each rule must have a rule_id, rule_name, a full description, and the source_page number. ` +
		"Page Content:\n\n---\n{{.Text}}\n---"))

// responseSchema describes a node of the structured-output schema attached
// to each request.
type responseSchema struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Items       *responseSchema            `json:"items,omitempty"`
	Properties  map[string]*responseSchema `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

// heuristicRuleSchema constrains the model output to an array of objects
// with the four required rule fields.
var heuristicRuleSchema = &responseSchema{
	Type:        "ARRAY",
	Description: "A list of all distinct heuristic rules found in the document.",
	Items: &responseSchema{
		Type: "OBJECT",
		Properties: map[string]*responseSchema{
			"rule_id": {
				Type:        "STRING",
				Description: "A short, unique identifier for the rule (e.g., 'H1', 'VisibilityOfSystemStatus').",
			},
			"rule_name": {
				Type:        "STRING",
				Description: "A concise, descriptive name for the heuristic (e.g., 'Visibility of system status').",
			},
			"description": {
				Type:        "STRING",
				Description: "The full, extracted text describing the heuristic rule.",
			},
			"source_page": {
				Type:        "NUMBER",
				Description: "The page number (1-indexed) where the rule was primarily found.",
			},
		},
		Required: []string{"rule_id", "rule_name", "description", "source_page"},
	},
}

// GeminiBackend calls the Gemini generateContent API for one page of text.
// The API key travels as a URL query parameter per the endpoint's contract.
type GeminiBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// Request/response bodies for the generateContent endpoint.
type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   *responseSchema `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Extract posts the page to the API and returns the raw JSON text of the
// model response. A non-200 status, a transport failure, and a response with
// no extractable text are all errors; the caller's retry loop treats them
// identically.
func (g *GeminiBackend) Extract(ctx context.Context, page types.PageText) (string, error) {
	prompt, err := renderUserPrompt(page)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := geminiRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   heuristicRuleSchema,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		geminiAPIBase, g.Model, url.QueryEscape(g.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no text content in Gemini API response")
	}
	text := gResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("no text content in Gemini API response")
	}
	return text, nil
}

// renderUserPrompt executes the per-page prompt template.
func renderUserPrompt(page types.PageText) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}
