// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "heuristics-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the paper search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of feed entries to request (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AcquisitionConfig holds settings for the PDF acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// PDFDir is the directory downloaded PDFs are written to
	// (default "downloaded_pdfs").
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts is the number of attempts per API call before the page
	// is given up (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// ExtractionConfig holds settings for the heuristic extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// MinPageChars is the minimum trimmed text length for a page to be
	// sent to the AI backend. Pages at or below the threshold are skipped
	// (default 100).
	MinPageChars int `json:"min_page_chars" yaml:"min_page_chars"`

	// PageDelay is the pause between consecutive page requests, applied as
	// a rate-limiting courtesy regardless of outcome (default 500ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// OutputFile is the path of the persisted JSON rule array
	// (default "extracted_heuristics.json").
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// RuleBaseConfig holds settings for the SQLite rule base.
type RuleBaseConfig struct {
	// RulesDir is the base directory for the rule base (contains index/).
	RulesDir string `json:"rules_dir" yaml:"rules_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DashboardConfig holds settings for the dashboard server.
type DashboardConfig struct {
	// Addr is the listen address (default ":8341").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search      SearchConfig      `json:"search" yaml:"search"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Extraction  ExtractionConfig  `json:"extraction" yaml:"extraction"`
	RuleBase    RuleBaseConfig    `json:"rule_base" yaml:"rule_base"`
	Dashboard   DashboardConfig   `json:"dashboard" yaml:"dashboard"`
}
