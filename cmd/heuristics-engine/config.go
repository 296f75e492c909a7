// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/heuristics-engine/internal/extract"
	"github.com/pdiddy/heuristics-engine/internal/secrets"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

func init() {
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", "heuristics-engine/"+version)

	viper.SetDefault("search.max_results", 10)

	viper.SetDefault("acquisition.pdf_dir", "downloaded_pdfs")

	viper.SetDefault("extraction.model", "gemini-2.5-flash")
	viper.SetDefault("extraction.max_attempts", 5)
	viper.SetDefault("extraction.min_page_chars", 100)
	viper.SetDefault("extraction.page_delay", 500*time.Millisecond)
	viper.SetDefault("extraction.output_file", "extracted_heuristics.json")

	viper.SetDefault("rule_base.rules_dir", "rules")
	viper.SetDefault("rule_base.max_results", 20)

	viper.SetDefault("dashboard.addr", ":8341")
}

// pipelineConfig assembles the stage configuration from viper (defaults,
// config file, HEURISTICS_ENGINE_* environment).
func pipelineConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: httpCfg,
			MaxResults: viper.GetInt("search.max_results"),
		},
		Acquisition: types.AcquisitionConfig{
			HTTPConfig: httpCfg,
			PDFDir:     viper.GetString("acquisition.pdf_dir"),
		},
		Extraction: types.ExtractionConfig{
			AIConfig: types.AIConfig{
				Model:       viper.GetString("extraction.model"),
				APIKey:      viper.GetString("extraction.api_key"),
				MaxAttempts: viper.GetInt("extraction.max_attempts"),
			},
			MinPageChars: viper.GetInt("extraction.min_page_chars"),
			PageDelay:    viper.GetDuration("extraction.page_delay"),
			OutputFile:   viper.GetString("extraction.output_file"),
		},
		RuleBase: types.RuleBaseConfig{
			RulesDir:   viper.GetString("rule_base.rules_dir"),
			MaxResults: viper.GetInt("rule_base.max_results"),
		},
		Dashboard: types.DashboardConfig{
			Addr: viper.GetString("dashboard.addr"),
		},
	}
}

// httpClient builds the shared HTTP client for a stage.
func httpClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// geminiBackend resolves the API key (config, then .secrets/gemini-api-key,
// then GEMINI_API_KEY) and builds the extraction backend.
func geminiBackend(cfg types.ExtractionConfig, client *http.Client) (*extract.GeminiBackend, error) {
	key := cfg.APIKey
	if key == "" {
		key = secrets.Resolve(loadedSecrets, secrets.GeminiKeyFile, "GEMINI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("no Gemini API key: set extraction.api_key, .secrets/%s, or GEMINI_API_KEY", secrets.GeminiKeyFile)
	}
	return &extract.GeminiBackend{APIKey: key, Model: cfg.Model, Client: client}, nil
}
