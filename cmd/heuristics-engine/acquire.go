// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuristics-engine/internal/acquire"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Download PDFs for previously searched papers",
	Long: `Acquire reads a paper list (the JSON written by search --output) and
downloads each paper's PDF into the acquisition directory. Downloads are
sequential with no retry; failed papers are reported and skipped.`,
	RunE: runAcquire,
}

func runAcquire(cmd *cobra.Command, args []string) error {
	papersFile, _ := cmd.Flags().GetString("papers")
	papers, err := readPapers(papersFile)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	if dir, _ := cmd.Flags().GetString("pdf-dir"); dir != "" {
		cfg.Acquisition.PDFDir = dir
	}

	client := httpClient(cfg.Acquisition.HTTPConfig)
	result := acquire.DownloadAll(client, papers, cfg.Acquisition, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d download(s) failed", result.Failed)
	}
	return nil
}

func readPapers(path string) ([]types.PaperRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading paper list: %w", err)
	}
	var papers []types.PaperRecord
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return papers, nil
}

func init() {
	acquireCmd.Flags().String("papers", "papers.json", "JSON paper list produced by search --output")
	acquireCmd.Flags().String("pdf-dir", "", "directory for downloaded PDFs (default from config)")

	rootCmd.AddCommand(acquireCmd)
}
