// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuristics-engine/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdfs...]",
	Short: "Extract heuristic rules from downloaded PDFs",
	Long: `Extract sends each substantial page of the given PDFs to the Gemini API
and accumulates the heuristic rules it returns, in page order. With no
arguments every PDF in the acquisition directory is processed. The result
is written to the output file as a JSON array, overwriting the previous
run; the file is written even when no rules were found.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Extraction.Model = model
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Extraction.OutputFile = out
	}

	pdfPaths := args
	if len(pdfPaths) == 0 {
		var err error
		pdfPaths, err = listPDFs(cfg.Acquisition.PDFDir)
		if err != nil {
			return err
		}
	}

	backend, err := geminiBackend(cfg.Extraction, httpClient(cfg.Search.HTTPConfig))
	if err != nil {
		return err
	}

	result, err := extract.ExtractBatch(context.Background(), backend, pdfPaths, cfg.Extraction, os.Stdout)
	if err != nil {
		return err
	}

	if err := extract.WriteRules(result.Rules, cfg.Extraction.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "saved %d rules to %s\n", len(result.Rules), cfg.Extraction.OutputFile)
	return nil
}

// listPDFs returns the .pdf files directly under dir, sorted by name.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading PDF directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func init() {
	extractCmd.Flags().String("model", "", "AI model identifier (default from config)")
	extractCmd.Flags().String("output", "", "output file for the extracted rule array (default from config)")

	rootCmd.AddCommand(extractCmd)
}
