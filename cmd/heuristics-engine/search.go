// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuristics-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search arXiv for papers matching keywords",
	Long: `Search queries the arXiv API for papers matching all given keywords
(boolean AND). An empty keyword list, an HTTP failure, and an unparsable
feed all produce an empty result, not an error.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	query := search.Query{
		Keywords:   keywordsFromFlags(cmd, args),
		MaxResults: flagInt(cmd, "max-results"),
	}

	client := httpClient(cfg.Search.HTTPConfig)
	papers := search.Run(context.Background(), client, query, cfg.Search, os.Stderr)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(papers, os.Stdout)
	}
	search.FormatTable(papers, os.Stdout)

	if outFile, _ := cmd.Flags().GetString("output"); outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := search.FormatJSON(papers, f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d papers to %s\n", len(papers), outFile)
	}
	return nil
}

// keywordsFromFlags merges the --keywords flag (comma-separated) with
// positional arguments.
func keywordsFromFlags(cmd *cobra.Command, args []string) []string {
	var keywords []string
	raw, _ := cmd.Flags().GetString("keywords")
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return append(keywords, args...)
}

func flagInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func init() {
	searchCmd.Flags().String("keywords", "", "keywords to match, comma-separated (combined with AND)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (0 = config default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("output", "", "also write results as JSON to this file")

	rootCmd.AddCommand(searchCmd)
}
