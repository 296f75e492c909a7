// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuristics-engine/internal/pipeline"
	"github.com/pdiddy/heuristics-engine/internal/rulebase"
)

var runCmd = &cobra.Command{
	Use:   "run [keywords...]",
	Short: "Run the full pipeline: search, download, extract, persist",
	Long: `Run executes the complete pipeline for a keyword query: search arXiv,
download the matching PDFs, extract heuristic rules from every substantial
page, and persist the accumulated rules to the output file. With --store
the run is also ingested into the local rule base.`,
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	backend, err := geminiBackend(cfg.Extraction, httpClient(cfg.Search.HTTPConfig))
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Client:  httpClient(cfg.Search.HTTPConfig),
		Backend: backend,
		Cfg:     cfg,
	}

	if useStore, _ := cmd.Flags().GetBool("store"); useStore {
		store, err := rulebase.NewStore(cfg.RuleBase)
		if err != nil {
			return err
		}
		defer store.Close()
		runner.Store = store
	}

	_, err = runner.Run(context.Background(),
		keywordsFromFlags(cmd, args), flagInt(cmd, "max-results"), os.Stdout)
	return err
}

func init() {
	runCmd.Flags().String("keywords", "", "keywords to match, comma-separated (combined with AND)")
	runCmd.Flags().Int("max-results", 0, "maximum number of search results (0 = config default)")
	runCmd.Flags().Bool("store", false, "also ingest the run into the rule base")

	rootCmd.AddCommand(runCmd)
}
