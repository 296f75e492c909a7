// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuristics-engine/internal/extract"
	"github.com/pdiddy/heuristics-engine/internal/rulebase"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the rule base (store, retrieve, export)",
	Long: `Rules manages a local SQLite rule base built from extraction output.
Use subcommands to ingest the latest run, query rules, or export.`,
}

// --- store subcommand ---

var rulesStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest the extracted rule file into the rule base",
	Long: `Store reads the JSON rule array written by extract (or run) and
replaces the rule base contents with it. An optional paper list adds the
source paper records.`,
	RunE: runRulesStore,
}

func runRulesStore(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	rulesFile, _ := cmd.Flags().GetString("rules-file")
	if rulesFile == "" {
		rulesFile = cfg.Extraction.OutputFile
	}
	rules, err := extract.ReadRules(rulesFile)
	if err != nil {
		return fmt.Errorf("reading rule file: %w", err)
	}

	var papers []types.PaperRecord
	if papersFile, _ := cmd.Flags().GetString("papers"); papersFile != "" {
		if papers, err = readPapers(papersFile); err != nil {
			return err
		}
	}

	store, err := rulebase.NewStore(cfg.RuleBase)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Ingest(context.Background(), papers, rules, os.Stdout)
}

// --- retrieve subcommand ---

var rulesRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the rule base with full-text search and filters",
	Long: `Retrieve searches the rule base using FTS5 full-text search over rule
names and descriptions, optionally filtered by source page. Without a
query, rules are returned in run order.`,
	RunE: runRulesRetrieve,
}

func runRulesRetrieve(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	store, err := rulebase.NewStore(cfg.RuleBase)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(context.Background(), ruleQueryOpts(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []rulebase.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-30s  %-50s  %s\n",
		"Rank", "Rule ID", "Name", "Description", "Page")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 115))

	for i, r := range results {
		desc := r.Description
		if len(desc) > 50 {
			desc = desc[:47] + "..."
		}
		name := r.RuleName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		id := r.RuleID
		if len(id) > 20 {
			id = id[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-30s  %-50s  %d\n",
			i+1, id, name, desc, r.SourcePage)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the rule base to YAML or JSON",
	Long: `Export writes the rule base (or a filtered subset) to
rules/index/export.yaml or export.json. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runRulesExport,
}

func runRulesExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := pipelineConfig()
	store, err := rulebase.NewStore(cfg.RuleBase)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := ruleQueryOpts(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.RuleBase.RulesDir, "index", "export.yaml"))
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to", filepath.Join(cfg.RuleBase.RulesDir, "index", "export.json"))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func ruleQueryOpts(cmd *cobra.Command, args []string) rulebase.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	return rulebase.QueryOptions{
		Query:      queryText,
		SourcePage: page,
		MaxResults: limit,
	}
}

func init() {
	// Store flags.
	rulesStoreCmd.Flags().String("rules-file", "", "rule array to ingest (default: the configured output file)")
	rulesStoreCmd.Flags().String("papers", "", "optional JSON paper list to store alongside the rules")

	// Retrieve flags.
	rulesRetrieveCmd.Flags().String("query", "", "full-text search query")
	rulesRetrieveCmd.Flags().Int("page", 0, "filter by source page (0 = no filter)")
	rulesRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	rulesRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	rulesExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	rulesExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	rulesExportCmd.Flags().Int("page", 0, "filter by source page for partial export")
	rulesExportCmd.Flags().Int("limit", 0, "maximum rules to export (0 = all)")

	rulesCmd.AddCommand(rulesStoreCmd)
	rulesCmd.AddCommand(rulesRetrieveCmd)
	rulesCmd.AddCommand(rulesExportCmd)

	rootCmd.AddCommand(rulesCmd)
}
