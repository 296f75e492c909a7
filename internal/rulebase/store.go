// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rulebase persists extracted heuristic rules and paper records in a
// local SQLite database with full-text retrieval. The flat JSON output file
// stays the pipeline's canonical artifact; the rule base adds a queryable
// view over the latest run.
package rulebase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "heuristics.db"
)

// Store manages the rule base SQLite database.
type Store struct {
	db         *sql.DB
	rulesDir   string
	maxResults int
}

// NewStore opens or creates the rule base database at
// rulesDir/index/heuristics.db, creating the schema if it does not exist.
func NewStore(cfg types.RuleBaseConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.RulesDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		rulesDir:   cfg.RulesDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			arxiv_id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			summary TEXT,
			primary_category TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS rules (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			seq INTEGER NOT NULL,
			rule_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			description TEXT NOT NULL,
			source_page INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rules_seq ON rules(seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='rules_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE rules_fts USING fts5(rule_name, description, content=rules, content_rowid=rowid)`,
			`CREATE TRIGGER rules_ai AFTER INSERT ON rules BEGIN
				INSERT INTO rules_fts(rowid, rule_name, description) VALUES (new.rowid, new.rule_name, new.description);
			END`,
			`CREATE TRIGGER rules_ad AFTER DELETE ON rules BEGIN
				INSERT INTO rules_fts(rules_fts, rowid, rule_name, description) VALUES('delete', old.rowid, old.rule_name, old.description);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Ingest replaces the stored rule set with the given run's rules, preserving
// page order, and upserts the paper records the run searched. The previous
// run's rules are dropped, mirroring the overwrite semantics of the JSON
// output file.
func (s *Store) Ingest(ctx context.Context, papers []types.PaperRecord, rules []types.HeuristicRule, w io.Writer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return fmt.Errorf("clearing previous run: %w", err)
	}

	for _, p := range papers {
		authorsJSON, _ := json.Marshal(p.Authors)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO papers (arxiv_id, title, authors, summary, primary_category)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(arxiv_id) DO UPDATE SET
				title=excluded.title, authors=excluded.authors,
				summary=excluded.summary, primary_category=excluded.primary_category`,
			p.ID, p.Title, string(authorsJSON), p.Summary, p.PrimaryCategory,
		)
		if err != nil {
			return fmt.Errorf("upserting paper %s: %w", p.ID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rules (seq, rule_id, rule_name, description, source_page)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rules {
		if _, err := stmt.ExecContext(ctx, i, r.RuleID, r.RuleName, r.Description, r.SourcePage); err != nil {
			return fmt.Errorf("inserting rule %q: %w", r.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "rule base: %d papers, %d rules stored\n", len(papers), len(rules))
	return nil
}
