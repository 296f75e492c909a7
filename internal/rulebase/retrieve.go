// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rulebase

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for rule base queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over rule names and
	// descriptions. Empty returns all rules in stored order.
	Query string

	// SourcePage filters by the page a rule was found on. Zero disables
	// the filter.
	SourcePage int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// QueryResult is one retrieved rule with its stored position.
type QueryResult struct {
	Seq         int    `json:"seq" yaml:"seq"`
	RuleID      string `json:"rule_id" yaml:"rule_id"`
	RuleName    string `json:"rule_name" yaml:"rule_name"`
	Description string `json:"description" yaml:"description"`
	SourcePage  int    `json:"source_page" yaml:"source_page"`
}

// Retrieve queries the rule base. Full-text queries are ranked by FTS5
// relevance; filter-only queries return rules in run order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.seq, r.rule_id, r.rule_name, r.description, r.source_page
			FROM rules_fts
			JOIN rules r ON r.rowid = rules_fts.rowid
			WHERE rules_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.seq, r.rule_id, r.rule_name, r.description, r.source_page
			FROM rules r
			WHERE 1=1`)
	}

	if opts.SourcePage > 0 {
		qb.WriteString(` AND r.source_page = ?`)
		args = append(args, opts.SourcePage)
	}

	if useFTS {
		qb.WriteString(` ORDER BY rules_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.seq`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying rule base: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(&qr.Seq, &qr.RuleID, &qr.RuleName, &qr.Description, &qr.SourcePage); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}
