// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard serves the interactive front end: a pipeline page that
// runs a keyword search end to end and shows the extracted rules, and an
// explore page over a fixed demonstration dataset.
package dashboard

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/heuristics-engine/internal/pipeline"
	"github.com/pdiddy/heuristics-engine/pkg/types"
)

var templates = template.Must(template.New("").Parse(`
{{define "head"}}
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>{{.Title}} - Heuristics Engine</title>
	<style>
		* { box-sizing: border-box; }
		body { font-family: system-ui, sans-serif; max-width: 900px; margin: 0 auto; padding: 1rem; line-height: 1.5; }
		a { color: #0066cc; }
		.nav { margin-bottom: 1rem; }
		.run-form input[type="text"] { padding: 0.5rem; width: 300px; font-size: 1rem; }
		.run-form input[type="number"] { padding: 0.5rem; width: 80px; font-size: 1rem; }
		.run-form button { padding: 0.5rem 1rem; font-size: 1rem; cursor: pointer; }
		.run-form select { padding: 0.5rem; font-size: 1rem; }
		table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
		th, td { border-bottom: 1px solid #eee; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9rem; }
		th { background: #f5f5f5; }
		.status { color: #666; font-size: 0.9em; margin: 0.5rem 0; }
		.error { color: #b00020; }
		.charts { display: flex; gap: 1rem; flex-wrap: wrap; margin: 1rem 0; }
		.chart h3 { margin: 0 0 0.25rem; font-size: 0.95rem; }
	</style>
</head>
<body>
<div class="nav"><a href="/">Pipeline</a> | <a href="/explore">Explore</a></div>
{{end}}

{{define "foot"}}
</body>
</html>
{{end}}

{{define "index"}}
{{template "head" .}}
<h1>Heuristics Engine</h1>
<form class="run-form" action="/" method="post">
	<input type="text" name="keywords" placeholder="Keywords (comma separated)..." value="{{.Keywords}}">
	<input type="number" name="max_results" min="1" value="{{.MaxResults}}">
	<button type="submit">Run Pipeline</button>
</form>
{{if .Error}}
<p class="status error">{{.Error}}</p>
{{end}}
{{if .Ran}}
<p class="status">{{len .Papers}} papers found, {{.Downloaded}} PDFs downloaded, {{len .Rules}} rules extracted</p>
<h2>Papers</h2>
<table>
	<tr><th>Title</th><th>Authors</th><th>Category</th></tr>
	{{range .Papers}}
	<tr><td><a href="{{.ID}}">{{.Title}}</a></td><td>{{.AuthorList}}</td><td>{{.PrimaryCategory}}</td></tr>
	{{else}}
	<tr><td colspan="3">No papers found.</td></tr>
	{{end}}
</table>
<h2>Extracted Rules</h2>
<table>
	<tr><th>ID</th><th>Name</th><th>Description</th><th>Page</th></tr>
	{{range .Rules}}
	<tr><td>{{.RuleID}}</td><td>{{.RuleName}}</td><td>{{.Description}}</td><td>{{.SourcePage}}</td></tr>
	{{else}}
	<tr><td colspan="4">No rules extracted.</td></tr>
	{{end}}
</table>
{{end}}
<div class="charts">
	<div class="chart"><h3>Series A</h3>{{.ChartA}}</div>
	<div class="chart"><h3>Series B</h3>{{.ChartB}}</div>
</div>
{{template "foot" .}}
{{end}}

{{define "explore"}}
{{template "head" .}}
<h1>Explore</h1>
<form class="run-form" action="/explore" method="get">
	<select name="category">
		<option value="All">All</option>
		{{range .Categories}}
		<option value="{{.}}" {{if eq . $.Selected}}selected{{end}}>{{.}}</option>
		{{end}}
	</select>
	<button type="submit">Filter</button>
</form>
<p class="status">{{len .Points}} points</p>
<table>
	<tr><th>Date</th><th>Value A</th><th>Value B</th><th>Category</th></tr>
	{{range .Points}}
	<tr><td>{{.Timestamp.Format "2006-01-02"}}</td><td>{{printf "%.2f" .ValueA}}</td><td>{{printf "%.2f" .ValueB}}</td><td>{{.Category}}</td></tr>
	{{end}}
</table>
{{template "foot" .}}
{{end}}
`))

// PipelineRunner is the slice of pipeline.Runner the server needs; tests
// substitute a stub.
type PipelineRunner interface {
	Run(ctx context.Context, keywords []string, maxResults int, w io.Writer) (*pipeline.RunOutput, error)
}

// Server renders the dashboard pages. Runs are synchronous: the pipeline
// request blocks until extraction finishes and the page shows the full
// result.
type Server struct {
	Runner  PipelineRunner
	Data    *Dataset
	Default int // default max results shown in the form
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/explore", s.handleExplore)
	return mux
}

// paperRow adapts a PaperRecord for the template.
type paperRow struct {
	types.PaperRecord
	AuthorList string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := map[string]any{
		"Title":      "Pipeline",
		"Keywords":   "",
		"MaxResults": s.Default,
		"Ran":        false,
		"ChartA":     lineChartSVG(s.Data.Points, func(p DataPoint) float64 { return p.ValueA }, "#0066cc"),
		"ChartB":     lineChartSVG(s.Data.Points, func(p DataPoint) float64 { return p.ValueB }, "#cc6600"),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw := r.PostFormValue("keywords")
		keywords := splitKeywords(raw)
		maxResults := s.Default
		if v, err := strconv.Atoi(r.PostFormValue("max_results")); err == nil && v > 0 {
			maxResults = v
		}

		out, err := s.Runner.Run(r.Context(), keywords, maxResults, io.Discard)
		data["Ran"] = true
		data["Keywords"] = raw
		data["MaxResults"] = maxResults
		if err != nil {
			data["Error"] = err.Error()
			out = &pipeline.RunOutput{}
		}
		rows := make([]paperRow, len(out.Papers))
		for i, p := range out.Papers {
			rows[i] = paperRow{PaperRecord: p, AuthorList: strings.Join(p.Authors, ", ")}
		}
		data["Papers"] = rows
		data["Rules"] = out.Rules
		data["Downloaded"] = out.Downloads.Downloaded
	}

	templates.ExecuteTemplate(w, "index", data)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("category")
	if selected == "" {
		selected = "All"
	}

	data := map[string]any{
		"Title":      "Explore",
		"Categories": s.Data.Categories(),
		"Selected":   selected,
		"Points":     s.Data.FilterCategory(selected),
	}
	templates.ExecuteTemplate(w, "explore", data)
}

// splitKeywords parses the comma-separated form field, dropping blanks.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
