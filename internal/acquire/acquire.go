// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads the PDF for each paper record to local storage.
// Downloads are sequential with no retry: a failed paper is reported and
// skipped, and every run re-fetches regardless of what is already on disk.
package acquire

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/heuristics-engine/pkg/types"
)

// arxivPDFBase is the PDF host. Declared as a var so tests can substitute
// an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf"

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Failed     int

	// PDFPaths lists the local paths of successfully downloaded PDFs, in
	// input order.
	PDFPaths []string
}

// Total returns the number of papers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DownloadAll fetches the PDF for each paper, one request at a time,
// printing per-item status and returning a summary. It continues after
// individual failures.
func DownloadAll(client *http.Client, papers []types.PaperRecord, cfg types.AcquisitionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range papers {
		path, err := DownloadPDF(client, p, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed to download: %s.pdf (%v)\n", p.Stem(), err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "downloaded: %s\n", filepath.Base(path))
		result.Downloaded++
		result.PDFPaths = append(result.PDFPaths, path)
	}
	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d failed (total: %d)\n",
		result.Downloaded, result.Failed, result.Total())
	return result
}

// DownloadPDF fetches <pdf-host>/<stem>.pdf for the paper and writes the
// bytes to cfg.PDFDir/<stem>.pdf, creating the directory if absent. The stem
// is the trailing path segment of the paper identifier. Any non-200 status
// is a failure for this paper.
func DownloadPDF(client *http.Client, paper types.PaperRecord, cfg types.AcquisitionConfig) (string, error) {
	stem := paper.Stem()
	if stem == "" {
		return "", fmt.Errorf("paper %q has no identifier", paper.Title)
	}

	if err := os.MkdirAll(cfg.PDFDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", cfg.PDFDir, err)
	}

	pdfURL := fmt.Sprintf("%s/%s.pdf", arxivPDFBase, stem)
	destPath := filepath.Join(cfg.PDFDir, stem+".pdf")

	if err := downloadFile(client, pdfURL, destPath, cfg); err != nil {
		return "", err
	}
	return destPath, nil
}

// downloadFile fetches url to destPath using a temporary file so a partial
// download never lands at the destination.
func downloadFile(client *http.Client, url, destPath string, cfg types.AcquisitionConfig) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
