// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/heuristics-engine/internal/dashboard"
	"github.com/pdiddy/heuristics-engine/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	Long: `Serve starts the dashboard: a pipeline page where a keyword form runs
the full search-download-extract pipeline and shows the results, and an
explore page over a fixed demonstration dataset.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Dashboard.Addr = addr
	}

	backend, err := geminiBackend(cfg.Extraction, httpClient(cfg.Search.HTTPConfig))
	if err != nil {
		return err
	}

	srv := &dashboard.Server{
		Runner: &pipeline.Runner{
			Client:  httpClient(cfg.Search.HTTPConfig),
			Backend: backend,
			Cfg:     cfg,
		},
		Data:    dashboard.NewMockDataset(),
		Default: cfg.Search.MaxResults,
	}

	httpServer := &http.Server{Addr: cfg.Dashboard.Addr, Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	fmt.Fprintf(os.Stderr, "dashboard listening on %s\n", cfg.Dashboard.Addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}
