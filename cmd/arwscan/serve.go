package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/arwscan/arwscan/internal/arw"
	"github.com/arwscan/arwscan/internal/history"
	"github.com/arwscan/arwscan/internal/inspector"
	"github.com/arwscan/arwscan/internal/platform/logger"
	"github.com/arwscan/arwscan/internal/platform/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the inspection HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.New(cfg.LogLevel)

		store, err := history.NewStore(cfg.HistoryPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer func() { _ = store.Close() }()

		fetcher := arw.NewHTTPClient()
		engine := arw.NewEngine(
			fetcher,
			arw.NewProber(fetcher, cfg.ProbeTimeout),
			arw.NewMachineViewFinder(fetcher, cfg.ProbeTimeout),
		)

		service := inspector.NewService(engine, store, log)
		transport := inspector.NewTransport(service, store, log)

		mux := http.NewServeMux()
		transport.RegisterRoutes(mux)

		handler := middleware.RequestID(middleware.Logging(log)(mux))

		addr := ":" + cfg.Port
		log.Info("arwscan api listening", "addr", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
