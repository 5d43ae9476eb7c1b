package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arwscan/arwscan/internal/arw"
	"github.com/arwscan/arwscan/internal/inspector"
	"github.com/arwscan/arwscan/internal/platform/logger"
	"github.com/arwscan/arwscan/internal/platform/requestid"
)

var inspectTimeout time.Duration

var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Inspect one page and print its report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New(cfg.LogLevel)

		fetcher := arw.NewHTTPClient()
		engine := arw.NewEngine(
			fetcher,
			arw.NewProber(fetcher, cfg.ProbeTimeout),
			arw.NewMachineViewFinder(fetcher, cfg.ProbeTimeout),
		)
		service := inspector.NewService(engine, nil, log)

		ctx, cancel := context.WithTimeout(cmd.Context(), inspectTimeout)
		defer cancel()
		ctx = requestid.NewContext(ctx, requestid.New())

		report, err := service.Inspect(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", 60*time.Second, "overall inspection timeout")
	rootCmd.AddCommand(inspectCmd)
}
