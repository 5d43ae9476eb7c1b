package main

import (
	"github.com/spf13/cobra"

	"github.com/arwscan/arwscan/internal/platform/config"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "arwscan",
	Short: "Agent-Ready Web inspector",
	Long: `arwscan inspects a web page and its origin domain for machine-consumable
metadata aimed at autonomous agents: llms.txt manifests, .well-known ARW
descriptors, MCP servers, and lightweight-markup machine views. It also
scores how well the page's content serves automated consumption.

Run "arwscan inspect <url>" for a one-shot report, or "arwscan serve" to
expose the inspector as a JSON HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: arwscan.yaml)")
	rootCmd.Version = "0.1.0"
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
