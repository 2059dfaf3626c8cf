/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/bootstrap"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the audit query API",
	Long: `Serve the audit log over HTTP:

  GET  /api/audit/logs        List entries, newest first
  GET  /api/audit/logs/:id    Fetch one entry
  GET  /api/audit/status      Capture health and per-table counts
  GET  /api/audit/coverage    Installed capture triggers per table
  POST /api/audit/test        Run the end-to-end capture self-test

Prometheus metrics are exposed on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.Run(ctx, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "server error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
