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

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Publish captured audit entries to NATS JetStream",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.Relay(ctx, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "relay error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
}
