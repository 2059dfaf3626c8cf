/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/bootstrap"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/spf13/cobra"
)

var triggerTables []string

var triggersCmd = &cobra.Command{
	Use:   "triggers [install|uninstall|status]",
	Short: "Manage the audit capture triggers",
	Long: `Commands:
  install      Create or replace the capture triggers (idempotent)
  uninstall    Drop the capture triggers and their functions
  status       Report trigger coverage per audited table`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"install", "uninstall", "status"},
	Run: func(cmd *cobra.Command, args []string) {
		action := "status"
		if len(args) > 0 {
			action = args[0]
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.Triggers(cmd.Context(), cfg, action, triggerTables, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "triggers error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	triggersCmd.Flags().StringSliceVar(&triggerTables, "table", nil, "limit to these audited tables (repeatable)")
	rootCmd.AddCommand(triggersCmd)
}
