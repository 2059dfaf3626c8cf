/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/bootstrap"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/spf13/cobra"
)

var migrationCmd = &cobra.Command{
	Use:   "migration [command] [version]",
	Short: "Manage the audit trail schema",
	Long: `Applies the embedded schema: the users table, the audited portal
tables, audit_logs with its immutability guard, and the relay offsets.
Capture triggers are not part of the migrations; install them with
"audit-trail triggers install" once the tables exist.

Commands:
  up           Apply all available migrations (default)
  down         Roll back the last migration
  status       Show migration status
  version      Show current version
  redo         Roll back and reapply the last migration
  reset        Roll back all migrations
  up-to        Migrate up to a specific version
  down-to      Migrate down to a specific version`,
	Args:      cobra.RangeArgs(0, 2),
	ValidArgs: []string{"up", "down", "status", "version", "redo", "reset", "up-to", "down-to"},
	Run: func(cmd *cobra.Command, args []string) {
		action, version, err := migrationTarget(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}

		if err := bootstrap.Migrate(cmd.Context(), cfg, action, version); err != nil {
			fmt.Fprintln(os.Stderr, "migration error:", err)
			os.Exit(1)
		}
	},
}

// migrationTarget reads the action and, for up-to and down-to, the version.
func migrationTarget(args []string) (string, int64, error) {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}
	if action != "up-to" && action != "down-to" {
		return action, 0, nil
	}
	if len(args) < 2 {
		return "", 0, fmt.Errorf("version is required for %s", action)
	}
	version, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid version: %w", err)
	}
	return action, version, nil
}

func init() {
	rootCmd.AddCommand(migrationCmd)
}
