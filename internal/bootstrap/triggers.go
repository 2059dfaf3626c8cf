package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/persistence"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/usecase"
)

// Triggers runs an administrative trigger command: install, uninstall or
// status. Only install and uninstall change the database.
func Triggers(ctx context.Context, cfg config.Config, action string, tables []string, out io.Writer) error {
	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	conn, err := OpenDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	selected, err := selectTables(tables)
	if err != nil {
		return err
	}

	repo := persistence.NewTriggerRepository(conn)
	switch action {
	case "install":
		if err := repo.Install(ctx, selected); err != nil {
			return err
		}
		log.Infof("triggers: installed on %s", strings.Join(tableNames(selected), ", "))
		return nil
	case "uninstall":
		if err := repo.Uninstall(ctx, selected); err != nil {
			return err
		}
		log.Infof("triggers: removed from %s", strings.Join(tableNames(selected), ", "))
		return nil
	case "status":
		verifier := usecase.NewCoverage(repo, persistence.NewAuditLogRepository(conn), cfg.Audit.LivenessWindow, log)
		report, err := verifier.Verify(ctx)
		if err != nil {
			return err
		}
		return WriteCoverage(out, report)
	}
	return fmt.Errorf("unknown triggers command %q", action)
}

// selectTables resolves table names against the capture configuration. No
// names selects every audited table.
func selectTables(names []string) ([]capture.Table, error) {
	if len(names) == 0 {
		return capture.Tables, nil
	}
	out := make([]capture.Table, 0, len(names))
	for _, name := range names {
		t, ok := capture.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("table %q is not audited", name)
		}
		out = append(out, t)
	}
	return out, nil
}

func tableNames(tables []capture.Table) []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names
}

func WriteCoverage(out io.Writer, report entity.CoverageReport) error {
	if _, err := fmt.Fprintf(out, "state: %s\ncoverage: %s\noperations: %d/%d (%.1f%%)\n\n",
		report.State, report.Coverage, report.OperationsFound, report.OperationsWanted, report.OperationCoverage); err != nil {
		return err
	}
	for _, t := range report.Tables {
		ops := make([]string, 0, len(t.Operations))
		for _, op := range t.Operations {
			ops = append(ops, string(op))
		}
		live := "idle"
		if t.Live {
			live = "live"
		}
		if _, err := fmt.Fprintf(out, "%-14s %-9s %-22s %s (%d in %s)\n",
			t.Table, t.Status, strings.Join(ops, ","), live, t.RecentLogs, report.LivenessWindow); err != nil {
			return err
		}
	}
	for _, t := range report.UnexpectedTables {
		if _, err := fmt.Fprintf(out, "unexpected capture triggers on %s\n", t); err != nil {
			return err
		}
	}
	return nil
}
