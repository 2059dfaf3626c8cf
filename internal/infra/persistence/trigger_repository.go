package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
)

const captureTriggersQuery = `
SELECT trigger_name, event_object_table AS table_name, action_timing, event_manipulation
FROM information_schema.triggers
WHERE trigger_schema = current_schema()
  AND trigger_name LIKE ?
ORDER BY event_object_table, trigger_name, event_manipulation;
`

// TriggerRepository inspects and manages the capture triggers. Reads always
// go to the primary so a status check right after an install sees it.
type TriggerRepository struct {
	db *DB
}

var (
	_ repository.TriggerCatalog   = (*TriggerRepository)(nil)
	_ repository.TriggerInstaller = (*TriggerRepository)(nil)
)

func NewTriggerRepository(db *DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

func (r *TriggerRepository) ListCaptureTriggers(ctx context.Context) ([]entity.CaptureTrigger, error) {
	var triggers []entity.CaptureTrigger
	pattern := escapeLike(capture.TriggerPrefix) + "%"
	if err := r.db.Write(ctx).Raw(captureTriggersQuery, pattern).Scan(&triggers).Error; err != nil {
		return nil, err
	}
	return triggers, nil
}

// Install drops and recreates the capture functions and triggers of every
// table in one transaction. Either all tables end up instrumented or none
// of the changes apply.
func (r *TriggerRepository) Install(ctx context.Context, tables []capture.Table) error {
	if err := capture.Validate(tables); err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		for _, t := range tables {
			if err := r.exec(ctx, capture.InstallStatements(t)); err != nil {
				return fmt.Errorf("install triggers on %s: %w", t.Name, err)
			}
		}
		return nil
	})
}

func (r *TriggerRepository) Uninstall(ctx context.Context, tables []capture.Table) error {
	if err := capture.Validate(tables); err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		for _, t := range tables {
			if err := r.exec(ctx, capture.UninstallStatements(t)); err != nil {
				return fmt.Errorf("uninstall triggers on %s: %w", t.Name, err)
			}
		}
		return nil
	})
}

func (r *TriggerRepository) exec(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if err := r.db.Write(ctx).Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
