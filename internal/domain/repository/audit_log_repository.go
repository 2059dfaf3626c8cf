package repository

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
)

// AuditLogFilter narrows a listing. Empty fields match everything.
type AuditLogFilter struct {
	Table      string
	ChangeType entity.ChangeType
	RecordID   *int64
	Limit      int
	Cursor     string
}

// AuditLogRepository is the read side of the audit log store. It has no
// methods that write: entries are inserted by the capture triggers only.
type AuditLogRepository interface {
	List(ctx context.Context, filter AuditLogFilter) ([]entity.AuditLog, error)
	Count(ctx context.Context, filter AuditLogFilter) (int64, error)
	GetByID(ctx context.Context, id int64) (entity.AuditLog, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByTable(ctx context.Context) ([]entity.Count, error)
	CountByChangeType(ctx context.Context) ([]entity.Count, error)
	ActivitySince(ctx context.Context, since time.Time) ([]entity.TableActivity, error)
	ListAfterID(ctx context.Context, afterID int64, olderThan time.Time, limit int) ([]entity.AuditLog, error)
}
