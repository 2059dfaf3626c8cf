package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/pagination"
	"gorm.io/gorm"
)

const auditLogColumns = `a.id, a."timestamp", a.actor_id, COALESCE(u.username, '') AS actor_name, ` +
	`a.table_name, a.change_type, a.affected_record_id, a.payload`

// AuditLogRepository reads audit_logs. Nothing here writes to the table.
type AuditLogRepository struct {
	db *DB
}

var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)

func NewAuditLogRepository(db *DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) entries(ctx context.Context) *gorm.DB {
	return r.db.Read(ctx).
		Table("audit_logs AS a").
		Select(auditLogColumns).
		Joins("LEFT JOIN users u ON u.id = a.actor_id")
}

func applyFilter(query *gorm.DB, filter repository.AuditLogFilter) *gorm.DB {
	if filter.Table != "" {
		query = query.Where("a.table_name = ?", filter.Table)
	}
	if filter.ChangeType != "" {
		query = query.Where("a.change_type = ?", string(filter.ChangeType))
	}
	if filter.RecordID != nil {
		query = query.Where("a.affected_record_id = ?", *filter.RecordID)
	}
	return query
}

func (r *AuditLogRepository) List(ctx context.Context, filter repository.AuditLogFilter) ([]entity.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	query := applyFilter(r.entries(ctx), filter).
		Order(`a."timestamp" DESC`).
		Order("a.id DESC").
		Limit(filter.Limit)

	if filter.Cursor != "" {
		at, id, err := pagination.Decode(filter.Cursor)
		if err != nil {
			if errors.Is(err, pagination.ErrInvalidCursor) {
				return nil, repository.ErrInvalidCursor
			}
			return nil, err
		}
		query = query.Where(`(a."timestamp" < ?) OR (a."timestamp" = ? AND a.id < ?)`, at, at, id)
	}

	var logs []entity.AuditLog
	if err := query.Scan(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *AuditLogRepository) Count(ctx context.Context, filter repository.AuditLogFilter) (int64, error) {
	var n int64
	query := applyFilter(r.db.Read(ctx).Table("audit_logs AS a"), filter)
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AuditLogRepository) GetByID(ctx context.Context, id int64) (entity.AuditLog, error) {
	var logs []entity.AuditLog
	if err := r.entries(ctx).Where("a.id = ?", id).Limit(1).Scan(&logs).Error; err != nil {
		return entity.AuditLog{}, err
	}
	if len(logs) == 0 {
		return entity.AuditLog{}, repository.ErrNotFound
	}
	return logs[0], nil
}

func (r *AuditLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.Read(ctx).
		Model(&entity.AuditLog{}).
		Where(`"timestamp" >= ?`, since).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AuditLogRepository) CountByTable(ctx context.Context) ([]entity.Count, error) {
	return r.countBy(ctx, "table_name")
}

func (r *AuditLogRepository) CountByChangeType(ctx context.Context) ([]entity.Count, error) {
	return r.countBy(ctx, "change_type")
}

func (r *AuditLogRepository) countBy(ctx context.Context, column string) ([]entity.Count, error) {
	var counts []entity.Count
	if err := r.db.Read(ctx).
		Model(&entity.AuditLog{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Order("key").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *AuditLogRepository) ActivitySince(ctx context.Context, since time.Time) ([]entity.TableActivity, error) {
	var activity []entity.TableActivity
	if err := r.db.Read(ctx).
		Model(&entity.AuditLog{}).
		Select(`table_name, COUNT(*) AS count, MAX("timestamp") AS last_seen_at`).
		Where(`"timestamp" >= ?`, since).
		Group("table_name").
		Scan(&activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

// ListAfterID returns entries with id > afterID captured before olderThan, in
// id order. The olderThan bound leaves time for concurrent transactions that
// hold lower ids to commit.
func (r *AuditLogRepository) ListAfterID(ctx context.Context, afterID int64, olderThan time.Time, limit int) ([]entity.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []entity.AuditLog
	if err := r.entries(ctx).
		Where(`a.id > ? AND a."timestamp" < ?`, afterID, olderThan).
		Order("a.id").
		Limit(limit).
		Scan(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
