package persistence

import (
	"context"
	"errors"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"gorm.io/gorm"
)

// RelayOffsetRepository tracks publishing progress outside audit_logs so the
// log itself is never updated.
type RelayOffsetRepository struct {
	db *DB
}

var _ repository.RelayOffsetRepository = (*RelayOffsetRepository)(nil)

func NewRelayOffsetRepository(db *DB) *RelayOffsetRepository {
	return &RelayOffsetRepository{db: db}
}

func (r *RelayOffsetRepository) Load(ctx context.Context, name string) (int64, error) {
	var offset entity.RelayOffset
	err := r.db.Write(ctx).Where("name = ?", name).Take(&offset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return offset.LastID, nil
}

// Save records lastID for name. An offset never moves backwards.
func (r *RelayOffsetRepository) Save(ctx context.Context, name string, lastID int64) error {
	return r.db.Write(ctx).Exec(`
INSERT INTO audit_relay_offsets (name, last_id, updated_at)
VALUES (?, ?, NOW())
ON CONFLICT (name) DO UPDATE
SET last_id = EXCLUDED.last_id, updated_at = EXCLUDED.updated_at
WHERE audit_relay_offsets.last_id < EXCLUDED.last_id`, name, lastID).Error
}
