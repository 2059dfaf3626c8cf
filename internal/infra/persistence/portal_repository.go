package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
)

// PortalRepository writes business rows. Every write runs in its own
// transaction so the acting user reaches the capture triggers.
type PortalRepository struct {
	db  *DB
	now func() time.Time
}

var _ repository.PortalRepository = (*PortalRepository)(nil)

func NewPortalRepository(db *DB) *PortalRepository {
	return &PortalRepository{db: db, now: time.Now}
}

func (r *PortalRepository) CreateConference(ctx context.Context, c *entity.Conference) error {
	return r.Create(ctx, c)
}

func (r *PortalRepository) UpdateConferenceTitle(ctx context.Context, id int64, title string) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		res := r.db.Write(ctx).
			Model(&entity.Conference{}).
			Where("id = ?", id).
			Update("title", title)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *PortalRepository) DeleteConference(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		res := r.db.Write(ctx).Where("id = ?", id).Delete(&entity.Conference{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *PortalRepository) ConferenceExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.Write(ctx).
		Model(&entity.Conference{}).
		Where("id = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts any portal entity, applying the defaults its table expects.
func (r *PortalRepository) Create(ctx context.Context, record any) error {
	if err := entity.ValidateImages(record); err != nil {
		return fmt.Errorf("create %T: %w", record, err)
	}
	if j, ok := record.(*entity.JobPosting); ok {
		j.ApplyPublicationDefaults(r.now())
	}
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		return r.db.Write(ctx).Create(record).Error
	})
}

// UpdateColumn sets one column on an already loaded record, addressed by its
// primary key.
func (r *PortalRepository) UpdateColumn(ctx context.Context, record any, column string, value any) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		res := r.db.Write(ctx).Model(record).Update(column, value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *PortalRepository) Delete(ctx context.Context, record any) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		res := r.db.Write(ctx).Delete(record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

// AddProjectMember links a member to a project. project_members is a pure
// link table and is not captured; linking twice is a no-op.
func (r *PortalRepository) AddProjectMember(ctx context.Context, projectID, memberID int64) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		return r.db.Write(ctx).Exec(addProjectMemberSQL, projectID, memberID).Error
	})
}

const addProjectMemberSQL = "INSERT INTO project_members (project_id, member_id) VALUES (?, ?) ON CONFLICT DO NOTHING"
