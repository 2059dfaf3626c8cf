package repository

import (
	"context"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
)

// PortalRepository performs the business mutations the audit subsystem needs
// to drive itself: the self-test and the seeder.
type PortalRepository interface {
	CreateConference(ctx context.Context, c *entity.Conference) error
	UpdateConferenceTitle(ctx context.Context, id int64, title string) error
	DeleteConference(ctx context.Context, id int64) error
	ConferenceExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, record any) error
	UpdateColumn(ctx context.Context, record any, column string, value any) error
	Delete(ctx context.Context, record any) error
	AddProjectMember(ctx context.Context, projectID, memberID int64) error
}
