package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPortalRepository_CreateConferencePublishesActor(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config\('audit.actor_id', \$1, true\)`).
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "conferences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	c := &entity.Conference{
		Title:   "Audit Day",
		Speaker: "Ada",
		Image:   datatypes.NewJSONType(entity.ExternalImage("https://example.org/a.png")),
		Link:    "https://example.org",
	}
	ctx := actor.WithID(context.Background(), 42)
	require.NoError(t, NewPortalRepository(db).CreateConference(ctx, c))
	assert.Equal(t, int64(7), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_CreateJobPostingAppliesDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "job_postings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	repo := NewPortalRepository(db)
	repo.now = func() time.Time { return fixed }

	job := &entity.JobPosting{
		Title:   "Backend intern",
		Company: "Acme",
		Image:   datatypes.NewJSONType(entity.BlobImage("sha256:9f2c", "image/png")),
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotNil(t, job.PublishedAt)
	require.NotNil(t, job.ExpiresAt)
	assert.Equal(t, fixed, *job.PublishedAt)
	assert.Equal(t, fixed.Add(entity.JobPostingLifetime), *job.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_DeleteConferenceNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "conferences" WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewPortalRepository(db).DeleteConference(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_UpdateConferenceTitle(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "conferences" SET "title"=\$1 WHERE id = \$2`).
		WithArgs("Renamed", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPortalRepository(db).UpdateConferenceTitle(context.Background(), 5, "Renamed"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_ConferenceExists(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "conferences" WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := NewPortalRepository(db).ConferenceExists(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_UpdateColumnByPrimaryKey(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "news" SET "source"=\$1 WHERE .*"id" = \$2`).
		WithArgs("campus paper", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewPortalRepository(db).UpdateColumn(context.Background(), &entity.News{ID: 12}, "source", "campus paper")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_DeleteByPrimaryKey(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "courses" WHERE .*"id" = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPortalRepository(db).Delete(context.Background(), &entity.Course{ID: 4}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_CreateRejectsInvalidImage(t *testing.T) {
	db, mock := newMockDB(t)

	c := &entity.Conference{
		Title:   "Audit Day",
		Speaker: "Ada",
		Image:   datatypes.NewJSONType(entity.ImageRef{Kind: "gif", URL: "https://x", Digest: "sha256:abc"}),
		Link:    "https://example.org",
	}
	err := NewPortalRepository(db).CreateConference(context.Background(), c)
	assert.ErrorIs(t, err, entity.ErrInvalidImageRef)
	assert.Zero(t, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPortalRepository_AddProjectMember(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO project_members \(project_id, member_id\) VALUES \(\$1, \$2\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(3), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPortalRepository(db).AddProjectMember(context.Background(), 3, 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}
