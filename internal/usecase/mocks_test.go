package usecase

import (
	"context"
	"io"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type mockAuditLogRepository struct{ mock.Mock }

func (m *mockAuditLogRepository) List(ctx context.Context, filter repository.AuditLogFilter) ([]entity.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]entity.AuditLog)
	return logs, args.Error(1)
}

func (m *mockAuditLogRepository) Count(ctx context.Context, filter repository.AuditLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuditLogRepository) GetByID(ctx context.Context, id int64) (entity.AuditLog, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entity.AuditLog), args.Error(1)
}

func (m *mockAuditLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuditLogRepository) CountByTable(ctx context.Context) ([]entity.Count, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).([]entity.Count)
	return counts, args.Error(1)
}

func (m *mockAuditLogRepository) CountByChangeType(ctx context.Context) ([]entity.Count, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).([]entity.Count)
	return counts, args.Error(1)
}

func (m *mockAuditLogRepository) ActivitySince(ctx context.Context, since time.Time) ([]entity.TableActivity, error) {
	args := m.Called(ctx, since)
	activity, _ := args.Get(0).([]entity.TableActivity)
	return activity, args.Error(1)
}

func (m *mockAuditLogRepository) ListAfterID(ctx context.Context, afterID int64, olderThan time.Time, limit int) ([]entity.AuditLog, error) {
	args := m.Called(ctx, afterID, olderThan, limit)
	logs, _ := args.Get(0).([]entity.AuditLog)
	return logs, args.Error(1)
}

type mockTriggerCatalog struct{ mock.Mock }

func (m *mockTriggerCatalog) ListCaptureTriggers(ctx context.Context) ([]entity.CaptureTrigger, error) {
	args := m.Called(ctx)
	triggers, _ := args.Get(0).([]entity.CaptureTrigger)
	return triggers, args.Error(1)
}

type mockPortalRepository struct{ mock.Mock }

func (m *mockPortalRepository) CreateConference(ctx context.Context, c *entity.Conference) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockPortalRepository) UpdateConferenceTitle(ctx context.Context, id int64, title string) error {
	return m.Called(ctx, id, title).Error(0)
}

func (m *mockPortalRepository) DeleteConference(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPortalRepository) ConferenceExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPortalRepository) Create(ctx context.Context, record any) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockPortalRepository) UpdateColumn(ctx context.Context, record any, column string, value any) error {
	return m.Called(ctx, record, column, value).Error(0)
}

func (m *mockPortalRepository) Delete(ctx context.Context, record any) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockPortalRepository) AddProjectMember(ctx context.Context, projectID, memberID int64) error {
	return m.Called(ctx, projectID, memberID).Error(0)
}

type mockAuditQuery struct{ mock.Mock }

func (m *mockAuditQuery) List(ctx context.Context, q service.ListQuery) (service.ListResult, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(service.ListResult), args.Error(1)
}

func (m *mockAuditQuery) Get(ctx context.Context, id int64) (entity.AuditLog, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entity.AuditLog), args.Error(1)
}

func (m *mockAuditQuery) Summarize(ctx context.Context) (entity.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Summary), args.Error(1)
}

type mockOffsets struct{ mock.Mock }

func (m *mockOffsets) Load(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOffsets) Save(ctx context.Context, name string, lastID int64) error {
	return m.Called(ctx, name, lastID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishAuditEntry(ctx context.Context, entry entity.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(ctx context.Context) (entity.CoverageReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.CoverageReport), args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }
