package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const selfTestTable = "conferences"

// SelfTest drives a synthetic conference through create and delete and checks
// that both mutations were captured. The synthetic row is always removed.
type SelfTest struct {
	portal  repository.PortalRepository
	logs    repository.AuditLogRepository
	query   service.AuditQueryService
	timeout time.Duration
	actorID int64
	log     *logrus.Logger
	now     func() time.Time
}

var _ service.SelfTester = (*SelfTest)(nil)

// NewSelfTest builds a self-tester. actorID attributes runs whose context
// carries no acting user; zero leaves them unattributed.
func NewSelfTest(portal repository.PortalRepository, logs repository.AuditLogRepository, query service.AuditQueryService, timeout time.Duration, actorID int64, log *logrus.Logger) *SelfTest {
	return &SelfTest{
		portal:  portal,
		logs:    logs,
		query:   query,
		timeout: timeout,
		actorID: actorID,
		log:     log,
		now:     time.Now,
	}
}

func (s *SelfTest) Run(ctx context.Context) entity.SelfTestResult {
	res := entity.SelfTestResult{
		Table:          selfTestTable,
		TriggersTested: []entity.ChangeType{},
	}

	ctx = repository.PreferPrimary(ctx)
	if _, ok := actor.FromContext(ctx); !ok && s.actorID > 0 {
		ctx = actor.WithID(ctx, s.actorID)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	before, err := s.countLogs(ctx)
	if err != nil {
		fail(&res, entity.FailureError, "count audit logs: %v", err)
		return s.finish(res)
	}
	res.LogsBefore = before

	conf := s.syntheticConference()
	if err := s.portal.CreateConference(ctx, conf); err != nil {
		fail(&res, entity.FailureError, "create synthetic conference: %v", err)
		return s.finish(res)
	}
	id := conf.ID
	res.RecordID = &id

	s.verifyCreate(ctx, &res, id)
	s.cleanup(ctx, &res, id)

	return s.finish(res)
}

func (s *SelfTest) verifyCreate(ctx context.Context, res *entity.SelfTestResult, id int64) {
	if after, err := s.countLogs(ctx); err == nil {
		res.LogsAfter = after
	}

	created, err := s.findLog(ctx, entity.ChangeCreate, id)
	if err != nil {
		fail(res, entity.FailureError, "look up CREATE entry: %v", err)
		return
	}
	if created == nil {
		fail(res, entity.FailureCaptureMissing, "no CREATE entry was captured for %s/%d", selfTestTable, id)
		return
	}
	res.TriggersTested = append(res.TriggersTested, entity.ChangeCreate)

	readback, err := s.query.Get(ctx, created.ID)
	if err != nil {
		fail(res, entity.FailureReadbackFailed, "CREATE entry %d was captured but could not be read back: %v", created.ID, err)
		return
	}
	if readback.ID != created.ID || readback.ChangeType != entity.ChangeCreate {
		fail(res, entity.FailureReadbackFailed, "CREATE entry %d read back as a different entry", created.ID)
		return
	}
	res.CreatedLog = &readback
}

// cleanup deletes the synthetic row on a context detached from the caller,
// so an expired request still removes what it created.
func (s *SelfTest) cleanup(ctx context.Context, res *entity.SelfTestResult, id int64) {
	cleanupCtx, cancel := s.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	if err := s.portal.DeleteConference(cleanupCtx, id); err != nil {
		s.log.WithError(err).WithField("record_id", id).Error("self-test: cleanup failed")
		fail(res, entity.FailureCleanupFailed, "delete synthetic conference %d: %v", id, err)
		return
	}

	deleted, err := s.findLog(cleanupCtx, entity.ChangeDelete, id)
	switch {
	case err != nil:
		fail(res, entity.FailureError, "look up DELETE entry: %v", err)
	case deleted == nil:
		fail(res, entity.FailureDeleteCaptureMissing, "no DELETE entry was captured for %s/%d", selfTestTable, id)
	default:
		res.DeletedLog = deleted
		res.TriggersTested = append(res.TriggersTested, entity.ChangeDelete)
	}

	exists, err := s.portal.ConferenceExists(cleanupCtx, id)
	if err != nil {
		fail(res, entity.FailureError, "check synthetic conference removal: %v", err)
	} else if exists {
		fail(res, entity.FailureCleanupFailed, "synthetic conference %d still exists", id)
	}
	res.RecordRemoved = err == nil && !exists

	if final, err := s.countLogs(cleanupCtx); err == nil {
		res.LogsFinal = final
	}
}

func (s *SelfTest) finish(res entity.SelfTestResult) entity.SelfTestResult {
	fields := logrus.Fields{
		"table":           res.Table,
		"triggers_tested": res.TriggersTested,
	}
	if res.RecordID != nil {
		fields["record_id"] = *res.RecordID
	}
	if res.OK() {
		res.Status = "passed"
		res.Message = fmt.Sprintf("captured CREATE and DELETE for %s/%d", res.Table, *res.RecordID)
		s.log.WithFields(fields).Info("self-test passed")
	} else {
		res.Status = "failed"
		fields["failure"] = res.Failure
		s.log.WithFields(fields).Warn("self-test failed: " + res.Message)
	}
	metrics.ObserveSelfTest(res)
	return res
}

func (s *SelfTest) findLog(ctx context.Context, ct entity.ChangeType, id int64) (*entity.AuditLog, error) {
	entries, err := s.logs.List(ctx, repository.AuditLogFilter{
		Table:      selfTestTable,
		ChangeType: ct,
		RecordID:   &id,
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (s *SelfTest) countLogs(ctx context.Context) (int64, error) {
	return s.logs.Count(ctx, repository.AuditLogFilter{Table: selfTestTable})
}

func (s *SelfTest) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// The row has no creator: attribution comes from the acting user published
// to the transaction, which fails open when that user does not exist.
func (s *SelfTest) syntheticConference() *entity.Conference {
	now := s.now().UTC()
	tag := uuid.NewString()[:8]
	return &entity.Conference{
		Title:       "audit self-test " + tag,
		Speaker:     "audit-trail",
		ScheduledAt: &now,
		Description: "Synthetic record created by the audit self-test. It is deleted immediately.",
		Image:       datatypes.NewJSONType(entity.ExternalImage("https://example.invalid/audit-self-test.png")),
		Link:        "https://example.invalid/audit-self-test/" + tag,
	}
}

// fail records the first failure; later ones are consequences of it.
func fail(res *entity.SelfTestResult, kind entity.SelfTestFailure, format string, args ...any) {
	if !res.OK() {
		return
	}
	res.Failure = kind
	res.Message = fmt.Sprintf(format, args...)
}
