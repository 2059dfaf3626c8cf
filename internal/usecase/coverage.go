package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/sirupsen/logrus"
)

// Coverage compares installed capture triggers with the expected tables and
// cross-checks recent log activity. It only reads.
type Coverage struct {
	catalog  repository.TriggerCatalog
	logs     repository.AuditLogRepository
	expected []string
	window   time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

var _ service.CoverageVerifier = (*Coverage)(nil)

func NewCoverage(catalog repository.TriggerCatalog, logs repository.AuditLogRepository, window time.Duration, log *logrus.Logger) *Coverage {
	return &Coverage{
		catalog:  catalog,
		logs:     logs,
		expected: capture.ExpectedTables(),
		window:   window,
		log:      log,
		now:      time.Now,
	}
}

func (c *Coverage) Verify(ctx context.Context) (entity.CoverageReport, error) {
	now := c.now().UTC()

	triggers, err := c.catalog.ListCaptureTriggers(ctx)
	if err != nil {
		c.log.WithError(err).Error("coverage: read trigger catalog failed")
		return entity.CoverageReport{}, err
	}
	activity, err := c.logs.ActivitySince(ctx, now.Add(-c.window))
	if err != nil {
		c.log.WithError(err).Error("coverage: read log activity failed")
		return entity.CoverageReport{}, err
	}

	installed := groupTriggers(triggers)
	seen := make(map[string]entity.TableActivity, len(activity))
	for _, a := range activity {
		seen[a.Table] = a
	}

	report := entity.CoverageReport{
		Tables:           make([]entity.TableCoverage, 0, len(c.expected)),
		OperationsWanted: len(c.expected) * len(entity.ChangeTypes),
		LivenessWindow:   c.window.String(),
		CheckedAt:        now,
	}

	covered, complete := 0, 0
	for _, table := range c.expected {
		ops := installed[table]
		tc := entity.TableCoverage{Table: table, Operations: []entity.ChangeType{}}
		for _, ct := range entity.ChangeTypes {
			if _, ok := ops[ct]; ok {
				tc.Operations = append(tc.Operations, ct)
			} else {
				tc.Missing = append(tc.Missing, ct)
			}
		}
		switch len(tc.Operations) {
		case len(entity.ChangeTypes):
			tc.Status = entity.TableComplete
			complete++
		case 0:
			tc.Status = entity.TableMissing
		default:
			tc.Status = entity.TablePartial
		}
		if len(tc.Operations) > 0 {
			covered++
		}
		if a, ok := seen[table]; ok {
			tc.RecentLogs = a.Count
			tc.LastSeenAt = a.LastSeenAt
			tc.Live = a.Count > 0
		}
		report.OperationsFound += len(tc.Operations)
		report.Tables = append(report.Tables, tc)
	}

	for table := range installed {
		if !contains(c.expected, table) {
			report.UnexpectedTables = append(report.UnexpectedTables, table)
		}
	}
	sort.Strings(report.UnexpectedTables)

	report.CoveragePercent = percent(covered, len(c.expected))
	report.Coverage = fmt.Sprintf("%d/%d = %.1f%%", covered, len(c.expected), report.CoveragePercent)
	report.OperationCoverage = percent(report.OperationsFound, report.OperationsWanted)

	switch {
	case report.OperationsFound == 0:
		report.State = entity.CoverageInactive
	case complete == len(c.expected):
		report.State = entity.CoverageOperational
	default:
		report.State = entity.CoverageDegraded
	}

	if report.State != entity.CoverageOperational {
		c.log.WithFields(logrus.Fields{
			"state":    report.State,
			"coverage": report.Coverage,
		}).Warn("coverage: capture is not fully installed")
	}
	return report, nil
}

// groupTriggers maps table -> installed change types. Triggers on events the
// capture does not use are ignored.
func groupTriggers(triggers []entity.CaptureTrigger) map[string]map[entity.ChangeType]struct{} {
	out := make(map[string]map[entity.ChangeType]struct{})
	for _, t := range triggers {
		op, ok := capture.OperationForEvent(t.Operation)
		if !ok {
			continue
		}
		if out[t.Table] == nil {
			out[t.Table] = make(map[entity.ChangeType]struct{}, len(capture.Operations))
		}
		out[t.Table][op.Change] = struct{}{}
	}
	return out
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
