package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalogFor(tables map[string][]capture.Operation) []entity.CaptureTrigger {
	var out []entity.CaptureTrigger
	for table, ops := range tables {
		for _, op := range ops {
			out = append(out, entity.CaptureTrigger{
				Name:      capture.TriggerName(table, op),
				Table:     table,
				Timing:    op.Timing,
				Operation: op.Event,
			})
		}
	}
	return out
}

func newCoverage(triggers []entity.CaptureTrigger, activity []entity.TableActivity) (*Coverage, *mockTriggerCatalog, *mockAuditLogRepository) {
	catalog := new(mockTriggerCatalog)
	catalog.On("ListCaptureTriggers", mock.Anything).Return(triggers, nil)
	logs := new(mockAuditLogRepository)
	logs.On("ActivitySince", mock.Anything, mock.Anything).Return(activity, nil)
	return NewCoverage(catalog, logs, 24*time.Hour, quietLogger()), catalog, logs
}

func TestCoverage_FourOfSixTables(t *testing.T) {
	triggers := catalogFor(map[string][]capture.Operation{
		"conferences":  capture.Operations,
		"members":      capture.Operations,
		"news":         capture.Operations,
		"job_postings": capture.Operations,
	})
	cov, _, _ := newCoverage(triggers, nil)

	report, err := cov.Verify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 66.7, report.CoveragePercent)
	assert.Equal(t, "4/6 = 66.7%", report.Coverage)
	assert.Equal(t, entity.CoverageDegraded, report.State)
	assert.Equal(t, 12, report.OperationsFound)
	assert.Equal(t, 18, report.OperationsWanted)

	status := map[string]entity.TableStatus{}
	for _, tc := range report.Tables {
		status[tc.Table] = tc.Status
	}
	assert.Equal(t, map[string]entity.TableStatus{
		"conferences":  entity.TableComplete,
		"members":      entity.TableComplete,
		"news":         entity.TableComplete,
		"job_postings": entity.TableComplete,
		"courses":      entity.TableMissing,
		"projects":     entity.TableMissing,
	}, status)
}

func TestCoverage_PartialAndLiveness(t *testing.T) {
	last := time.Now().Add(-time.Hour)
	all := map[string][]capture.Operation{}
	for _, name := range capture.ExpectedTables() {
		all[name] = capture.Operations
	}
	all["courses"] = []capture.Operation{capture.Insert, capture.Delete}
	all["legacy_events"] = []capture.Operation{capture.Insert}

	cov, _, _ := newCoverage(catalogFor(all), []entity.TableActivity{{Table: "courses", Count: 3, LastSeenAt: &last}})

	report, err := cov.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(100), report.CoveragePercent)
	assert.Equal(t, entity.CoverageDegraded, report.State)
	assert.Equal(t, []string{"legacy_events"}, report.UnexpectedTables)

	var courses entity.TableCoverage
	for _, tc := range report.Tables {
		if tc.Table == "courses" {
			courses = tc
		}
	}
	assert.Equal(t, entity.TablePartial, courses.Status)
	assert.Equal(t, []entity.ChangeType{entity.ChangeCreate, entity.ChangeDelete}, courses.Operations)
	assert.Equal(t, []entity.ChangeType{entity.ChangeUpdate}, courses.Missing)
	assert.True(t, courses.Live)
	assert.Equal(t, int64(3), courses.RecentLogs)
	assert.Equal(t, &last, courses.LastSeenAt)
}

func TestCoverage_States(t *testing.T) {
	cov, _, _ := newCoverage(nil, nil)
	report, err := cov.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.CoverageInactive, report.State)
	assert.Zero(t, report.CoveragePercent)

	all := map[string][]capture.Operation{}
	for _, name := range capture.ExpectedTables() {
		all[name] = capture.Operations
	}
	cov, _, _ = newCoverage(catalogFor(all), nil)
	report, err = cov.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.CoverageOperational, report.State)
	assert.Equal(t, float64(100), report.OperationCoverage)
	for _, tc := range report.Tables {
		assert.False(t, tc.Live, tc.Table)
	}
}

func TestCoverage_CatalogError(t *testing.T) {
	catalog := new(mockTriggerCatalog)
	catalog.On("ListCaptureTriggers", mock.Anything).Return(nil, errors.New("permission denied"))
	logs := new(mockAuditLogRepository)

	_, err := NewCoverage(catalog, logs, time.Hour, quietLogger()).Verify(context.Background())
	assert.Error(t, err)
	logs.AssertNotCalled(t, "ActivitySince", mock.Anything, mock.Anything)
}
