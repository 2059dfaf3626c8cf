package metrics

import (
	"testing"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/api/audit/logs/{id}", NormalizePath("/api/audit/logs/42"))
	assert.Equal(t, "/api/audit/logs", NormalizePath("/api/audit/logs"))
}

func TestObserveCoverage(t *testing.T) {
	ObserveCoverage(entity.CoverageReport{
		CoveragePercent: 66.7,
		Tables: []entity.TableCoverage{
			{Table: "news", Operations: entity.ChangeTypes, RecentLogs: 4},
			{Table: "courses"},
		},
	})

	assert.Equal(t, 66.7, testutil.ToFloat64(CoveragePercent))
	assert.Equal(t, float64(3), testutil.ToFloat64(TableOperations.WithLabelValues("news")))
	assert.Equal(t, float64(0), testutil.ToFloat64(TableOperations.WithLabelValues("courses")))
	assert.Equal(t, float64(4), testutil.ToFloat64(TableRecentLogs.WithLabelValues("news")))
}

func TestObserveSelfTest(t *testing.T) {
	before := testutil.ToFloat64(SelfTestsTotal.WithLabelValues("capture_missing"))
	ObserveSelfTest(entity.SelfTestResult{Failure: entity.FailureCaptureMissing})
	assert.Equal(t, before+1, testutil.ToFloat64(SelfTestsTotal.WithLabelValues("capture_missing")))
}
