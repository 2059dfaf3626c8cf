package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// CoveragePercent is the share of expected tables with at least one
	// capture trigger, as of the last verification.
	CoveragePercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_trigger_coverage_percent",
			Help: "Percentage of expected tables with capture triggers installed",
		},
	)

	// TableOperations is the number of capture operations installed per table.
	TableOperations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audit_table_capture_operations",
			Help: "Capture triggers installed per audited table (0-3)",
		},
		[]string{"table"},
	)

	TableRecentLogs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audit_table_recent_logs",
			Help: "Audit log entries per table inside the liveness window",
		},
		[]string{"table"},
	)

	SelfTestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_self_tests_total",
			Help: "Self-test runs by outcome",
		},
		[]string{"outcome"},
	)

	RelayPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_relay_published_total",
			Help: "Audit log entries published by the relay",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			CoveragePercent, TableOperations, TableRecentLogs,
			SelfTestsTotal, RelayPublishedTotal,
		)
	})
}

// NormalizePath replaces numeric path segments with {id}, so /api/audit/logs/12
// and /api/audit/logs/13 share one series.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveCoverage publishes a verifier report.
func ObserveCoverage(report entity.CoverageReport) {
	CoveragePercent.Set(report.CoveragePercent)
	for _, t := range report.Tables {
		TableOperations.WithLabelValues(t.Table).Set(float64(len(t.Operations)))
		TableRecentLogs.WithLabelValues(t.Table).Set(float64(t.RecentLogs))
	}
}

// ObserveSelfTest counts a self-test run under "passed" or its failure kind.
func ObserveSelfTest(result entity.SelfTestResult) {
	outcome := "passed"
	if !result.OK() {
		outcome = string(result.Failure)
	}
	SelfTestsTotal.WithLabelValues(outcome).Inc()
}

func AddRelayPublished(n int) {
	RelayPublishedTotal.Add(float64(n))
}
