package entity

import "time"

// CaptureTrigger is one row of the database trigger catalog that matches the
// capture naming convention.
type CaptureTrigger struct {
	Name      string `gorm:"column:trigger_name" json:"name"`
	Table     string `gorm:"column:table_name" json:"table"`
	Timing    string `gorm:"column:action_timing" json:"timing"`
	Operation string `gorm:"column:event_manipulation" json:"operation"`
}

type TableStatus string

const (
	TableComplete TableStatus = "complete"
	TablePartial  TableStatus = "partial"
	TableMissing  TableStatus = "missing"
)

type CoverageState string

const (
	CoverageOperational CoverageState = "operational"
	CoverageDegraded    CoverageState = "degraded"
	CoverageInactive    CoverageState = "inactive"
)

// TableActivity is the observed log volume of one table inside a window.
type TableActivity struct {
	Table      string     `gorm:"column:table_name" json:"table"`
	Count      int64      `gorm:"column:count" json:"count"`
	LastSeenAt *time.Time `gorm:"column:last_seen_at" json:"last_seen_at"`
}

type TableCoverage struct {
	Table      string       `json:"table"`
	Status     TableStatus  `json:"status"`
	Operations []ChangeType `json:"operations"`
	Missing    []ChangeType `json:"missing,omitempty"`
	Live       bool         `json:"live"`
	RecentLogs int64        `json:"recent_logs"`
	LastSeenAt *time.Time   `json:"last_seen_at,omitempty"`
}

type CoverageReport struct {
	State             CoverageState   `json:"state"`
	CoveragePercent   float64         `json:"coverage_percent"`
	Coverage          string          `json:"coverage"`
	OperationsFound   int             `json:"operations_found"`
	OperationsWanted  int             `json:"operations_expected"`
	OperationCoverage float64         `json:"operation_coverage_percent"`
	Tables            []TableCoverage `json:"tables"`
	UnexpectedTables  []string        `json:"unexpected_tables,omitempty"`
	LivenessWindow    string          `json:"liveness_window"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// Count is a grouped tally keyed by table name or change type.
type Count struct {
	Key   string `gorm:"column:key" json:"key"`
	Count int64  `gorm:"column:count" json:"count"`
}

type Summary struct {
	TotalCount         int64      `json:"total_count"`
	CountLast24h       int64      `json:"count_last_24h"`
	CountsByTable      []Count    `json:"counts_by_table"`
	CountsByChangeType []Count    `json:"counts_by_change_type"`
	MostRecent         []AuditLog `json:"most_recent"`
	GeneratedAt        time.Time  `json:"generated_at"`
}

type SelfTestFailure string

const (
	FailureNone                 SelfTestFailure = ""
	FailureCaptureMissing       SelfTestFailure = "capture_missing"
	FailureReadbackFailed       SelfTestFailure = "readback_failed"
	FailureDeleteCaptureMissing SelfTestFailure = "delete_capture_missing"
	FailureCleanupFailed        SelfTestFailure = "cleanup_failed"
	FailureError                SelfTestFailure = "error"
)

type SelfTestResult struct {
	Status         string          `json:"status"`
	Failure        SelfTestFailure `json:"failure,omitempty"`
	Message        string          `json:"message"`
	Table          string          `json:"table"`
	RecordID       *int64          `json:"record_id,omitempty"`
	LogsBefore     int64           `json:"logs_before"`
	LogsAfter      int64           `json:"logs_after"`
	LogsFinal      int64           `json:"logs_final"`
	CreatedLog     *AuditLog       `json:"created_log,omitempty"`
	DeletedLog     *AuditLog       `json:"deleted_log,omitempty"`
	RecordRemoved  bool            `json:"record_removed"`
	TriggersTested []ChangeType    `json:"triggers_tested"`
}

func (r SelfTestResult) OK() bool {
	return r.Failure == FailureNone
}
