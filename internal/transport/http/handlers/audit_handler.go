package handlers

import (
	"errors"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

// auditLogResponse is the presented form of an entry. A missing or deleted
// actor is shown as "unknown".
type auditLogResponse struct {
	ID               int64          `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	ActorID          *int64         `json:"actor_id"`
	Actor            string         `json:"actor"`
	TableName        string         `json:"table_name"`
	ChangeType       string         `json:"change_type"`
	AffectedRecordID *int64         `json:"affected_record_id"`
	Payload          map[string]any `json:"payload"`
}

func presentLog(l entity.AuditLog) auditLogResponse {
	payload := map[string]any(l.Payload)
	if payload == nil {
		payload = map[string]any{}
	}
	return auditLogResponse{
		ID:               l.ID,
		Timestamp:        l.Timestamp,
		ActorID:          l.ActorID,
		Actor:            l.DisplayActor(),
		TableName:        l.Table,
		ChangeType:       string(l.ChangeType),
		AffectedRecordID: l.AffectedRecordID,
		Payload:          payload,
	}
}

func presentLogs(logs []entity.AuditLog) []auditLogResponse {
	out := make([]auditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, presentLog(l))
	}
	return out
}

func (h *Handler) listLogs(c *gin.Context) {
	res, err := h.query.List(c.Request.Context(), service.ListQuery{
		Table:      c.Query("table"),
		ChangeType: c.Query("type"),
		Limit:      c.Query("limit"),
		Cursor:     c.Query("cursor"),
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			response.RespondError(c, nethttp.StatusBadRequest, "invalid cursor")
			return
		}
		response.RespondError(c, nethttp.StatusInternalServerError, "list failed")
		return
	}
	total := res.Total
	meta := &response.Meta{NextCursor: res.NextCursor, Total: &total, Limit: res.Limit}
	response.RespondOK(c, nethttp.StatusOK, presentLogs(res.Entries), meta)
}

func (h *Handler) getLog(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, nethttp.StatusBadRequest, "invalid id")
		return
	}

	entry, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.RespondError(c, nethttp.StatusNotFound, "not found")
			return
		}
		response.RespondError(c, nethttp.StatusInternalServerError, "get failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, presentLog(entry), nil)
}

type statusResponse struct {
	Status             entity.CoverageState `json:"status"`
	TotalLogs          int64                `json:"total_logs"`
	LogsLast24h        int64                `json:"logs_last_24h"`
	CountsByTable      []entity.Count       `json:"counts_by_table"`
	CountsByChangeType []entity.Count       `json:"counts_by_change_type"`
	CoveragePercent    float64              `json:"coverage_percent"`
	Coverage           string               `json:"coverage"`
	AuditedTables      []string             `json:"audited_tables"`
	ExpectedTables     []string             `json:"expected_tables"`
	RecentLogs         []auditLogResponse   `json:"recent_logs"`
	VerifiedAt         time.Time            `json:"verified_at"`
}

// status combines the summary with the coverage report. Degraded coverage is
// reported in the body; only a failed read is an error.
func (h *Handler) status(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.query.Summarize(ctx)
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "summary failed")
		return
	}
	report, err := h.verifier.Verify(ctx)
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "coverage check failed")
		return
	}

	audited := make([]string, 0, len(report.Tables))
	for _, t := range report.Tables {
		if t.Status != entity.TableMissing {
			audited = append(audited, t.Table)
		}
	}

	response.RespondOK(c, nethttp.StatusOK, statusResponse{
		Status:             report.State,
		TotalLogs:          summary.TotalCount,
		LogsLast24h:        summary.CountLast24h,
		CountsByTable:      summary.CountsByTable,
		CountsByChangeType: summary.CountsByChangeType,
		CoveragePercent:    report.CoveragePercent,
		Coverage:           report.Coverage,
		AuditedTables:      audited,
		ExpectedTables:     capture.ExpectedTables(),
		RecentLogs:         presentLogs(summary.MostRecent),
		VerifiedAt:         report.CheckedAt,
	}, nil)
}

func (h *Handler) coverage(c *gin.Context) {
	report, err := h.verifier.Verify(c.Request.Context())
	if err != nil {
		response.RespondError(c, nethttp.StatusInternalServerError, "coverage check failed")
		return
	}
	response.RespondOK(c, nethttp.StatusOK, report, nil)
}

type selfTestResponse struct {
	entity.SelfTestResult
	CreatedLog *auditLogResponse `json:"created_log,omitempty"`
	DeletedLog *auditLogResponse `json:"deleted_log,omitempty"`
}

// runSelfTest always answers 200 with the structured result; a failed run is
// a diagnostic, not a request error.
func (h *Handler) runSelfTest(c *gin.Context) {
	res := h.selfTest.Run(c.Request.Context())

	out := selfTestResponse{SelfTestResult: res}
	if res.CreatedLog != nil {
		v := presentLog(*res.CreatedLog)
		out.CreatedLog = &v
	}
	if res.DeletedLog != nil {
		v := presentLog(*res.DeletedLog)
		out.DeletedLog = &v
	}
	response.RespondOK(c, nethttp.StatusOK, out, nil)
}
