package service

import (
	"context"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
)

type ListQuery struct {
	Table      string
	ChangeType string
	Limit      string
	Cursor     string
}

type ListResult struct {
	Entries    []entity.AuditLog
	Total      int64
	Limit      int
	NextCursor string
}

type AuditQueryService interface {
	List(ctx context.Context, q ListQuery) (ListResult, error)
	Get(ctx context.Context, id int64) (entity.AuditLog, error)
	Summarize(ctx context.Context) (entity.Summary, error)
}

type CoverageVerifier interface {
	Verify(ctx context.Context) (entity.CoverageReport, error)
}

type SelfTester interface {
	Run(ctx context.Context) entity.SelfTestResult
}
