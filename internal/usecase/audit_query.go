package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/pagination"
	"github.com/sirupsen/logrus"
)

const summaryWindow = 24 * time.Hour

type AuditQuery struct {
	repo repository.AuditLogRepository
	cfg  config.Audit
	log  *logrus.Logger
	now  func() time.Time
}

var _ service.AuditQueryService = (*AuditQuery)(nil)

func NewAuditQuery(repo repository.AuditLogRepository, cfg config.Audit, log *logrus.Logger) *AuditQuery {
	return &AuditQuery{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// List returns one page of entries, newest first. Unparseable limit and
// change type values fall back to their defaults instead of failing.
func (a *AuditQuery) List(ctx context.Context, q service.ListQuery) (service.ListResult, error) {
	filter := repository.AuditLogFilter{
		Table:  strings.ToLower(strings.TrimSpace(q.Table)),
		Limit:  a.parseLimit(q.Limit),
		Cursor: strings.TrimSpace(q.Cursor),
	}
	if raw := strings.TrimSpace(q.ChangeType); raw != "" {
		if ct, ok := entity.ParseChangeType(raw); ok {
			filter.ChangeType = ct
		} else {
			a.log.WithField("type", raw).Debug("ignoring unknown change type filter")
		}
	}

	entries, err := a.repo.List(ctx, filter)
	if err != nil {
		if !errors.Is(err, repository.ErrInvalidCursor) {
			a.log.WithError(err).Error("list audit logs failed")
		}
		return service.ListResult{}, err
	}

	countFilter := filter
	countFilter.Cursor = ""
	total, err := a.repo.Count(ctx, countFilter)
	if err != nil {
		a.log.WithError(err).Error("count audit logs failed")
		return service.ListResult{}, err
	}

	res := service.ListResult{Entries: entries, Total: total, Limit: filter.Limit}
	if len(entries) == filter.Limit {
		last := entries[len(entries)-1]
		res.NextCursor = pagination.Encode(last.Timestamp, last.ID)
	}
	return res, nil
}

func (a *AuditQuery) parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return a.cfg.DefaultLimit
	}
	if n > a.cfg.MaxLimit {
		return a.cfg.MaxLimit
	}
	return n
}

func (a *AuditQuery) Get(ctx context.Context, id int64) (entity.AuditLog, error) {
	if id <= 0 {
		return entity.AuditLog{}, repository.ErrNotFound
	}
	entry, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			a.log.WithError(err).Error("get audit log failed")
		}
		return entity.AuditLog{}, err
	}
	return entry, nil
}

// Summarize computes the dashboard snapshot. Every call reads the store.
func (a *AuditQuery) Summarize(ctx context.Context) (entity.Summary, error) {
	now := a.now().UTC()

	total, err := a.repo.Count(ctx, repository.AuditLogFilter{})
	if err != nil {
		a.log.WithError(err).Error("summarize: count failed")
		return entity.Summary{}, err
	}
	recentCount, err := a.repo.CountSince(ctx, now.Add(-summaryWindow))
	if err != nil {
		a.log.WithError(err).Error("summarize: count since failed")
		return entity.Summary{}, err
	}
	byTable, err := a.repo.CountByTable(ctx)
	if err != nil {
		a.log.WithError(err).Error("summarize: count by table failed")
		return entity.Summary{}, err
	}
	byType, err := a.repo.CountByChangeType(ctx)
	if err != nil {
		a.log.WithError(err).Error("summarize: count by change type failed")
		return entity.Summary{}, err
	}
	recent, err := a.repo.List(ctx, repository.AuditLogFilter{Limit: a.cfg.RecentCount})
	if err != nil {
		a.log.WithError(err).Error("summarize: recent entries failed")
		return entity.Summary{}, err
	}

	changeTypes := make([]string, 0, len(entity.ChangeTypes))
	for _, ct := range entity.ChangeTypes {
		changeTypes = append(changeTypes, string(ct))
	}

	return entity.Summary{
		TotalCount:         total,
		CountLast24h:       recentCount,
		CountsByTable:      withZeroCounts(byTable, capture.ExpectedTables()),
		CountsByChangeType: withZeroCounts(byType, changeTypes),
		MostRecent:         recent,
		GeneratedAt:        now,
	}, nil
}

// withZeroCounts appends a zero tally for every key in keys that counts
// does not mention, so dashboards always list the full set.
func withZeroCounts(counts []entity.Count, keys []string) []entity.Count {
	seen := make(map[string]struct{}, len(counts))
	out := make([]entity.Count, 0, len(counts)+len(keys))
	for _, c := range counts {
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	for _, k := range keys {
		if _, ok := seen[k]; !ok {
			out = append(out, entity.Count{Key: k})
		}
	}
	return out
}
