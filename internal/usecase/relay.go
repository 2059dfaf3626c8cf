package usecase

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/repository"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/metrics"
	"github.com/sirupsen/logrus"
)

// AuditPublisher delivers one audit entry downstream.
type AuditPublisher interface {
	PublishAuditEntry(ctx context.Context, entry entity.AuditLog) error
}

// Relay forwards committed audit entries to a publisher in id order and
// remembers how far it got. Entries younger than the settle delay are left
// for the next pass. Ids are handed out before commit, so a hole in the
// sequence may be a transaction that is still open: the relay stops in front
// of a hole until the entry after it is older than MaxTxAge, after which the
// missing id is taken to be rolled back.
type Relay struct {
	logs    repository.AuditLogRepository
	offsets repository.RelayOffsetRepository
	pub     AuditPublisher
	cfg     config.Relay
	log     *logrus.Logger
	now     func() time.Time
}

func NewRelay(logs repository.AuditLogRepository, offsets repository.RelayOffsetRepository, pub AuditPublisher, cfg config.Relay, log *logrus.Logger) *Relay {
	return &Relay{logs: logs, offsets: offsets, pub: pub, cfg: cfg, log: log, now: time.Now}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	interval := r.cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	r.log.Infof("relay: started (name=%s, batch=%d, interval=%s)", r.cfg.Name, r.cfg.BatchSize, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := r.Process(ctx)
		if err != nil && ctx.Err() == nil {
			r.log.WithError(err).Warn("relay: process failed")
		}
		// A full batch means there is likely more waiting.
		if err == nil && n > 0 && n == r.cfg.BatchSize {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		select {
		case <-ctx.Done():
			r.log.Info("relay: stopped")
			return
		case <-ticker.C:
		}
	}
}

// Process publishes one batch and returns how many entries went out. The
// offset advances past every entry published before a failure or an open gap.
func (r *Relay) Process(ctx context.Context) (int, error) {
	offset, err := r.offsets.Load(ctx, r.cfg.Name)
	if err != nil {
		return 0, err
	}
	now := r.now()
	entries, err := r.logs.ListAfterID(ctx, offset, now.Add(-r.cfg.SettleDelay), r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	var publishErr error
	for _, entry := range entries {
		if entry.ID != offset+1 && r.gapMayStillCommit(entry, now) {
			r.log.WithFields(logrus.Fields{
				"after_id": offset,
				"next_id":  entry.ID,
			}).Debug("relay: waiting on id gap")
			break
		}
		if err := r.pub.PublishAuditEntry(ctx, entry); err != nil {
			publishErr = err
			r.log.WithError(err).WithField("audit_id", entry.ID).Warn("relay: publish failed")
			break
		}
		offset = entry.ID
		published++
	}

	if published > 0 {
		if err := r.offsets.Save(ctx, r.cfg.Name, offset); err != nil {
			return published, err
		}
		metrics.AddRelayPublished(published)
	}
	return published, publishErr
}

// gapMayStillCommit reports whether the ids missing before entry could belong
// to a transaction that has not committed yet. A missing id was drawn before
// entry was written, so its transaction is at least as old as entry.
func (r *Relay) gapMayStillCommit(entry entity.AuditLog, now time.Time) bool {
	maxAge := r.cfg.MaxTxAge
	if maxAge <= 0 {
		maxAge = defaultMaxTxAge
	}
	return now.Sub(entry.Timestamp) < maxAge
}

const defaultMaxTxAge = 2 * time.Minute
