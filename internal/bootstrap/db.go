package bootstrap

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/persistence"
	"github.com/sirupsen/logrus"
)

// OpenDB connects and pings the database, bounded by the configured connect
// timeout.
func OpenDB(ctx context.Context, cfg config.Config, log *logrus.Logger) (*persistence.DB, error) {
	start := time.Now()
	conn, err := persistence.New(ctx, persistence.Config{
		WriteDSN:          cfg.Database.WriteDSN,
		ReadDSN:           cfg.Database.ReadDSN,
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
		SlowQuery:         cfg.Database.SlowQuery,
		Logger:            log,
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("bootstrap: db init in %s", time.Since(start))

	pingCtx := ctx
	if cfg.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()
	}
	if err := conn.Ping(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}
	log.Debugf("bootstrap: db ping in %s", time.Since(start))
	return conn, nil
}
