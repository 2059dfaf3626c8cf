package bootstrap

import (
	"context"
	"errors"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/messaging"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/persistence"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/usecase"
)

// Relay publishes captured audit entries to JetStream until ctx is done.
func Relay(ctx context.Context, cfg config.Config) error {
	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := OpenDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	natsClient, err := messaging.NewNATS(ctx, cfg.NATS)
	if err != nil {
		return err
	}
	if natsClient == nil {
		return errors.New("nats url is required")
	}
	defer natsClient.Close()

	relay := usecase.NewRelay(
		persistence.NewAuditLogRepository(conn),
		persistence.NewRelayOffsetRepository(conn),
		natsClient,
		cfg.Relay,
		log,
	)
	relay.Run(ctx)
	return nil
}
