package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/config"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/persistence"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/transport/http/handlers"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/transport/http/middleware"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func Run(ctx context.Context, cfg config.Config) error {
	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	conn, err := OpenDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	triggerRepo := persistence.NewTriggerRepository(conn)
	if cfg.Audit.InstallOnStart {
		if err := triggerRepo.Install(ctx, capture.Tables); err != nil {
			return err
		}
		log.Infof("bootstrap: capture triggers installed on %d tables", len(capture.Tables))
	}

	auditRepo := persistence.NewAuditLogRepository(conn)
	portalRepo := persistence.NewPortalRepository(conn)

	queryUC := usecase.NewAuditQuery(auditRepo, cfg.Audit, log)
	coverageUC := usecase.NewCoverage(triggerRepo, auditRepo, cfg.Audit.LivenessWindow, log)
	selfTestUC := usecase.NewSelfTest(portalRepo, auditRepo, queryUC, cfg.Audit.SelfTestTimeout, cfg.Audit.SelfTestActorID, log)

	probe := usecase.NewCoverageProbe(coverageUC, log)
	if err := probe.Start(ctx, cfg.Audit.ProbeSchedule); err != nil {
		return err
	}
	defer probe.Stop()

	router := NewEngine(cfg, log, handlers.NewHandler(queryUC, coverageUC, selfTestUC, conn))

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("bootstrap: server listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}

	return nil
}

// NewEngine builds the gin engine with the request middleware chain.
func NewEngine(cfg config.Config, log *logrus.Logger, handler *handlers.Handler) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(log, "/healthz", "/metrics"),
		middleware.Metrics(),
		gin.Recovery(),
		middleware.Actor(cfg.Audit.ActorHeader),
	)
	handlers.NewRouter(handler).RegisterRoutes(router)
	return router
}
