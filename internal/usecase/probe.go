package usecase

import (
	"context"
	"time"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/service"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/infra/metrics"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const probeTimeout = 30 * time.Second

// CoverageProbe runs the verifier on a cron schedule and exports the result
// as metrics. It never repairs what it finds.
type CoverageProbe struct {
	verifier service.CoverageVerifier
	log      *logrus.Logger
	cron     *cron.Cron
}

func NewCoverageProbe(verifier service.CoverageVerifier, log *logrus.Logger) *CoverageProbe {
	return &CoverageProbe{verifier: verifier, log: log, cron: cron.New()}
}

// Start schedules the probe and runs it once immediately. An empty schedule
// disables the probe.
func (p *CoverageProbe) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := p.cron.AddFunc(schedule, func() { p.Probe(ctx) }); err != nil {
		return err
	}
	p.cron.Start()
	go p.Probe(ctx)
	p.log.Infof("coverage-probe: scheduled %q", schedule)
	return nil
}

// Stop waits for a running probe to finish.
func (p *CoverageProbe) Stop() {
	<-p.cron.Stop().Done()
}

func (p *CoverageProbe) Probe(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	report, err := p.verifier.Verify(ctx)
	if err != nil {
		p.log.WithError(err).Warn("coverage-probe: verify failed")
		return
	}
	metrics.ObserveCoverage(report)
	p.log.WithFields(logrus.Fields{
		"state":    report.State,
		"coverage": report.Coverage,
	}).Debug("coverage-probe: done")
}
