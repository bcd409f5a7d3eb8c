package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LedgerPruner periodically drops answer-ledger days outside the retention window.
type LedgerPruner struct {
	service  *QuizService
	schedule string
	loc      *time.Location
	logger   *zap.Logger
}

func NewLedgerPruner(service *QuizService, schedule string, loc *time.Location, logger *zap.Logger) *LedgerPruner {
	if loc == nil {
		loc = time.Local
	}
	return &LedgerPruner{service: service, schedule: schedule, loc: loc, logger: logger}
}

// Start runs the cron schedule until ctx is done.
func (p *LedgerPruner) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(p.loc))
	if _, err := c.AddFunc(p.schedule, func() { p.RunOnce(ctx) }); err != nil {
		return err
	}

	c.Start()
	p.logger.Info("ledger pruner started", zap.String("schedule", p.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	p.logger.Info("ledger pruner stopped")
	return nil
}

// RunOnce prunes immediately and logs the result.
func (p *LedgerPruner) RunOnce(ctx context.Context) {
	removed, err := p.service.PruneLedger(ctx)
	if err != nil {
		p.logger.Error("ledger prune failed", zap.Error(err))
		return
	}
	if removed > 0 {
		p.logger.Info("ledger pruned", zap.Int("days_removed", removed))
	}
}
