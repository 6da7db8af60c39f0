// Package jobs runs the store's housekeeping on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/pkg/metrics"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

// IdempotencyCleaner drops expired idempotency keys.
type IdempotencyCleaner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CartReleaser cancels carts left idle for too long.
type CartReleaser interface {
	ReleaseAbandonedCarts(ctx context.Context, idle time.Duration) (int, error)
}

// ReportSender mails the end-of-day report.
type ReportSender interface {
	SendDailyReport(ctx context.Context) error
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	sched   *cron.Cron
	keys    IdempotencyCleaner
	carts   CartReleaser
	reports ReportSender
	cartTTL time.Duration
}

// New registers the jobs enabled by cfg. reports may be nil.
func New(cfg config.JobsConfig, loc *time.Location, keys IdempotencyCleaner, carts CartReleaser, reports ReportSender) (*Scheduler, error) {
	s := &Scheduler{
		sched:   cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
		keys:    keys,
		carts:   carts,
		reports: reports,
		cartTTL: time.Duration(cfg.CartTTLHours) * time.Hour,
	}

	if _, err := s.sched.AddFunc("@hourly", s.CleanIdempotencyKeys); err != nil {
		return nil, fmt.Errorf("schedule idempotency cleanup: %w", err)
	}
	if s.cartTTL > 0 {
		if _, err := s.sched.AddFunc("@every 15m", s.ReleaseCarts); err != nil {
			return nil, fmt.Errorf("schedule cart release: %w", err)
		}
	}
	if reports != nil && cfg.ReportCron != "" && len(cfg.ReportEmailTo) > 0 {
		if _, err := s.sched.AddFunc(cfg.ReportCron, s.SendReport); err != nil {
			return nil, fmt.Errorf("schedule daily report %q: %w", cfg.ReportCron, err)
		}
	}
	return s, nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.sched.Entries())
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop prevents new runs and waits up to ctx for running jobs.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.sched.Stop().Done():
	case <-ctx.Done():
		zap.S().Warn("scheduler stopped with jobs still running")
	}
}

// CleanIdempotencyKeys deletes expired idempotency records
func (s *Scheduler) CleanIdempotencyKeys() {
	s.run("idempotency_cleanup", func(ctx context.Context) error {
		n, err := s.keys.DeleteExpired(ctx)
		if err == nil && n > 0 {
			zap.S().Infow("expired idempotency keys removed", "count", n)
		}
		return err
	})
}

// ReleaseCarts returns the stock held by abandoned carts
func (s *Scheduler) ReleaseCarts() {
	s.run("cart_release", func(ctx context.Context) error {
		n, err := s.carts.ReleaseAbandonedCarts(ctx, s.cartTTL)
		if n > 0 {
			zap.S().Infow("abandoned carts released", "count", n, "idle", s.cartTTL)
		}
		return err
	})
}

// SendReport emails the daily report
func (s *Scheduler) SendReport() {
	s.run("daily_report", s.reports.SendDailyReport)
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("job panicked", "job", name, "panic", r)
			metrics.JobRun(name, fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	err := fn(ctx)
	metrics.JobRun(name, err)
	if err != nil {
		zap.S().Errorw("job failed", "job", name, "error", err)
	}
}
