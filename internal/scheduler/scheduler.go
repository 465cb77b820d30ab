// Package scheduler runs the periodic billing jobs, currently the
// overdue sweep that flips DUE invoices past their due date.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	"github.com/Yassinesbr/support-center/internal/clock"
	"github.com/Yassinesbr/support-center/internal/config"
	obsmetrics "github.com/Yassinesbr/support-center/internal/observability/metrics"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log        *zap.Logger
	BillingSvc billingdomain.Service
	Clock      clock.Clock
	Config     Config                      `optional:"true"`
	BillingCfg *config.BillingConfigHolder `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	billingSvc billingdomain.Service
	billingCfg *config.BillingConfigHolder
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.BillingSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		billingSvc: p.BillingSvc,
		billingCfg: p.BillingCfg,
	}, nil
}

// RunOnce executes a single sweep pass.
func (s *Scheduler) RunOnce(parent context.Context) error {
	began := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	marked, err := s.billingSvc.MarkOverdue(ctx)
	obsmetrics.Billing().ObserveRunDuration("overdue_sweep", time.Since(began))
	if err != nil {
		s.log.Warn("overdue sweep failed", zap.Error(err))
		return err
	}

	if marked > 0 {
		s.log.Info("overdue sweep finished", zap.Int64("marked", marked))
	}
	return nil
}

// RunForever ticks on the configured interval until ctx is cancelled.
// When a billing config holder is present, the sweep only executes
// during the configured sweep hour; the ticks outside it are skipped.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if s.inSweepWindow() {
			if err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Warn("scheduler run failed", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// inSweepWindow reports whether the current UTC hour matches the
// configured sweep hour. Without a holder every tick sweeps.
func (s *Scheduler) inSweepWindow() bool {
	if s.billingCfg == nil {
		return true
	}
	return s.clock.Now().UTC().Hour() == s.billingCfg.Get().OverdueSweepHour
}
