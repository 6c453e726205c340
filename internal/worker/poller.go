// Package worker contains the background settlement poller.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/bakongbot/internal/models"
	"github.com/example/bakongbot/internal/store"
)

// Reconciler settles a single tracked transaction.
type Reconciler interface {
	Reconcile(ctx context.Context, rec models.TransactionRecord) (models.Outcome, error)
}

// Poller re-checks every tracked transaction on a fixed interval.
type Poller struct {
	store      *store.Store
	reconciler Reconciler
	interval   time.Duration
	log        *logrus.Logger
}

// NewPoller creates the settlement poller.
func NewPoller(st *store.Store, reconciler Reconciler, interval time.Duration, log *logrus.Logger) *Poller {
	return &Poller{
		store:      st,
		reconciler: reconciler,
		interval:   interval,
		log:        log,
	}
}

// Run drives settlement passes until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.log.WithField("interval", p.interval.String()).Info("settlement poller started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("settlement poller stopped")
			return
		case <-ticker.C:
			// A pass in flight when shutdown begins runs to completion; the
			// external calls stay bounded by their client timeouts.
			p.process(context.WithoutCancel(ctx))
		}
	}
}

func (p *Poller) process(ctx context.Context) {
	pending := p.store.Snapshot()
	if len(pending) == 0 {
		return
	}

	p.log.WithField("count", len(pending)).Debug("checking tracked transactions")

	for _, rec := range pending {
		if _, err := p.reconciler.Reconcile(ctx, rec); err != nil {
			p.log.WithField("bill_number", rec.BillNumber).WithError(err).
				Warn("settlement check failed, will retry next pass")
		}
	}
}
