package worker

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
	"github.com/ayushkumar678u-oss/coaching-app/internal/services"
)

const sweepBatchSize = 50

// ReconciliationWorker periodically finalizes orders stuck in pending,
// compensating for webhooks that never arrived and clients that never
// came back to verify.
type ReconciliationWorker struct {
	payments   *services.PaymentService
	interval   time.Duration
	pendingTTL time.Duration
	log        *logrus.Entry
}

func NewReconciliationWorker(payments *services.PaymentService, interval, pendingTTL time.Duration) *ReconciliationWorker {
	return &ReconciliationWorker{
		payments:   payments,
		interval:   interval,
		pendingTTL: pendingTTL,
		log:        logrus.WithField("component", "reconciler"),
	}
}

// Run blocks until ctx is cancelled, sweeping stuck orders on each tick.
func (w *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.interval.String()).Info("reconciliation worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("reconciliation worker stopped")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.log.WithError(err).Error("reconciliation sweep failed")
			}
		}
	}
}

func (w *ReconciliationWorker) sweep(ctx context.Context) error {
	stuck, err := w.payments.StuckPendingOrders(ctx, w.pendingTTL, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(stuck) == 0 {
		return nil
	}

	w.log.WithField("count", len(stuck)).Info("reconciling stuck orders")

	for _, order := range stuck {
		result, err := w.payments.Finalize(ctx, order.OrderID, "", services.TriggerReconcile)
		if err != nil {
			if errors.Is(err, services.ErrAmountMismatch) {
				w.log.WithField("order_id", order.OrderID).Warn("stuck order failed on amount mismatch")
				continue
			}
			w.log.WithError(err).WithField("order_id", order.OrderID).Warn("failed to reconcile order")
			continue
		}

		// The gateway still reports pending past the session lifetime: the
		// checkout can no longer complete, so expire the order rather than
		// leaving it pending forever.
		if result.Status == models.OrderStatusPending {
			expired, err := w.payments.ExpireOrder(ctx, order.OrderID)
			if err != nil {
				w.log.WithError(err).WithField("order_id", order.OrderID).Warn("failed to expire order")
				continue
			}
			if expired {
				w.log.WithField("order_id", order.OrderID).Info("expired abandoned order")
			}
			continue
		}

		w.log.WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"status":   result.Status,
		}).Info("reconciled stuck order")
	}

	return nil
}
