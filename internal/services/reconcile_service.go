package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/bakongbot/internal/metrics"
	"github.com/example/bakongbot/internal/models"
	"github.com/example/bakongbot/internal/store"
)

// StatusChecker resolves whether a tracked transaction has been paid.
type StatusChecker interface {
	CheckPayment(ctx context.Context, md5Hash string) (models.PaymentStatus, error)
}

// Notifier delivers outcome messages to the requesting chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// ReconcileService drives every tracked transaction to exactly one terminal
// outcome. The scheduler and the manual confirm button both funnel through it,
// and the store's conditional remove arbitrates between them.
type ReconcileService struct {
	store    *store.Store
	checker  StatusChecker
	notifier Notifier
	log      *logrus.Logger
}

// NewReconcileService wires the reconciler to its store, status source and
// notifier.
func NewReconcileService(st *store.Store, checker StatusChecker, notifier Notifier, log *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		store:    st,
		checker:  checker,
		notifier: notifier,
		log:      log,
	}
}

// Reconcile settles one transaction. Expired records retire as EXPIRED without
// a status check, paid records retire as PAID, anything else stays tracked.
// The returned error is non-nil only when the status check itself failed, in
// which case the transaction is untouched.
func (s *ReconcileService) Reconcile(ctx context.Context, rec models.TransactionRecord) (models.Outcome, error) {
	if rec.Expired(time.Now()) {
		return s.retire(ctx, rec.BillNumber, models.OutcomeExpired), nil
	}

	status, err := s.checker.CheckPayment(ctx, rec.MD5Hash)
	if err != nil {
		metrics.StatusCheckErrors.Inc()
		return models.OutcomeNone, err
	}
	if status != models.PaymentStatusPaid {
		return models.OutcomeNone, nil
	}

	return s.retire(ctx, rec.BillNumber, models.OutcomePaid), nil
}

// retire removes the record and, when this caller wins the removal, sends the
// outcome notification. Losing the removal means another path already settled
// the transaction and the result is a silent no-op.
func (s *ReconcileService) retire(ctx context.Context, billNumber string, outcome models.Outcome) models.Outcome {
	rec, ok := s.store.RemoveIfPresent(billNumber)
	if !ok {
		return models.OutcomeNone
	}

	metrics.ReconcileOutcomes.WithLabelValues(string(outcome)).Inc()
	s.log.WithFields(logrus.Fields{
		"bill_number": rec.BillNumber,
		"outcome":     string(outcome),
	}).Info("transaction settled")

	if rec.MessageID != 0 {
		if err := s.notifier.DeleteMessage(ctx, rec.ChatID, rec.MessageID); err != nil {
			metrics.NotifyErrors.Inc()
			s.log.WithField("bill_number", rec.BillNumber).WithError(err).
				Warn("failed to delete QR message")
		}
	}

	text := PaidMessage(rec)
	if outcome == models.OutcomeExpired {
		text = ExpiredMessage(rec)
	}
	if _, err := s.notifier.SendMessage(ctx, rec.ChatID, text); err != nil {
		metrics.NotifyErrors.Inc()
		s.log.WithField("bill_number", rec.BillNumber).WithError(err).
			Warn("failed to send outcome notification")
	}

	return outcome
}

// TriggerCheck runs an on-demand settlement check for one bill number.
func (s *ReconcileService) TriggerCheck(ctx context.Context, billNumber string) (models.CheckResult, error) {
	rec, ok := s.store.Get(billNumber)
	if !ok {
		return models.CheckNotTracked, nil
	}

	outcome, err := s.Reconcile(ctx, rec)
	if err != nil {
		return "", err
	}

	switch outcome {
	case models.OutcomePaid:
		return models.CheckPaid, nil
	case models.OutcomeExpired:
		return models.CheckExpired, nil
	default:
		// Covers a genuine UNPAID answer and the race where another caller
		// settled the record between the read and the removal.
		return models.CheckUnpaid, nil
	}
}
