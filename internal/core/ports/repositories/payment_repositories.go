package repositories

import (
	"context"
	"time"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// PaymentReader defines read operations over payment records.
type PaymentReader interface {
	// FindPaymentByID retrieves a single payment by its identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)
	// FindPaymentByCheckoutSessionID retrieves the payment tied to a hosted
	// checkout session, or apperrors.ErrNotFound when none exists.
	FindPaymentByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Payment, error)
	// ListPayments returns payments matching the filter, newest first, with
	// payer identity columns joined in.
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
	// ListDistinctPayers returns the distinct payers across all payments,
	// ordered by email.
	ListDistinctPayers(ctx context.Context) ([]domain.PaymentPayer, error)
}

// PaymentWriter defines write operations over payment records.
type PaymentWriter interface {
	// SavePayment persists a new payment row. Saving a second pending row for
	// the same checkout session is a no-op rather than an error.
	SavePayment(ctx context.Context, payment domain.Payment) error
	// MarkCompletedBySession transitions the payment for the given checkout
	// session to COMPLETED inside a single transaction. It returns true when
	// this call performed the transition and false when the session had
	// already been completed by an earlier delivery of the same event. When
	// no pending row exists the payment is inserted directly as COMPLETED.
	MarkCompletedBySession(ctx context.Context, payment domain.Payment, completedAt time.Time) (bool, error)
}

// PaymentRepositoryFacade combines payment read and write operations.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
