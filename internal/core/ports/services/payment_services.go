package services

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/dto"
)

// PaymentReaderSvc defines read operations over payment history.
type PaymentReaderSvc interface {
	// ListPayments returns the payment history visible to the caller. Admins
	// see every payment and may filter by purpose or payer email; business
	// owners see their business's payments; individuals see their own.
	ListPayments(ctx context.Context, caller domain.Caller, req dto.ListPaymentsRequest) (*domain.PaymentHistory, error)
}

// CheckoutSvc defines operations that start a hosted checkout.
type CheckoutSvc interface {
	// CreatePackageCheckout starts a checkout session for the caller buying a
	// training package for themselves.
	CreatePackageCheckout(ctx context.Context, caller domain.Caller, req dto.PackageCheckoutRequest) (*domain.CheckoutSession, error)

	// CreateStaffSeatCheckout starts a checkout session for a business payer
	// buying a seat for the given staff member.
	CreateStaffSeatCheckout(ctx context.Context, payer *domain.User, staff *domain.User, business *domain.Business) (*domain.CheckoutSession, error)
}

// WebhookSvc consumes payment provider webhook deliveries.
type WebhookSvc interface {
	// ProcessWebhook verifies the delivery signature and applies the event.
	// Completed checkouts mark the payment COMPLETED and grant what was
	// bought; repeated deliveries of the same event are no-ops.
	ProcessWebhook(ctx context.Context, payload []byte, signature string) error
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	CheckoutSvc
	WebhookSvc
}
