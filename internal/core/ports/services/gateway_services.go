package services

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// PaymentGateway abstracts the hosted checkout provider.
type PaymentGateway interface {
	// CreateCheckoutSession creates a hosted checkout session and returns its
	// ID and redirect URL.
	CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutSession, error)

	// GetCheckoutSession fetches a session's metadata and customer email.
	GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSessionDetails, error)

	// ParseCheckoutCompleted verifies a webhook delivery against the signing
	// secret and extracts the completed-checkout event. It returns (nil, nil)
	// for valid deliveries of event types this application ignores.
	ParseCheckoutCompleted(payload []byte, signature string) (*domain.CheckoutCompletedEvent, error)
}

// Mailer sends transactional email.
type Mailer interface {
	// SendStaffWelcomeEmail delivers the provisional credentials to a newly
	// provisioned staff member.
	SendStaffWelcomeEmail(ctx context.Context, to string, name string, tempPassword string) error

	// SendPasswordResetEmail delivers a password reset link.
	SendPasswordResetEmail(ctx context.Context, to string, name string, resetURL string) error
}

// CourseCMS reads draft course content from the headless CMS.
type CourseCMS interface {
	// FetchDraftCourse retrieves the draft document for a slug, or
	// apperrors.ErrNotFound when the CMS has no such document.
	FetchDraftCourse(ctx context.Context, slug string) (*domain.Course, error)
}

// GatewayProvider holds the outbound integration clients needed by services.
// Mirrors RepositoryProvider so the service container constructor stays flat.
type GatewayProvider struct {
	Payments  PaymentGateway
	Mailer    Mailer
	CourseCMS CourseCMS
}
