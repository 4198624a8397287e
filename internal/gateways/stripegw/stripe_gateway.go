package stripegw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
)

// minorUnitFactor converts major currency units to the cent amounts the
// provider expects. All supported currencies are two-decimal.
var minorUnitFactor = decimal.NewFromInt(100)

type stripeGateway struct {
	client        *client.API
	webhookSecret string
}

// NewStripeGateway creates the hosted-checkout gateway backed by Stripe.
func NewStripeGateway(apiKey string, webhookSecret string) portssvc.PaymentGateway {
	config := &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	sc := &client.API{}
	sc.Init(apiKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, config),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, config),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, config),
	})
	return &stripeGateway{
		client:        sc,
		webhookSecret: webhookSecret,
	}
}

// Ensure stripeGateway implements portssvc.PaymentGateway
var _ portssvc.PaymentGateway = (*stripeGateway)(nil)

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(params.SuccessURL),
		CancelURL:     stripe.String(params.CancelURL),
		CustomerEmail: stripe.String(params.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(params.Currency)),
					UnitAmount: stripe.Int64(toMinorUnits(params.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	sessionParams.Context = ctx
	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}
	sessionParams.AddMetadata(domain.MetaKeyPurpose, string(params.Purpose))
	sessionParams.AddMetadata(domain.MetaKeyPayerUserID, params.PayerUserID)

	session, err := g.client.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, apperrors.NewAppError(502, "failed to create checkout session", err)
	}

	return &domain.CheckoutSession{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func (g *stripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := g.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(502, "failed to fetch checkout session "+sessionID, err)
	}

	return &domain.CheckoutSessionDetails{
		SessionID:     session.ID,
		Metadata:      session.Metadata,
		CustomerEmail: sessionEmail(session),
	}, nil
}

// ParseCheckoutCompleted verifies the delivery and extracts the completed
// checkout. Valid deliveries of other event types, and sessions that are not
// yet paid, return (nil, nil).
func (g *stripeGateway) ParseCheckoutCompleted(payload []byte, signature string) (*domain.CheckoutCompletedEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid webhook signature")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, apperrors.NewBadRequestError("malformed checkout session payload")
	}
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		// Async payment methods complete later; the paid event follows.
		return nil, nil
	}

	return &domain.CheckoutCompletedEvent{
		SessionID:     session.ID,
		AmountTotal:   fromMinorUnits(session.AmountTotal),
		Currency:      strings.ToUpper(string(session.Currency)),
		Metadata:      session.Metadata,
		CustomerEmail: sessionEmail(&session),
	}, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitFactor).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(minorUnitFactor)
}

func sessionEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
