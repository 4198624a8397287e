package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPurpose classifies what a payment bought.
type PaymentPurpose string

const (
	PurposePackage   PaymentPurpose = "PACKAGE"    // Individual course package purchase
	PurposeStaffSeat PaymentPurpose = "STAFF_SEAT" // Billable staff seat for a business
)

// PaymentStatus tracks reconciliation state. PENDING rows are written when a
// checkout session is created and flipped to COMPLETED by the webhook.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

// Checkout session metadata keys, shared between session creation and webhook
// reconciliation. Reconciliation must read exactly what creation wrote.
const (
	MetaKeyPurpose           = "purpose"
	MetaKeyPayerUserID       = "payer_user_id"
	MetaKeyBeneficiaryUserID = "beneficiary_user_id"
	MetaKeyBeneficiaryEmail  = "beneficiary_email"
	MetaKeyBusinessID        = "business_id"
	MetaKeyPackage           = "package"
)

// Payment is a money movement on the platform. PayerUserID is who paid;
// BeneficiaryUserID is whose account the payment unlocked (the payer itself for
// package purchases, the provisioned staff member for seat purchases). The
// stored relation is written once at reconciliation time and never rewritten
// by display logic.
type Payment struct {
	PaymentID         string          `json:"paymentID"` // Primary Key (UUID)
	PayerUserID       string          `json:"payerUserID"`
	BeneficiaryUserID *string         `json:"beneficiaryUserID,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Description       string          `json:"description"`
	Purpose           PaymentPurpose  `json:"purpose"`
	Status            PaymentStatus   `json:"status"`
	CheckoutSessionID *string         `json:"-"` // Gateway session id, idempotency anchor
	CreatedAt         time.Time       `json:"createdAt"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`

	// Joined from users for display, not persisted on the payment row.
	PayerEmail string `json:"payerEmail"`
	PayerName  string `json:"payerName"`

	// Resolved beneficiary identity for display. Falls back to the payer when
	// no beneficiary can be determined.
	BeneficiaryEmail string `json:"beneficiaryEmail,omitempty"`
	BeneficiaryName  string `json:"beneficiaryName,omitempty"`
}

// PaymentFilter narrows a payment listing. Nil fields mean no constraint.
// Scoping fields are set from the caller's auth context, never from client
// input.
type PaymentFilter struct {
	Status      *PaymentStatus
	Purpose     *PaymentPurpose
	PayerEmail  *string // Exact match on normalized payer email
	PayerUserID *string
	BusinessID  *string // Restrict to payments whose payer belongs to this business
}

// PaymentPayer is a distinct payer appearing in the payment history, used to
// drive the admin filter dropdown.
type PaymentPayer struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// PaymentHistory is a scoped payment listing plus the distinct payers within
// the viewer's scope.
type PaymentHistory struct {
	Payments []Payment      `json:"payments"`
	Payers   []PaymentPayer `json:"payers,omitempty"`
}

// CheckoutParams describe the hosted checkout session to create.
type CheckoutParams struct {
	PayerUserID   string
	CustomerEmail string
	Purpose       PaymentPurpose
	Description   string
	Amount        decimal.Decimal
	Currency      string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is a newly created hosted checkout the client is redirected to.
type CheckoutSession struct {
	SessionID string `json:"sessionID"`
	URL       string `json:"url"`
}

// CheckoutSessionDetails are the fields retrieved from the gateway for an
// existing session, used to resolve beneficiary identity for legacy rows.
type CheckoutSessionDetails struct {
	SessionID     string
	Metadata      map[string]string
	CustomerEmail string
}

// CheckoutCompletedEvent is the reconciliation-relevant content of a
// checkout.session.completed webhook delivery.
type CheckoutCompletedEvent struct {
	SessionID     string
	AmountTotal   decimal.Decimal
	Currency      string
	Metadata      map[string]string
	CustomerEmail string
}
