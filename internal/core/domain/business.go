package domain

import "github.com/shopspring/decimal"

// Business represents a company account whose staff receive platform access.
type Business struct {
	BusinessID         string `json:"businessID"` // Primary Key (UUID)
	Name               string `json:"name"`
	AllowedEmailDomain string `json:"allowedEmailDomain"` // Staff emails must match this domain (or a subdomain)
	OwnerUserID        string `json:"ownerUserID"`        // FK -> users.user_id, the BUSINESS role account
	IsActive           bool   `json:"isActive"`
	AuditFields
}

// SeatEligibility is the outcome of the seat policy check for a business,
// quoted before any account is written.
type SeatEligibility struct {
	RequiresPayment bool            `json:"requiresPayment"`
	FreeSeatLimit   int             `json:"freeSeatLimit"`
	ActiveStaff     int             `json:"activeStaff"`
	SeatPrice       decimal.Decimal `json:"seatPrice"` // Per-seat price, meaningful when RequiresPayment
	Currency        string          `json:"currency"`
}

// StaffProvisionResult is the outcome of provisioning a staff member: either
// the account is active immediately, or payment is required and the caller is
// handed a checkout URL to complete the seat purchase.
type StaffProvisionResult struct {
	User            *User  `json:"user"`
	RequiresPayment bool   `json:"requiresPayment"`
	CheckoutURL     string `json:"checkoutURL,omitempty"`
}
