package dto

import (
	"github.com/shopspring/decimal"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// --- Staff DTOs ---

// ProvisionStaffRequest defines data for adding a staff member to a business.
// The plaintext password is hashed before persistence and included once in the
// welcome email; the account is created with a forced password change.
// BusinessID is honored only for platform admins; other callers always act on
// their own business.
type ProvisionStaffRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,strongpassword"`
	BusinessAdmin bool   `json:"businessAdmin"`
	BusinessID    string `json:"businessID,omitempty"`
}

// ProvisionStaffResponse returns the provisioned account and, when the seat
// needs to be paid for, the checkout URL to complete first.
type ProvisionStaffResponse struct {
	User            UserResponse `json:"user"`
	RequiresPayment bool         `json:"requiresPayment"`
	CheckoutURL     string       `json:"checkoutURL,omitempty"`
}

// ToProvisionStaffResponse converts domain.StaffProvisionResult to DTO.
func ToProvisionStaffResponse(r *domain.StaffProvisionResult) ProvisionStaffResponse {
	return ProvisionStaffResponse{
		User:            ToUserResponse(r.User),
		RequiresPayment: r.RequiresPayment,
		CheckoutURL:     r.CheckoutURL,
	}
}

// SeatEligibilityResponse reports whether the next staff seat must be paid for.
type SeatEligibilityResponse struct {
	RequiresPayment bool            `json:"requiresPayment"`
	FreeSeatLimit   int             `json:"freeSeatLimit"`
	ActiveStaff     int             `json:"activeStaff"`
	SeatPrice       decimal.Decimal `json:"seatPrice"`
	Currency        string          `json:"currency"`
}

// ToSeatEligibilityResponse converts domain.SeatEligibility to DTO.
func ToSeatEligibilityResponse(e *domain.SeatEligibility) SeatEligibilityResponse {
	return SeatEligibilityResponse{
		RequiresPayment: e.RequiresPayment,
		FreeSeatLimit:   e.FreeSeatLimit,
		ActiveStaff:     e.ActiveStaff,
		SeatPrice:       e.SeatPrice,
		Currency:        e.Currency,
	}
}

// ListStaffResponse wraps the staff roster of a business.
type ListStaffResponse struct {
	Staff []UserResponse `json:"staff"`
}

// ToListStaffResponse converts a slice of domain.User to DTO.
func ToListStaffResponse(users []domain.User) ListStaffResponse {
	list := make([]UserResponse, len(users))
	for i, u := range users {
		list[i] = ToUserResponse(&u)
	}
	return ListStaffResponse{Staff: list}
}
