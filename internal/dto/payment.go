package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// --- Payment DTOs ---

// ListPaymentsRequest defines query parameters for the payment history.
// The purpose and payer filters only take effect for admins.
type ListPaymentsRequest struct {
	Purpose    string `form:"purpose" binding:"omitempty,oneof=PACKAGE STAFF_SEAT"`
	PayerEmail string `form:"payerEmail" binding:"omitempty,email"`
}

// PackageCheckoutRequest starts a checkout for a training package.
type PackageCheckoutRequest struct {
	Package string `json:"package" binding:"required,oneof=BASIC PREMIUM"`
}

// CheckoutSessionResponse returns the hosted checkout the client should
// redirect to.
type CheckoutSessionResponse struct {
	SessionID   string `json:"sessionID"`
	CheckoutURL string `json:"checkoutURL"`
}

// ToCheckoutSessionResponse converts domain.CheckoutSession to DTO.
func ToCheckoutSessionResponse(s *domain.CheckoutSession) CheckoutSessionResponse {
	return CheckoutSessionResponse{
		SessionID:   s.SessionID,
		CheckoutURL: s.URL,
	}
}

// PaymentResponse defines data returned for one payment.
type PaymentResponse struct {
	PaymentID        string                `json:"paymentID"`
	PayerUserID      string                `json:"payerUserID"`
	PayerEmail       string                `json:"payerEmail,omitempty"`
	PayerName        string                `json:"payerName,omitempty"`
	BeneficiaryEmail string                `json:"beneficiaryEmail,omitempty"`
	BeneficiaryName  string                `json:"beneficiaryName,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	Currency         string                `json:"currency"`
	Description      string                `json:"description,omitempty"`
	Purpose          domain.PaymentPurpose `json:"purpose"`
	Status           domain.PaymentStatus  `json:"status"`
	CreatedAt        time.Time             `json:"createdAt"`
	CompletedAt      *time.Time            `json:"completedAt,omitempty"`
}

// ToPaymentResponse converts domain.Payment to DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:        p.PaymentID,
		PayerUserID:      p.PayerUserID,
		PayerEmail:       p.PayerEmail,
		PayerName:        p.PayerName,
		BeneficiaryEmail: p.BeneficiaryEmail,
		BeneficiaryName:  p.BeneficiaryName,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Description:      p.Description,
		Purpose:          p.Purpose,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		CompletedAt:      p.CompletedAt,
	}
}

// PaymentPayerResponse identifies a distinct payer for filter dropdowns.
type PaymentPayerResponse struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// PaymentHistoryResponse wraps a scoped payment listing.
type PaymentHistoryResponse struct {
	Payments []PaymentResponse      `json:"payments"`
	Payers   []PaymentPayerResponse `json:"payers,omitempty"`
}

// ToPaymentHistoryResponse converts domain.PaymentHistory to DTO.
func ToPaymentHistoryResponse(h *domain.PaymentHistory) PaymentHistoryResponse {
	payments := make([]PaymentResponse, len(h.Payments))
	for i, p := range h.Payments {
		payments[i] = ToPaymentResponse(&p)
	}
	var payers []PaymentPayerResponse
	if len(h.Payers) > 0 {
		payers = make([]PaymentPayerResponse, len(h.Payers))
		for i, p := range h.Payers {
			payers[i] = PaymentPayerResponse{UserID: p.UserID, Email: p.Email, Name: p.Name}
		}
	}
	return PaymentHistoryResponse{Payments: payments, Payers: payers}
}
