package mapping

import (
	"database/sql"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	m := models.Payment{
		PaymentID:   d.PaymentID,
		PayerUserID: d.PayerUserID,
		Amount:      d.Amount,
		Currency:    d.Currency,
		Description: d.Description,
		Purpose:     string(d.Purpose),
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
	}
	if d.BeneficiaryUserID != nil {
		m.BeneficiaryUserID = sql.NullString{String: *d.BeneficiaryUserID, Valid: true}
	}
	if d.CheckoutSessionID != nil {
		m.CheckoutSessionID = sql.NullString{String: *d.CheckoutSessionID, Valid: true}
	}
	if d.CompletedAt != nil {
		m.CompletedAt = sql.NullTime{Time: *d.CompletedAt, Valid: true}
	}
	return m
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	d := domain.Payment{
		PaymentID:   m.PaymentID,
		PayerUserID: m.PayerUserID,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Description: m.Description,
		Purpose:     domain.PaymentPurpose(m.Purpose),
		Status:      domain.PaymentStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		PayerEmail:  m.PayerEmail,
		PayerName:   m.PayerName,
	}
	if m.BeneficiaryUserID.Valid {
		beneficiaryID := m.BeneficiaryUserID.String
		d.BeneficiaryUserID = &beneficiaryID
	}
	if m.CheckoutSessionID.Valid {
		sessionID := m.CheckoutSessionID.String
		d.CheckoutSessionID = &sessionID
	}
	if m.CompletedAt.Valid {
		completedAt := m.CompletedAt.Time
		d.CompletedAt = &completedAt
	}
	return d
}

// ToDomainPaymentSlice converts a slice of model Payments to domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}
