package mapping

import (
	"database/sql"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/models"
)

// ToModelPasswordResetToken converts a domain PasswordResetToken to its model
func ToModelPasswordResetToken(d domain.PasswordResetToken) models.PasswordResetToken {
	m := models.PasswordResetToken{
		TokenID:   d.TokenID,
		UserID:    d.UserID,
		TokenHash: d.TokenHash,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
	if d.UsedAt != nil {
		m.UsedAt = sql.NullTime{Time: *d.UsedAt, Valid: true}
	}
	return m
}

// ToDomainPasswordResetToken converts a model PasswordResetToken to its domain form
func ToDomainPasswordResetToken(m models.PasswordResetToken) domain.PasswordResetToken {
	d := domain.PasswordResetToken{
		TokenID:   m.TokenID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
	if m.UsedAt.Valid {
		usedAt := m.UsedAt.Time
		d.UsedAt = &usedAt
	}
	return d
}
