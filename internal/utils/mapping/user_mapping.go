package mapping

import (
	"database/sql"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	m := models.User{
		UserID:             d.UserID,
		Email:              d.Email,
		Name:               d.Name,
		Role:               string(d.Role),
		IsActive:           d.IsActive,
		MustChangePassword: d.MustChangePassword,
		BusinessAdmin:      d.BusinessAdmin,
		HasPaid:            d.HasPaid,
		Package:            string(d.Package),
		AuthProvider:       string(d.AuthProvider),
		AuditFields:        ToModelAuditFields(d.AuditFields),
		DeletedAt:          d.DeletedAt,
	}
	if d.PasswordHash != "" {
		m.PasswordHash = sql.NullString{String: d.PasswordHash, Valid: true}
	}
	if d.BusinessID != nil {
		m.BusinessID = sql.NullString{String: *d.BusinessID, Valid: true}
	}
	if d.ProviderUserID != "" {
		m.ProviderUserID = sql.NullString{String: d.ProviderUserID, Valid: true}
	}
	if d.RefreshTokenHash != "" {
		m.RefreshTokenHash = sql.NullString{String: d.RefreshTokenHash, Valid: true}
	}
	if d.RefreshTokenExpiryTime != nil {
		m.RefreshTokenExpiryTime = sql.NullTime{Time: *d.RefreshTokenExpiryTime, Valid: true}
	}
	return m
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	d := domain.User{
		UserID:             m.UserID,
		Email:              m.Email,
		Name:               m.Name,
		Role:               domain.UserRole(m.Role),
		IsActive:           m.IsActive,
		MustChangePassword: m.MustChangePassword,
		BusinessAdmin:      m.BusinessAdmin,
		HasPaid:            m.HasPaid,
		Package:            domain.PackageTier(m.Package),
		AuthProvider:       domain.AuthProvider(m.AuthProvider),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
		DeletedAt:          m.DeletedAt,
	}
	if m.PasswordHash.Valid {
		d.PasswordHash = m.PasswordHash.String
	}
	if m.BusinessID.Valid {
		businessID := m.BusinessID.String
		d.BusinessID = &businessID
	}
	if m.ProviderUserID.Valid {
		d.ProviderUserID = m.ProviderUserID.String
	}
	if m.RefreshTokenHash.Valid {
		d.RefreshTokenHash = m.RefreshTokenHash.String
	}
	if m.RefreshTokenExpiryTime.Valid {
		expiry := m.RefreshTokenExpiryTime.Time
		d.RefreshTokenExpiryTime = &expiry
	}
	return d
}

// ToDomainUserSlice converts a slice of model Users to a slice of domain Users
func ToDomainUserSlice(ms []models.User) []domain.User {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUser(m)
	}
	return ds
}
