package models

import (
	"database/sql"
	"time"
)

// User is the database row backing a platform account.
type User struct {
	UserID             string         `json:"userID" db:"user_id"`
	Email              string         `json:"email" db:"email"`
	Name               string         `json:"name" db:"name"`
	PasswordHash       sql.NullString `json:"-" db:"password_hash"`
	Role               string         `json:"role" db:"role"`
	IsActive           bool           `json:"isActive" db:"is_active"`
	MustChangePassword bool           `json:"mustChangePassword" db:"must_change_password"`
	BusinessID         sql.NullString `json:"businessID" db:"business_id"`
	BusinessAdmin      bool           `json:"businessAdmin" db:"business_admin"`
	HasPaid            bool           `json:"hasPaid" db:"has_paid"`
	Package            string         `json:"package" db:"package"`
	AuthProvider       string         `json:"authProvider" db:"auth_provider"`
	ProviderUserID     sql.NullString `json:"-" db:"provider_user_id"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`

	RefreshTokenHash       sql.NullString `json:"-" db:"refresh_token_hash"`
	RefreshTokenExpiryTime sql.NullTime   `json:"-" db:"refresh_token_expiry_time"`
}
