package domain

import "time"

// UserRole defines the platform-level role of an account.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"      // Platform operators
	RoleBusiness   UserRole = "BUSINESS"   // Business account owners
	RoleStaff      UserRole = "STAFF"      // Accounts provisioned under a business
	RoleIndividual UserRole = "INDIVIDUAL" // Self-registered learners
)

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// PackageTier is the course package an individual account has purchased.
type PackageTier string

const (
	PackageNone    PackageTier = ""
	PackageBasic   PackageTier = "BASIC"
	PackagePremium PackageTier = "PREMIUM"
)

// User represents an account on the platform. Accounts are never hard-deleted;
// deactivation clears IsActive and removed accounts keep their payment history.
type User struct {
	UserID             string       `json:"userID"` // Primary Key (UUID)
	Email              string       `json:"email"`  // Unique, stored lower-cased
	Name               string       `json:"name"`
	PasswordHash       string       `json:"-"` // Empty for provider-only accounts
	Role               UserRole     `json:"role"`
	IsActive           bool         `json:"isActive"`
	MustChangePassword bool         `json:"mustChangePassword"` // Set for provisioned accounts until first password change
	BusinessID         *string      `json:"businessID,omitempty"`
	BusinessAdmin      bool         `json:"businessAdmin"` // Staff flag: may manage the business's staff
	HasPaid            bool         `json:"hasPaid"`
	Package            PackageTier  `json:"package"`
	AuthProvider       AuthProvider `json:"authProvider"`
	ProviderUserID     string       `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	// Refresh token state, compared against the presented token on refresh.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// CanManageStaff reports whether the user may provision or deactivate staff
// for their own business.
func (u *User) CanManageStaff() bool {
	switch u.Role {
	case RoleBusiness:
		return true
	case RoleStaff:
		return u.BusinessAdmin
	default:
		return false
	}
}

// GoogleUserInfo holds the profile fields returned by Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
