package repositories

import (
	"context"
	"time"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their (normalized) email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUsersByIDs retrieves users for a set of IDs, keyed by user ID.
	// Missing IDs are simply absent from the result.
	FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)

	// FindUsersByEmails retrieves users for a set of emails, keyed by
	// normalized email. Missing emails are absent from the result.
	FindUsersByEmails(ctx context.Context, emails []string) (map[string]domain.User, error)

	// ListStaffByBusinessID retrieves all staff accounts of a business,
	// including inactive ones.
	ListStaffByBusinessID(ctx context.Context, businessID string) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates an existing user's mutable profile details.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateRefreshToken stores the refresh token hash and expiry for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken removes the stored refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error

	// UpdatePassword replaces the password hash and adjusts the
	// must-change-password flag. The stored refresh token is cleared so old
	// sessions cannot be extended past the change.
	UpdatePassword(ctx context.Context, userID string, passwordHash string, mustChangePassword bool, updatedBy string) error

	// SetPaidPackage marks a user as paid with the given package tier.
	SetPaidPackage(ctx context.Context, userID string, pkg domain.PackageTier, updatedBy string) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// SetUserActive activates or deactivates an account. Accounts are never
	// hard-deleted; their payment history stays intact.
	SetUserActive(ctx context.Context, userID string, active bool, updatedBy string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}
