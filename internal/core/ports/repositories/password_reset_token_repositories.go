package repositories

import (
	"context"
	"time"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// PasswordResetTokenRepository manages single-use password reset tokens.
// Tokens are stored hashed; the plaintext never touches the database.
type PasswordResetTokenRepository interface {
	// Create persists a new reset token.
	Create(ctx context.Context, token domain.PasswordResetToken) error
	// DeleteByUserID removes every reset token belonging to the user and
	// returns the number of rows deleted. Issuing a new token first calls
	// this so at most one token is valid per user.
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	// ConsumeToken atomically marks the token with the given hash as used and
	// returns it. It fails with apperrors.ErrNotFound when the hash is
	// unknown, already used, or expired, so concurrent submissions of the
	// same token succeed at most once.
	ConsumeToken(ctx context.Context, tokenHash string, now time.Time) (*domain.PasswordResetToken, error)
	// DeleteExpired removes tokens that expired before the given time and
	// returns the number of rows deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
