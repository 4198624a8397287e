package services

import (
	"context"
)

// PasswordResetSvcFacade manages the forgot-password flow.
type PasswordResetSvcFacade interface {
	// RequestPasswordReset issues a reset token for the account with the
	// given email and sends the reset link. It reports ErrNotFound for
	// unknown emails; callers presenting this to clients must collapse that
	// case into the success response so the endpoint does not reveal which
	// emails have accounts.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and sets the new password. The
	// token is single use; concurrent submissions succeed at most once.
	ResetPassword(ctx context.Context, token string, newPassword string) error
}
