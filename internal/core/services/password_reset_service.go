package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
	"github.com/skillgrove/skillgrove_app/internal/utils"
)

// passwordResetTokenBytes is the entropy of a reset token; 32 bytes yields a
// 64-character hex string.
const passwordResetTokenBytes = 32

// passwordResetService implements the PasswordResetSvcFacade interface
type passwordResetService struct {
	BaseService
	cfg       *config.Config
	userRepo  portsrepo.UserRepositoryFacade
	tokenRepo portsrepo.PasswordResetTokenRepository
	mailer    portssvc.Mailer
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade, tokenRepo portsrepo.PasswordResetTokenRepository, mailer portssvc.Mailer) portssvc.PasswordResetSvcFacade {
	return &passwordResetService{
		cfg:       cfg,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
	}
}

// RequestPasswordReset issues a fresh reset token and emails the reset link.
// Issuing deletes any earlier tokens, so at most one token is valid per
// account. Unknown and deactivated accounts report ErrNotFound, which the
// handler collapses into the generic success response.
func (s *passwordResetService) RequestPasswordReset(ctx context.Context, email string) error {
	// Token generation runs before the account lookup so the miss path does
	// the same work as the hit path.
	rawToken, err := utils.GenerateSecureRandomString(passwordResetTokenBytes)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate reset token")
		return apperrors.NewAppError(500, "failed to generate reset token", err)
	}
	tokenHash := utils.HashToken(rawToken)

	user, err := s.userRepo.FindUserByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to look up account for password reset")
		return err
	}
	if !user.IsActive {
		s.LogDebug(ctx, "Password reset requested for deactivated account", slog.String("user_id", user.UserID))
		return apperrors.ErrNotFound
	}

	if _, err := s.tokenRepo.DeleteByUserID(ctx, user.UserID); err != nil {
		s.LogError(ctx, err, "Failed to invalidate previous reset tokens", slog.String("user_id", user.UserID))
		return err
	}

	now := time.Now()
	token := domain.PasswordResetToken{
		TokenID:   uuid.NewString(),
		UserID:    user.UserID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(s.cfg.PasswordResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		s.LogError(ctx, err, "Failed to store reset token", slog.String("user_id", user.UserID))
		return err
	}

	resetURL := s.cfg.FrontendBaseURL + "/reset-password?token=" + rawToken
	s.sendResetEmail(ctx, *user, resetURL)

	s.LogInfo(ctx, "Password reset token issued", slog.String("user_id", user.UserID))
	return nil
}

// ResetPassword consumes a reset token and replaces the account password.
// Consumption is a single guarded update, so concurrent submissions of the
// same token succeed at most once.
func (s *passwordResetService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	consumed, err := s.tokenRepo.ConsumeToken(ctx, utils.HashToken(token), time.Now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewBadRequestError("reset link is invalid or has expired")
		}
		s.LogError(ctx, err, "Failed to consume reset token")
		return err
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash new password", slog.String("user_id", consumed.UserID))
		return apperrors.NewAppError(500, "failed to process password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, consumed.UserID, newHash, false, consumed.UserID); err != nil {
		s.LogError(ctx, err, "Failed to set new password", slog.String("user_id", consumed.UserID))
		return err
	}

	s.LogInfo(ctx, "Password reset completed", slog.String("user_id", consumed.UserID))
	return nil
}

// sendResetEmail delivers the reset link without blocking the request; a
// failed send is logged and the generic response goes out regardless.
func (s *passwordResetService) sendResetEmail(ctx context.Context, user domain.User, resetURL string) {
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailSendTimeout)
	go func() {
		defer cancel()
		if err := s.mailer.SendPasswordResetEmail(mailCtx, user.Email, user.Name, resetURL); err != nil {
			s.LogWarn(mailCtx, "Failed to send password reset email",
				slog.String("user_id", user.UserID),
				slog.String("error", err.Error()))
		}
	}()
}
