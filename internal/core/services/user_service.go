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
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/utils"
)

// userService implements the UserSvcFacade interface
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by email")
		}
		return nil, err
	}
	return user, nil
}

// RegisterUser creates a self-registered individual account.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password during registration")
		return nil, apperrors.NewAppError(500, "failed to process password", err)
	}

	now := time.Now()
	newUserID := uuid.NewString()
	user := domain.User{
		UserID:       newUserID,
		Email:        utils.NormalizeEmail(req.Email),
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         domain.RoleIndividual,
		IsActive:     true,
		AuthProvider: domain.ProviderLocal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     newUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: newUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save registered user", slog.String("user_id", newUserID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", newUserID))
	return &user, nil
}

// ChangePassword verifies the current password and replaces it. Accounts
// carrying the must-change flag skip the current-password check since the
// provisional password is all they have; the flag clears on success.
func (s *userService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.MustChangePassword {
		if user.PasswordHash == "" {
			return apperrors.NewBadRequestError("account has no password; sign in with your identity provider")
		}
		if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
			s.LogWarn(ctx, "Password change rejected: current password mismatch", slog.String("user_id", userID))
			return apperrors.NewUnauthorizedError("current password is incorrect")
		}
	}

	if err := utils.ValidatePasswordStrength(req.NewPassword); err != nil {
		return err
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash new password", slog.String("user_id", userID))
		return apperrors.NewAppError(500, "failed to process password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash, false, userID); err != nil {
		s.LogError(ctx, err, "Failed to update password", slog.String("user_id", userID))
		return err
	}

	s.LogInfo(ctx, "Password changed", slog.String("user_id", userID))
	return nil
}

func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
}

func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

// AuthenticateUser checks credentials against the stored hash. Failures are
// reported as the same generic unauthorized error whether the email is
// unknown or the password wrong.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		s.LogError(ctx, err, "Failed to look up user during login")
		return nil, err
	}

	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogDebug(ctx, "Login rejected: password mismatch", slog.String("user_id", user.UserID))
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	if !user.IsActive {
		s.LogInfo(ctx, "Login rejected: account deactivated", slog.String("user_id", user.UserID))
		return nil, apperrors.NewForbiddenError("account is deactivated")
	}

	return user, nil
}

// FindOrCreateGoogleUser resolves a verified Google identity to a local
// account, matching by email and creating an individual account when none
// exists.
func (s *userService) FindOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	if !info.VerifiedEmail {
		return nil, apperrors.NewForbiddenError("google account email is not verified")
	}
	email := utils.NormalizeEmail(info.Email)
	if email == "" {
		return nil, apperrors.NewBadRequestError("google account has no email address")
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.IsActive {
			s.LogInfo(ctx, "Google sign-in rejected: account deactivated", slog.String("user_id", user.UserID))
			return nil, apperrors.NewForbiddenError("account is deactivated")
		}
		return user, nil

	case errors.Is(err, apperrors.ErrNotFound):
		now := time.Now()
		newUserID := uuid.NewString()
		newUser := domain.User{
			UserID:         newUserID,
			Email:          email,
			Name:           info.Name,
			Role:           domain.RoleIndividual,
			IsActive:       true,
			AuthProvider:   domain.ProviderGoogle,
			ProviderUserID: info.ID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     newUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: newUserID,
			},
		}
		if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				// Concurrent first sign-in created the account; use it.
				return s.userRepo.FindUserByEmail(ctx, email)
			}
			s.LogError(ctx, err, "Failed to create account for Google sign-in")
			return nil, err
		}
		s.LogInfo(ctx, "Account created from Google sign-in", slog.String("user_id", newUserID))
		return &newUser, nil

	default:
		s.LogError(ctx, err, "Failed to look up user for Google sign-in")
		return nil, err
	}
}
