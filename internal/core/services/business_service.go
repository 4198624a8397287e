package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/utils"
)

// mailSendTimeout bounds every fire-and-forget mail send in this package.
const mailSendTimeout = 15 * time.Second

// tempPasswordBytes is the entropy of generated provisional passwords.
const tempPasswordBytes = 12

// businessService implements the BusinessSvcFacade interface
type businessService struct {
	BaseService
	businessRepo portsrepo.BusinessRepositoryFacade
	userRepo     portsrepo.UserRepositoryFacade
	mailer       portssvc.Mailer
}

// NewBusinessService creates a new business service
func NewBusinessService(businessRepo portsrepo.BusinessRepositoryFacade, userRepo portsrepo.UserRepositoryFacade, mailer portssvc.Mailer) portssvc.BusinessSvcFacade {
	return &businessService{
		businessRepo: businessRepo,
		userRepo:     userRepo,
		mailer:       mailer,
	}
}

func (s *businessService) GetBusinessByID(ctx context.Context, businessID string) (*domain.Business, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find business by ID", slog.String("business_id", businessID))
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	businesses, err := s.businessRepo.ListBusinesses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list businesses")
		return nil, err
	}
	if businesses == nil {
		return []domain.Business{}, nil
	}
	return businesses, nil
}

// CreateBusiness creates a business and its owner account in one transaction.
// The owner receives a generated provisional password by email and must
// change it on first login.
func (s *businessService) CreateBusiness(ctx context.Context, caller domain.Caller, req dto.CreateBusinessRequest) (*domain.Business, *domain.User, error) {
	if !caller.IsAdmin() {
		return nil, nil, apperrors.NewForbiddenError("only platform admins create businesses")
	}

	allowedDomain := strings.ToLower(strings.TrimSpace(req.AllowedEmailDomain))
	if utils.IsPublicMailboxDomain(allowedDomain) {
		return nil, nil, apperrors.NewValidationFailedError("allowed email domain cannot be a public mailbox provider")
	}

	tempPassword, err := utils.GenerateSecureRandomString(tempPasswordBytes)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate provisional password")
		return nil, nil, apperrors.NewAppError(500, "failed to generate credentials", err)
	}
	passwordHash, err := utils.HashPassword(tempPassword)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash provisional password")
		return nil, nil, apperrors.NewAppError(500, "failed to process credentials", err)
	}

	now := time.Now()
	businessID := uuid.NewString()
	ownerID := uuid.NewString()

	owner := domain.User{
		UserID:             ownerID,
		Email:              utils.NormalizeEmail(req.OwnerEmail),
		Name:               req.OwnerName,
		PasswordHash:       passwordHash,
		Role:               domain.RoleBusiness,
		IsActive:           true,
		MustChangePassword: true,
		BusinessID:         &businessID,
		AuthProvider:       domain.ProviderLocal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}
	business := domain.Business{
		BusinessID:         businessID,
		Name:               req.Name,
		AllowedEmailDomain: allowedDomain,
		OwnerUserID:        ownerID,
		IsActive:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.businessRepo.CreateBusinessWithOwner(ctx, business, owner); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create business", slog.String("business_id", businessID))
		}
		return nil, nil, err
	}

	s.sendWelcomeEmail(ctx, owner, tempPassword)

	s.LogInfo(ctx, "Business created",
		slog.String("business_id", businessID),
		slog.String("owner_user_id", ownerID))
	return &business, &owner, nil
}

// sendWelcomeEmail delivers provisional credentials without blocking the
// request; a failed send is logged and never fails the creation.
func (s *businessService) sendWelcomeEmail(ctx context.Context, user domain.User, tempPassword string) {
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailSendTimeout)
	go func() {
		defer cancel()
		if err := s.mailer.SendStaffWelcomeEmail(mailCtx, user.Email, user.Name, tempPassword); err != nil {
			s.LogWarn(mailCtx, "Failed to send welcome email",
				slog.String("user_id", user.UserID),
				slog.String("error", err.Error()))
		}
	}()
}
