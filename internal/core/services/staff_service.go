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
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
	"github.com/skillgrove/skillgrove_app/internal/utils"
)

// staffService implements the StaffSvcFacade interface
type staffService struct {
	BaseService
	cfg          *config.Config
	userRepo     portsrepo.UserRepositoryFacade
	businessRepo portsrepo.BusinessRepositoryFacade
	checkout     portssvc.CheckoutSvc
	mailer       portssvc.Mailer
}

// NewStaffService creates a new staff service
func NewStaffService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade, businessRepo portsrepo.BusinessRepositoryFacade, checkout portssvc.CheckoutSvc, mailer portssvc.Mailer) portssvc.StaffSvcFacade {
	return &staffService{
		cfg:          cfg,
		userRepo:     userRepo,
		businessRepo: businessRepo,
		checkout:     checkout,
		mailer:       mailer,
	}
}

// resolveBusinessScope determines which business the caller is acting on.
// Platform admins must name a business explicitly; everyone else acts on
// their own business and cross-business requests are rejected.
func (s *staffService) resolveBusinessScope(caller domain.Caller, businessID string) (string, error) {
	if caller.IsAdmin() {
		if businessID == "" {
			return "", apperrors.NewValidationFailedError("businessID is required for platform admins")
		}
		return businessID, nil
	}
	if !caller.CanManageStaff() || caller.BusinessID == nil {
		return "", apperrors.NewForbiddenError("not allowed to manage staff")
	}
	if businessID != "" && businessID != *caller.BusinessID {
		return "", apperrors.NewForbiddenError("cannot manage staff of another business")
	}
	return *caller.BusinessID, nil
}

// ProvisionStaff runs the staff creation workflow: validate the email against
// the business domain policy, decide the seat atomically with the account
// write, and hand back a checkout URL when the seat must be paid for.
func (s *staffService) ProvisionStaff(ctx context.Context, caller domain.Caller, req dto.ProvisionStaffRequest) (*domain.StaffProvisionResult, error) {
	businessID, err := s.resolveBusinessScope(caller, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("business not found")
		}
		s.LogError(ctx, err, "Failed to load business for staff provisioning", slog.String("business_id", businessID))
		return nil, err
	}
	if !business.IsActive {
		return nil, apperrors.NewForbiddenError("business is deactivated")
	}

	email := utils.NormalizeEmail(req.Email)
	if err := utils.ValidateStaffEmailDomain(email, business.AllowedEmailDomain); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return s.reactivateStaff(ctx, caller, existing, business, req)
	case errors.Is(err, apperrors.ErrNotFound):
		return s.createStaff(ctx, caller, email, business, req)
	default:
		s.LogError(ctx, err, "Failed to look up existing account for staff provisioning")
		return nil, err
	}
}

// createStaff inserts a brand-new staff account. The seat decision happens
// inside the repository transaction; a billable seat leaves the account
// inactive until the checkout completes.
func (s *staffService) createStaff(ctx context.Context, caller domain.Caller, email string, business *domain.Business, req dto.ProvisionStaffRequest) (*domain.StaffProvisionResult, error) {
	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash staff password")
		return nil, apperrors.NewAppError(500, "failed to process password", err)
	}

	now := time.Now()
	staff := domain.User{
		UserID:             uuid.NewString(),
		Email:              email,
		Name:               req.Name,
		PasswordHash:       passwordHash,
		Role:               domain.RoleStaff,
		MustChangePassword: true,
		BusinessID:         &business.BusinessID,
		BusinessAdmin:      req.BusinessAdmin,
		AuthProvider:       domain.ProviderLocal,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	seatGranted, err := s.businessRepo.CreateStaffSeatGuarded(ctx, staff, s.cfg.StaffFreeSeats)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create staff account",
				slog.String("business_id", business.BusinessID))
		}
		return nil, err
	}
	staff.IsActive = seatGranted

	s.sendWelcomeEmail(ctx, staff, req.Password)

	if seatGranted {
		s.LogInfo(ctx, "Staff provisioned on a free seat",
			slog.String("user_id", staff.UserID),
			slog.String("business_id", business.BusinessID))
		return &domain.StaffProvisionResult{User: &staff, RequiresPayment: false}, nil
	}

	session, err := s.startSeatCheckout(ctx, caller, &staff, business)
	if err != nil {
		// The account stays inactive; retrying the provision resumes via the
		// reactivation path.
		return nil, err
	}

	s.LogInfo(ctx, "Staff provisioned pending seat payment",
		slog.String("user_id", staff.UserID),
		slog.String("business_id", business.BusinessID))
	return &domain.StaffProvisionResult{User: &staff, RequiresPayment: true, CheckoutURL: session.URL}, nil
}

// reactivateStaff resumes provisioning for an email that already has an
// inactive staff account under the same business. Any other existing account
// is a conflict.
func (s *staffService) reactivateStaff(ctx context.Context, caller domain.Caller, existing *domain.User, business *domain.Business, req dto.ProvisionStaffRequest) (*domain.StaffProvisionResult, error) {
	if existing.IsActive {
		return nil, apperrors.NewConflictError("an account with this email is already active")
	}
	if existing.Role != domain.RoleStaff || existing.BusinessID == nil || *existing.BusinessID != business.BusinessID {
		return nil, apperrors.NewConflictError("an account with this email already exists")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash staff password")
		return nil, apperrors.NewAppError(500, "failed to process password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, existing.UserID, passwordHash, true, caller.UserID); err != nil {
		s.LogError(ctx, err, "Failed to reset password for reactivated staff", slog.String("user_id", existing.UserID))
		return nil, err
	}

	existing.Name = req.Name
	existing.BusinessAdmin = req.BusinessAdmin
	existing.LastUpdatedAt = time.Now()
	existing.LastUpdatedBy = caller.UserID
	if err := s.userRepo.UpdateUser(ctx, *existing); err != nil {
		s.LogError(ctx, err, "Failed to update reactivated staff profile", slog.String("user_id", existing.UserID))
		return nil, err
	}

	seatGranted, err := s.businessRepo.ReactivateStaffSeatGuarded(ctx, existing.UserID, business.BusinessID, caller.UserID, s.cfg.StaffFreeSeats)
	if err != nil {
		s.LogError(ctx, err, "Failed to reactivate staff account", slog.String("user_id", existing.UserID))
		return nil, err
	}
	existing.IsActive = seatGranted
	existing.MustChangePassword = true

	s.sendWelcomeEmail(ctx, *existing, req.Password)

	if seatGranted {
		s.LogInfo(ctx, "Staff reactivated on a free seat",
			slog.String("user_id", existing.UserID),
			slog.String("business_id", business.BusinessID))
		return &domain.StaffProvisionResult{User: existing, RequiresPayment: false}, nil
	}

	session, err := s.startSeatCheckout(ctx, caller, existing, business)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Staff reactivation pending seat payment",
		slog.String("user_id", existing.UserID),
		slog.String("business_id", business.BusinessID))
	return &domain.StaffProvisionResult{User: existing, RequiresPayment: true, CheckoutURL: session.URL}, nil
}

// startSeatCheckout opens a checkout session with the caller as payer and the
// staff account as beneficiary.
func (s *staffService) startSeatCheckout(ctx context.Context, caller domain.Caller, staff *domain.User, business *domain.Business) (*domain.CheckoutSession, error) {
	payer, err := s.userRepo.FindUserByID(ctx, caller.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load payer for seat checkout", slog.String("user_id", caller.UserID))
		return nil, err
	}
	session, err := s.checkout.CreateStaffSeatCheckout(ctx, payer, staff, business)
	if err != nil {
		s.LogError(ctx, err, "Failed to create seat checkout session",
			slog.String("user_id", staff.UserID),
			slog.String("business_id", business.BusinessID))
		return nil, err
	}
	return session, nil
}

func (s *staffService) ListStaff(ctx context.Context, caller domain.Caller, businessID string) ([]domain.User, error) {
	scope, err := s.resolveBusinessScope(caller, businessID)
	if err != nil {
		return nil, err
	}
	staff, err := s.userRepo.ListStaffByBusinessID(ctx, scope)
	if err != nil {
		s.LogError(ctx, err, "Failed to list staff", slog.String("business_id", scope))
		return nil, err
	}
	if staff == nil {
		return []domain.User{}, nil
	}
	return staff, nil
}

// SeatEligibility quotes the seat decision for the next provision without
// touching any state.
func (s *staffService) SeatEligibility(ctx context.Context, caller domain.Caller) (*domain.SeatEligibility, error) {
	scope, err := s.resolveBusinessScope(caller, "")
	if err != nil {
		return nil, err
	}
	activeStaff, err := s.businessRepo.CountActiveStaff(ctx, scope)
	if err != nil {
		s.LogError(ctx, err, "Failed to count active staff", slog.String("business_id", scope))
		return nil, err
	}
	return &domain.SeatEligibility{
		RequiresPayment: activeStaff >= s.cfg.StaffFreeSeats,
		FreeSeatLimit:   s.cfg.StaffFreeSeats,
		ActiveStaff:     activeStaff,
		SeatPrice:       s.cfg.StaffSeatPrice,
		Currency:        s.cfg.PaymentCurrency,
	}, nil
}

// DeactivateStaff disables a staff account, freeing its seat. The account is
// kept with its payment history; reprovisioning the same email reactivates it.
func (s *staffService) DeactivateStaff(ctx context.Context, caller domain.Caller, staffUserID string) error {
	if staffUserID == caller.UserID {
		return apperrors.NewBadRequestError("cannot deactivate your own account")
	}

	staff, err := s.userRepo.FindUserByID(ctx, staffUserID)
	if err != nil {
		return err
	}
	if staff.Role != domain.RoleStaff {
		return apperrors.NewValidationFailedError("only staff accounts can be deactivated here")
	}

	if !caller.IsAdmin() {
		if !caller.CanManageStaff() || caller.BusinessID == nil {
			return apperrors.NewForbiddenError("not allowed to manage staff")
		}
		// Cross-business targets read as missing to avoid leaking accounts.
		if staff.BusinessID == nil || *staff.BusinessID != *caller.BusinessID {
			return apperrors.ErrNotFound
		}
	}

	if err := s.userRepo.SetUserActive(ctx, staffUserID, false, caller.UserID); err != nil {
		s.LogError(ctx, err, "Failed to deactivate staff", slog.String("user_id", staffUserID))
		return err
	}

	s.LogInfo(ctx, "Staff deactivated", slog.String("user_id", staffUserID))
	return nil
}

// sendWelcomeEmail delivers the provisional credentials without blocking the
// request; a failed send is logged and never fails provisioning.
func (s *staffService) sendWelcomeEmail(ctx context.Context, user domain.User, tempPassword string) {
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailSendTimeout)
	go func() {
		defer cancel()
		if err := s.mailer.SendStaffWelcomeEmail(mailCtx, user.Email, user.Name, tempPassword); err != nil {
			s.LogWarn(mailCtx, "Failed to send staff welcome email",
				slog.String("user_id", user.UserID),
				slog.String("error", err.Error()))
		}
	}()
}
