package services

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/skillgrove/skillgrove_app/internal/dto"
)

// StaffSvcFacade defines staff seat management for a business.
type StaffSvcFacade interface {
	// ProvisionStaff creates a staff account under the caller's business.
	// When the business is out of free seats the account is created inactive
	// and the result carries a checkout URL for the seat payment.
	ProvisionStaff(ctx context.Context, caller domain.Caller, req dto.ProvisionStaffRequest) (*domain.StaffProvisionResult, error)

	// ListStaff returns the staff roster of the caller's business. A platform
	// admin passes an explicit businessID; for other callers the argument is
	// ignored in favor of their own business scope.
	ListStaff(ctx context.Context, caller domain.Caller, businessID string) ([]domain.User, error)

	// SeatEligibility reports whether the caller's business must pay for the
	// next staff seat, along with the current seat usage.
	SeatEligibility(ctx context.Context, caller domain.Caller) (*domain.SeatEligibility, error)

	// DeactivateStaff disables a staff account and frees its seat.
	DeactivateStaff(ctx context.Context, caller domain.Caller, staffUserID string) error
}
