package repositories

import (
	"context"

	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// BusinessReader defines read operations for business data
type BusinessReader interface {
	// FindBusinessByID retrieves a specific business by its ID.
	FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error)

	// ListBusinesses retrieves all businesses.
	ListBusinesses(ctx context.Context) ([]domain.Business, error)
}

// BusinessWriter defines write operations for business data
type BusinessWriter interface {
	// SaveBusiness persists a new business.
	SaveBusiness(ctx context.Context, business domain.Business) error

	// CreateBusinessWithOwner persists a business together with its owner
	// account in one transaction. The owner row is inserted first without a
	// business reference and linked once the business row exists, since each
	// row references the other.
	CreateBusinessWithOwner(ctx context.Context, business domain.Business, owner domain.User) error
}

// StaffSeatManager performs the seat-guarded staff writes. Both guarded
// methods lock the business row, count active staff and apply the write in a
// single transaction, so two concurrent provisions cannot both take the last
// free seat.
type StaffSeatManager interface {
	// CountActiveStaff counts the active staff accounts of a business.
	CountActiveStaff(ctx context.Context, businessID string) (int, error)

	// CreateStaffSeatGuarded inserts a new staff account. The account is
	// written active when the business still has a free seat under the given
	// limit, inactive otherwise. Returns whether a free seat was granted.
	CreateStaffSeatGuarded(ctx context.Context, staff domain.User, freeSeatLimit int) (bool, error)

	// ReactivateStaffSeatGuarded reactivates an inactive staff account when a
	// free seat is available under the given limit; otherwise it leaves the
	// account inactive. Returns whether a free seat was granted.
	ReactivateStaffSeatGuarded(ctx context.Context, userID string, businessID string, updatedBy string, freeSeatLimit int) (bool, error)
}

// BusinessRepositoryFacade combines all business-related repository interfaces
type BusinessRepositoryFacade interface {
	BusinessReader
	BusinessWriter
	StaffSeatManager
}
