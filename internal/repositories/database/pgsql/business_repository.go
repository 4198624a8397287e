package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	"github.com/skillgrove/skillgrove_app/internal/models"
	"github.com/skillgrove/skillgrove_app/internal/utils/mapping"
)

type PgxBusinessRepository struct {
	BaseRepository
}

// newPgxBusinessRepository creates a new repository for business data.
func newPgxBusinessRepository(pool *pgxpool.Pool) portsrepo.BusinessRepositoryFacade {
	return &PgxBusinessRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBusinessRepository implements portsrepo.BusinessRepositoryFacade
var _ portsrepo.BusinessRepositoryFacade = (*PgxBusinessRepository)(nil)

var FULL_BUSINESS_SELECT_QUERY = `
SELECT
	b.business_id, b.name, b.allowed_email_domain, b.owner_user_id, b.is_active,
	b.created_at, b.created_by, b.last_updated_at, b.last_updated_by
FROM businesses b
`

const countActiveStaffQuery = `
	SELECT COUNT(*)
	FROM users
	WHERE business_id = $1 AND role = $2 AND is_active = TRUE AND deleted_at IS NULL
`

// getBusinesses runs the full select with the given filter suffix and maps
// rows to domain businesses.
func (r *PgxBusinessRepository) getBusinesses(ctx context.Context, filterQuery string, args ...any) ([]domain.Business, error) {
	query := FULL_BUSINESS_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query businesses", err)
	}
	defer rows.Close()
	modelBusinesses, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Business])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Business{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect business rows", err)
	}

	return mapping.ToDomainBusinessSlice(modelBusinesses), nil
}

func (r *PgxBusinessRepository) SaveBusiness(ctx context.Context, business domain.Business) error {
	modelBusiness := mapping.ToModelBusiness(business)
	query := `
		INSERT INTO businesses (
			business_id, name, allowed_email_domain, owner_user_id, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelBusiness.BusinessID,
		modelBusiness.Name,
		modelBusiness.AllowedEmailDomain,
		modelBusiness.OwnerUserID,
		modelBusiness.IsActive,
		modelBusiness.CreatedAt,
		modelBusiness.CreatedBy,
		modelBusiness.LastUpdatedAt,
		modelBusiness.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("business ID " + business.BusinessID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save business "+business.BusinessID, err)
	}
	return nil
}

// CreateBusinessWithOwner inserts the owner account and the business in one
// transaction. businesses.owner_user_id and users.business_id reference each
// other, so the owner goes in first without a business and is linked after
// the business row exists.
func (r *PgxBusinessRepository) CreateBusinessWithOwner(ctx context.Context, business domain.Business, owner domain.User) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelOwner := mapping.ToModelUser(owner)
	insertOwnerQuery := `
		INSERT INTO users (
			user_id, email, name, password_hash, role, is_active,
			must_change_password, business_id, business_admin, has_paid,
			package, auth_provider, provider_user_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, insertOwnerQuery,
		modelOwner.UserID,
		modelOwner.Email,
		modelOwner.Name,
		modelOwner.PasswordHash,
		modelOwner.Role,
		modelOwner.IsActive,
		modelOwner.MustChangePassword,
		modelOwner.BusinessAdmin,
		modelOwner.HasPaid,
		modelOwner.Package,
		modelOwner.AuthProvider,
		modelOwner.ProviderUserID,
		modelOwner.CreatedAt,
		modelOwner.CreatedBy,
		modelOwner.LastUpdatedAt,
		modelOwner.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("an account with email " + owner.Email + " already exists")
		}
		return apperrors.NewAppError(500, "failed to insert business owner "+owner.UserID, err)
	}

	modelBusiness := mapping.ToModelBusiness(business)
	insertBusinessQuery := `
		INSERT INTO businesses (
			business_id, name, allowed_email_domain, owner_user_id, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertBusinessQuery,
		modelBusiness.BusinessID,
		modelBusiness.Name,
		modelBusiness.AllowedEmailDomain,
		modelBusiness.OwnerUserID,
		modelBusiness.IsActive,
		modelBusiness.CreatedAt,
		modelBusiness.CreatedBy,
		modelBusiness.LastUpdatedAt,
		modelBusiness.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("business ID " + business.BusinessID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to insert business "+business.BusinessID, err)
	}

	linkOwnerQuery := `UPDATE users SET business_id = $1 WHERE user_id = $2;`
	if _, err := tx.Exec(ctx, linkOwnerQuery, business.BusinessID, owner.UserID); err != nil {
		return apperrors.NewAppError(500, "failed to link owner "+owner.UserID+" to business "+business.BusinessID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxBusinessRepository) FindBusinessByID(ctx context.Context, businessID string) (*domain.Business, error) {
	filter := `WHERE b.business_id = $1`
	businesses, err := r.getBusinesses(ctx, filter, businessID)
	if err != nil {
		return nil, err
	}
	if len(businesses) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &businesses[0], nil
}

func (r *PgxBusinessRepository) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	filter := `ORDER BY b.created_at DESC`
	return r.getBusinesses(ctx, filter)
}

func (r *PgxBusinessRepository) CountActiveStaff(ctx context.Context, businessID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, countActiveStaffQuery, businessID, domain.RoleStaff).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count active staff for business "+businessID, err)
	}
	return count, nil
}

// lockBusinessRow takes a row lock on the business so concurrent seat writes
// for the same business serialize against each other.
func (r *PgxBusinessRepository) lockBusinessRow(ctx context.Context, tx pgx.Tx, businessID string) error {
	var lockedID string
	err := tx.QueryRow(ctx, `SELECT business_id FROM businesses WHERE business_id = $1 FOR UPDATE`, businessID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock business "+businessID, err)
	}
	return nil
}

// CreateStaffSeatGuarded inserts the staff account with the seat decision and
// the insert in one transaction. The row is written active only when the
// business still has a free seat under the limit at the moment of the locked
// count.
func (r *PgxBusinessRepository) CreateStaffSeatGuarded(ctx context.Context, staff domain.User, freeSeatLimit int) (bool, error) {
	if staff.BusinessID == nil {
		return false, apperrors.NewValidationFailedError("staff user must belong to a business")
	}
	businessID := *staff.BusinessID

	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockBusinessRow(ctx, tx, businessID); err != nil {
		return false, err
	}

	var activeStaff int
	if err := tx.QueryRow(ctx, countActiveStaffQuery, businessID, domain.RoleStaff).Scan(&activeStaff); err != nil {
		return false, apperrors.NewAppError(500, "failed to count active staff for business "+businessID, err)
	}
	seatGranted := activeStaff < freeSeatLimit

	modelStaff := mapping.ToModelUser(staff)
	insertQuery := `
		INSERT INTO users (
			user_id, email, name, password_hash, role, is_active,
			must_change_password, business_id, business_admin, has_paid,
			package, auth_provider, provider_user_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, insertQuery,
		modelStaff.UserID,
		modelStaff.Email,
		modelStaff.Name,
		modelStaff.PasswordHash,
		modelStaff.Role,
		seatGranted,
		modelStaff.MustChangePassword,
		modelStaff.BusinessID,
		modelStaff.BusinessAdmin,
		modelStaff.HasPaid,
		modelStaff.Package,
		modelStaff.AuthProvider,
		modelStaff.ProviderUserID,
		modelStaff.CreatedAt,
		modelStaff.CreatedBy,
		modelStaff.LastUpdatedAt,
		modelStaff.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return false, apperrors.NewConflictError("an account with email " + staff.Email + " already exists")
		}
		return false, apperrors.NewAppError(500, "failed to insert staff user "+staff.UserID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return seatGranted, nil
}

// ReactivateStaffSeatGuarded flips an inactive staff account back to active
// when a seat is free. Without a free seat the account stays inactive and the
// caller routes the business through seat payment instead.
func (r *PgxBusinessRepository) ReactivateStaffSeatGuarded(ctx context.Context, userID string, businessID string, updatedBy string, freeSeatLimit int) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockBusinessRow(ctx, tx, businessID); err != nil {
		return false, err
	}

	var activeStaff int
	if err := tx.QueryRow(ctx, countActiveStaffQuery, businessID, domain.RoleStaff).Scan(&activeStaff); err != nil {
		return false, apperrors.NewAppError(500, "failed to count active staff for business "+businessID, err)
	}
	if activeStaff >= freeSeatLimit {
		if err := r.Commit(ctx, tx); err != nil {
			return false, err
		}
		return false, nil
	}

	updateQuery := `
		UPDATE users
		SET is_active = TRUE, last_updated_at = NOW(), last_updated_by = $1
		WHERE user_id = $2 AND business_id = $3 AND role = $4 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, updatedBy, userID, businessID, domain.RoleStaff)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to reactivate staff user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, apperrors.ErrNotFound
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}
