package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	"github.com/skillgrove/skillgrove_app/internal/models"
	"github.com/skillgrove/skillgrove_app/internal/utils/mapping"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

var FULL_USER_SELECT_QUERY = `
SELECT
	u.user_id, u.email, u.name, u.password_hash, u.role, u.is_active,
	u.must_change_password, u.business_id, u.business_admin, u.has_paid,
	u.package, u.auth_provider, u.provider_user_id,
	u.created_at, u.created_by, u.last_updated_at, u.last_updated_by,
	u.deleted_at, u.refresh_token_hash, u.refresh_token_expiry_time
FROM users u
`

// getUsers runs the full select with the given filter suffix and maps rows to
// domain users.
func (r *PgxUserRepository) getUsers(ctx context.Context, filterQuery string, args ...any) ([]domain.User, error) {
	query := FULL_USER_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users", err)
	}
	defer rows.Close()
	modelUsers, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.User{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect user rows", err)
	}

	return mapping.ToDomainUserSlice(modelUsers), nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (
			user_id, email, name, password_hash, role, is_active,
			must_change_password, business_id, business_admin, has_paid,
			package, auth_provider, provider_user_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelUser.UserID,
		modelUser.Email,
		modelUser.Name,
		modelUser.PasswordHash,
		modelUser.Role,
		modelUser.IsActive,
		modelUser.MustChangePassword,
		modelUser.BusinessID,
		modelUser.BusinessAdmin,
		modelUser.HasPaid,
		modelUser.Package,
		modelUser.AuthProvider,
		modelUser.ProviderUserID,
		modelUser.CreatedAt,
		modelUser.CreatedBy,
		modelUser.LastUpdatedAt,
		modelUser.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("an account with email " + user.Email + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save user "+user.UserID, err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	filter := `WHERE u.user_id = $1 AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, filter, userID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	filter := `WHERE LOWER(u.email) = LOWER($1) AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, filter, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	if len(userIDs) == 0 {
		return map[string]domain.User{}, nil
	}
	filter := `WHERE u.user_id = ANY($1) AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, filter, userIDs)
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.User, len(users))
	for _, u := range users {
		result[u.UserID] = u
	}
	return result, nil
}

func (r *PgxUserRepository) FindUsersByEmails(ctx context.Context, emails []string) (map[string]domain.User, error) {
	if len(emails) == 0 {
		return map[string]domain.User{}, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(strings.TrimSpace(e))
	}
	filter := `WHERE LOWER(u.email) = ANY($1) AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, filter, lowered)
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.User, len(users))
	for _, u := range users {
		result[strings.ToLower(u.Email)] = u
	}
	return result, nil
}

func (r *PgxUserRepository) ListStaffByBusinessID(ctx context.Context, businessID string) ([]domain.User, error) {
	filter := `WHERE u.business_id = $1 AND u.role = $2 AND u.deleted_at IS NULL ORDER BY u.created_at ASC`
	return r.getUsers(ctx, filter, businessID, domain.RoleStaff)
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $1, business_admin = $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $5 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		user.Name,
		user.BusinessAdmin,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
		user.UserID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update user "+user.UserID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $1, refresh_token_expiry_time = $2, last_updated_at = NOW()
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, refreshTokenHash, refreshTokenExpiryTime, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update refresh token for user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL, last_updated_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to clear refresh token for user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdatePassword also clears the stored refresh token so sessions issued
// before the change cannot be extended.
func (r *PgxUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string, mustChangePassword bool, updatedBy string) error {
	query := `
		UPDATE users
		SET password_hash = $1, must_change_password = $2,
			refresh_token_hash = NULL, refresh_token_expiry_time = NULL,
			last_updated_at = NOW(), last_updated_by = $3
		WHERE user_id = $4 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, passwordHash, mustChangePassword, updatedBy, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update password for user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) SetPaidPackage(ctx context.Context, userID string, pkg domain.PackageTier, updatedBy string) error {
	query := `
		UPDATE users
		SET has_paid = TRUE, package = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, pkg, updatedBy, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set paid package for user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) SetUserActive(ctx context.Context, userID string, active bool, updatedBy string) error {
	query := `
		UPDATE users
		SET is_active = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, active, updatedBy, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update active state for user "+userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
