package pgsql

import (
	"context"
	"errors"
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

type PgxPasswordResetTokenRepository struct {
	BaseRepository
}

// newPgxPasswordResetTokenRepository creates a new repository for password reset tokens.
func newPgxPasswordResetTokenRepository(pool *pgxpool.Pool) portsrepo.PasswordResetTokenRepository {
	return &PgxPasswordResetTokenRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPasswordResetTokenRepository implements the port
var _ portsrepo.PasswordResetTokenRepository = (*PgxPasswordResetTokenRepository)(nil)

const (
	passwordResetTokensTable = "password_reset_tokens"

	selectPasswordResetTokenFields = `
		token_id, user_id, token_hash, expires_at, used_at, created_at
	`

	insertPasswordResetTokenQuery = `
		INSERT INTO ` + passwordResetTokensTable + ` (
			token_id, user_id, token_hash, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	consumePasswordResetTokenQuery = `
		UPDATE ` + passwordResetTokensTable + `
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING ` + selectPasswordResetTokenFields

	deletePasswordResetTokensByUserQuery = `
		DELETE FROM ` + passwordResetTokensTable + `
		WHERE user_id = $1
	`

	deleteExpiredPasswordResetTokensQuery = `
		DELETE FROM ` + passwordResetTokensTable + `
		WHERE expires_at < $1
	`
)

// Create persists a new reset token.
func (r *PgxPasswordResetTokenRepository) Create(ctx context.Context, token domain.PasswordResetToken) error {
	modelToken := mapping.ToModelPasswordResetToken(token)
	_, err := r.Pool.Exec(ctx, insertPasswordResetTokenQuery,
		modelToken.TokenID,
		modelToken.UserID,
		modelToken.TokenHash,
		modelToken.ExpiresAt,
		modelToken.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("reset token already exists")
		}
		return apperrors.NewAppError(500, "failed to save password reset token", err)
	}
	return nil
}

// DeleteByUserID removes every reset token for the user. Called before
// issuing a new one so only the latest token works.
func (r *PgxPasswordResetTokenRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, deletePasswordResetTokensByUserQuery, userID)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete reset tokens for user "+userID, err)
	}
	return cmdTag.RowsAffected(), nil
}

// ConsumeToken marks the token used and returns it in one statement, so the
// same token cannot be redeemed twice.
func (r *PgxPasswordResetTokenRepository) ConsumeToken(ctx context.Context, tokenHash string, now time.Time) (*domain.PasswordResetToken, error) {
	var modelToken models.PasswordResetToken
	err := r.Pool.QueryRow(ctx, consumePasswordResetTokenQuery, tokenHash, now).Scan(
		&modelToken.TokenID,
		&modelToken.UserID,
		&modelToken.TokenHash,
		&modelToken.ExpiresAt,
		&modelToken.UsedAt,
		&modelToken.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to consume password reset token", err)
	}

	domainToken := mapping.ToDomainPasswordResetToken(modelToken)
	return &domainToken, nil
}

// DeleteExpired removes tokens whose expiry is before the given time.
func (r *PgxPasswordResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	cmdTag, err := r.Pool.Exec(ctx, deleteExpiredPasswordResetTokensQuery, before)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete expired reset tokens", err)
	}
	return cmdTag.RowsAffected(), nil
}
