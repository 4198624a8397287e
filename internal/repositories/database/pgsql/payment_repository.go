package pgsql

import (
	"context"
	"errors"
	"strconv"
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

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

// Payer identity is joined in so listings can render who paid without a
// second lookup.
var FULL_PAYMENT_SELECT_QUERY = `
SELECT
	p.payment_id, p.payer_user_id, p.beneficiary_user_id, p.amount, p.currency,
	p.description, p.purpose, p.status, p.checkout_session_id,
	p.created_at, p.completed_at,
	COALESCE(pu.email, '') AS payer_email,
	COALESCE(pu.name, '') AS payer_name
FROM payments p
LEFT JOIN users pu ON p.payer_user_id = pu.user_id
`

const insertPaymentQuery = `
	INSERT INTO payments (
		payment_id, payer_user_id, beneficiary_user_id, amount, currency,
		description, purpose, status, checkout_session_id, created_at, completed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// getPayments runs the full select with the given filter suffix and maps rows
// to domain payments.
func (r *PgxPaymentRepository) getPayments(ctx context.Context, filterQuery string, args ...any) ([]domain.Payment, error) {
	query := FULL_PAYMENT_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments", err)
	}
	defer rows.Close()
	modelPayments, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Payment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Payment{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect payment rows", err)
	}

	return mapping.ToDomainPaymentSlice(modelPayments), nil
}

// SavePayment inserts a pending payment. A duplicate checkout session is a
// no-op so retried session creation does not double-record.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	modelPayment := mapping.ToModelPayment(payment)
	query := insertPaymentQuery + `
	ON CONFLICT (checkout_session_id) WHERE checkout_session_id IS NOT NULL DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		modelPayment.PaymentID,
		modelPayment.PayerUserID,
		modelPayment.BeneficiaryUserID,
		modelPayment.Amount,
		modelPayment.Currency,
		modelPayment.Description,
		modelPayment.Purpose,
		modelPayment.Status,
		modelPayment.CheckoutSessionID,
		modelPayment.CreatedAt,
		modelPayment.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("payment ID " + payment.PaymentID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save payment "+payment.PaymentID, err)
	}
	return nil
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	filter := `WHERE p.payment_id = $1`
	payments, err := r.getPayments(ctx, filter, paymentID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &payments[0], nil
}

func (r *PgxPaymentRepository) FindPaymentByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	filter := `WHERE p.checkout_session_id = $1`
	payments, err := r.getPayments(ctx, filter, sessionID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &payments[0], nil
}

func (r *PgxPaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	var conditions []string
	var args []any

	appendCondition := func(clause string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, clause+" $"+strconv.Itoa(len(args)))
	}

	if filter.Status != nil {
		appendCondition("p.status =", *filter.Status)
	}
	if filter.Purpose != nil {
		appendCondition("p.purpose =", *filter.Purpose)
	}
	if filter.PayerUserID != nil {
		appendCondition("p.payer_user_id =", *filter.PayerUserID)
	}
	if filter.PayerEmail != nil {
		appendCondition("LOWER(pu.email) =", strings.ToLower(*filter.PayerEmail))
	}
	if filter.BusinessID != nil {
		appendCondition("pu.business_id =", *filter.BusinessID)
	}

	filterQuery := ""
	if len(conditions) > 0 {
		filterQuery = "WHERE " + strings.Join(conditions, " AND ") + "\n"
	}
	filterQuery += "ORDER BY p.created_at DESC"

	return r.getPayments(ctx, filterQuery, args...)
}

func (r *PgxPaymentRepository) ListDistinctPayers(ctx context.Context) ([]domain.PaymentPayer, error) {
	query := `
		SELECT DISTINCT p.payer_user_id, COALESCE(pu.email, '') AS email, COALESCE(pu.name, '') AS name
		FROM payments p
		LEFT JOIN users pu ON p.payer_user_id = pu.user_id
		ORDER BY email;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query distinct payers", err)
	}
	defer rows.Close()

	var payers []domain.PaymentPayer
	for rows.Next() {
		var payer domain.PaymentPayer
		if err := rows.Scan(&payer.UserID, &payer.Email, &payer.Name); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payer row", err)
		}
		payers = append(payers, payer)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payer rows", err)
	}

	return payers, nil
}

// MarkCompletedBySession applies a completed-checkout event. The session's
// row is locked first so a second delivery of the same event observes the
// COMPLETED status instead of applying the transition twice.
func (r *PgxPaymentRepository) MarkCompletedBySession(ctx context.Context, payment domain.Payment, completedAt time.Time) (bool, error) {
	if payment.CheckoutSessionID == nil || *payment.CheckoutSessionID == "" {
		return false, apperrors.NewValidationFailedError("payment is missing a checkout session ID")
	}
	sessionID := *payment.CheckoutSessionID

	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	var existingID, existingStatus string
	err = tx.QueryRow(ctx,
		`SELECT payment_id, status FROM payments WHERE checkout_session_id = $1 FOR UPDATE`,
		sessionID,
	).Scan(&existingID, &existingStatus)

	switch {
	case err == nil:
		if domain.PaymentStatus(existingStatus) == domain.PaymentCompleted {
			if err := r.Commit(ctx, tx); err != nil {
				return false, err
			}
			return false, nil
		}
		updateQuery := `
			UPDATE payments
			SET status = $1, amount = $2, currency = $3, completed_at = $4
			WHERE payment_id = $5;
		`
		if _, err := tx.Exec(ctx, updateQuery,
			domain.PaymentCompleted, payment.Amount, payment.Currency, completedAt, existingID,
		); err != nil {
			return false, apperrors.NewAppError(500, "failed to complete payment "+existingID, err)
		}

	case errors.Is(err, pgx.ErrNoRows):
		// No pending row recorded for this session; insert it completed.
		modelPayment := mapping.ToModelPayment(payment)
		if _, err := tx.Exec(ctx, insertPaymentQuery,
			modelPayment.PaymentID,
			modelPayment.PayerUserID,
			modelPayment.BeneficiaryUserID,
			modelPayment.Amount,
			modelPayment.Currency,
			modelPayment.Description,
			modelPayment.Purpose,
			domain.PaymentCompleted,
			modelPayment.CheckoutSessionID,
			modelPayment.CreatedAt,
			completedAt,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation: concurrent delivery won
				return false, nil
			}
			return false, apperrors.NewAppError(500, "failed to insert completed payment for session "+sessionID, err)
		}

	default:
		return false, apperrors.NewAppError(500, "failed to look up payment for session "+sessionID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}
