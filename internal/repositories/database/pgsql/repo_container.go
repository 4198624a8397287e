package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	businessRepo := newPgxBusinessRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	passwordResetTokenRepo := newPgxPasswordResetTokenRepository(dbPool)
	courseRepo := newPgxCourseRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:               userRepo,
		BusinessRepo:           businessRepo,
		PaymentRepo:            paymentRepo,
		PasswordResetTokenRepo: passwordResetTokenRepo,
		CourseRepo:             courseRepo,
	}
}
