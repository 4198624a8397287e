package services

import (
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gateways portssvc.GatewayProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Initialize the user service first since most services depend on it
	container.User = NewUserService(repos.UserRepo)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	container.Business = NewBusinessService(repos.BusinessRepo, repos.UserRepo, gateways.Mailer)
	container.Payment = NewPaymentService(cfg, repos.PaymentRepo, repos.UserRepo, gateways.Payments)

	// Staff provisioning hands billable seats to the payment service for
	// checkout session creation
	container.Staff = NewStaffService(cfg, repos.UserRepo, repos.BusinessRepo, container.Payment, gateways.Mailer)

	container.PasswordReset = NewPasswordResetService(cfg, repos.UserRepo, repos.PasswordResetTokenRepo, gateways.Mailer)
	container.Course = NewCourseService(repos.CourseRepo, repos.UserRepo, gateways.CourseCMS)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.UserSvcFacade          = (*userService)(nil)
	_ portssvc.TokenSvcFacade         = (*tokenService)(nil)
	_ portssvc.BusinessSvcFacade      = (*businessService)(nil)
	_ portssvc.StaffSvcFacade         = (*staffService)(nil)
	_ portssvc.PaymentSvcFacade       = (*paymentService)(nil)
	_ portssvc.PasswordResetSvcFacade = (*passwordResetService)(nil)
	_ portssvc.CourseSvcFacade        = (*courseService)(nil)
)
