package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
	"github.com/skillgrove/skillgrove_app/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	// enrichmentConcurrency caps parallel gateway session lookups during
	// history enrichment.
	enrichmentConcurrency = 5
	// enrichmentLookupTimeout bounds each individual session lookup.
	enrichmentLookupTimeout = 5 * time.Second
)

// seatBeneficiaryPattern matches the recipient email embedded in seat
// purchase descriptions ("Staff seat for jane@acme.com").
var seatBeneficiaryPattern = regexp.MustCompile(`\bfor\s+([^\s@]+@[^\s@]+)`)

// paymentService implements the PaymentSvcFacade interface
type paymentService struct {
	BaseService
	cfg         *config.Config
	paymentRepo portsrepo.PaymentRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
	gateway     portssvc.PaymentGateway
}

// NewPaymentService creates a new payment service
func NewPaymentService(cfg *config.Config, paymentRepo portsrepo.PaymentRepositoryFacade, userRepo portsrepo.UserRepositoryFacade, gateway portssvc.PaymentGateway) portssvc.PaymentSvcFacade {
	return &paymentService{
		cfg:         cfg,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
	}
}

func staffSeatDescription(staffEmail string) string {
	return "Staff seat for " + staffEmail
}

func packageDescription(pkg domain.PackageTier) string {
	return string(pkg) + " course package"
}

// beneficiaryEmailFromDescription extracts the seat recipient's email from a
// payment description, or returns an empty string when no marker is present.
func beneficiaryEmailFromDescription(description string) string {
	m := seatBeneficiaryPattern.FindStringSubmatch(description)
	if len(m) < 2 {
		return ""
	}
	return utils.NormalizeEmail(strings.TrimRight(m[1], ".,;:"))
}

// ListPayments returns the completed payment history scoped to the caller's
// role, with beneficiary display identities resolved for seat purchases.
func (s *paymentService) ListPayments(ctx context.Context, caller domain.Caller, req dto.ListPaymentsRequest) (*domain.PaymentHistory, error) {
	completed := domain.PaymentCompleted
	filter := domain.PaymentFilter{Status: &completed}
	includePayers := false

	switch {
	case caller.IsAdmin():
		includePayers = true
		if req.Purpose != "" {
			purpose := domain.PaymentPurpose(req.Purpose)
			filter.Purpose = &purpose
		}
		if req.PayerEmail != "" {
			email := utils.NormalizeEmail(req.PayerEmail)
			filter.PayerEmail = &email
		}

	case caller.Role == domain.RoleBusiness,
		caller.Role == domain.RoleStaff && caller.BusinessAdmin:
		if caller.BusinessID == nil {
			return nil, apperrors.NewForbiddenError("account has no business scope")
		}
		filter.BusinessID = caller.BusinessID
		if req.Purpose != "" {
			purpose := domain.PaymentPurpose(req.Purpose)
			filter.Purpose = &purpose
		}

	case caller.Role == domain.RoleStaff:
		return nil, apperrors.NewForbiddenError("staff accounts cannot view billing")

	default:
		payerID := caller.UserID
		filter.PayerUserID = &payerID
	}

	payments, err := s.paymentRepo.ListPayments(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments")
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}

	s.resolveBeneficiaryDisplay(ctx, payments)

	history := &domain.PaymentHistory{Payments: payments}
	if includePayers {
		payers, err := s.paymentRepo.ListDistinctPayers(ctx)
		if err != nil {
			s.LogError(ctx, err, "Failed to list distinct payers")
			return nil, err
		}
		history.Payers = payers
	}
	return history, nil
}

// beneficiaryRef is an unresolved pointer at a seat beneficiary, found either
// on the payment row, in its description, or in gateway session metadata.
type beneficiaryRef struct {
	userID string
	email  string
}

// resolveBeneficiaryDisplay fills the display identity on each payment.
// Seat purchases resolve, in order: the stored beneficiary, the description
// marker, then gateway session metadata; everything else displays the payer.
// Gateway lookups are batched under a concurrency cap and any failure
// degrades to the payer fallback rather than failing the listing.
func (s *paymentService) resolveBeneficiaryDisplay(ctx context.Context, payments []domain.Payment) {
	if len(payments) == 0 {
		return
	}

	refs := make([]beneficiaryRef, len(payments))
	var sessionRows []int
	for i := range payments {
		p := &payments[i]
		if p.Purpose != domain.PurposeStaffSeat {
			continue
		}
		if p.BeneficiaryUserID != nil && *p.BeneficiaryUserID != "" {
			refs[i].userID = *p.BeneficiaryUserID
			continue
		}
		if email := beneficiaryEmailFromDescription(p.Description); email != "" {
			refs[i].email = email
			continue
		}
		if p.CheckoutSessionID != nil && *p.CheckoutSessionID != "" {
			sessionRows = append(sessionRows, i)
		}
	}

	if len(sessionRows) > 0 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(enrichmentConcurrency)
		for _, idx := range sessionRows {
			g.Go(func() error {
				lookupCtx, cancel := context.WithTimeout(gctx, enrichmentLookupTimeout)
				defer cancel()
				details, err := s.gateway.GetCheckoutSession(lookupCtx, *payments[idx].CheckoutSessionID)
				if err != nil {
					s.LogDebug(ctx, "Gateway session lookup failed, displaying payer",
						slog.String("payment_id", payments[idx].PaymentID))
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				if id := details.Metadata[domain.MetaKeyBeneficiaryUserID]; id != "" {
					refs[idx].userID = id
				} else if email := details.Metadata[domain.MetaKeyBeneficiaryEmail]; email != "" {
					refs[idx].email = utils.NormalizeEmail(email)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	idSet := make(map[string]struct{})
	emailSet := make(map[string]struct{})
	for _, ref := range refs {
		if ref.userID != "" {
			idSet[ref.userID] = struct{}{}
		}
		if ref.email != "" {
			emailSet[ref.email] = struct{}{}
		}
	}

	usersByID := map[string]domain.User{}
	if len(idSet) > 0 {
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		if found, err := s.userRepo.FindUsersByIDs(ctx, ids); err != nil {
			s.LogWarn(ctx, "Beneficiary lookup by ID failed, displaying payers", slog.String("error", err.Error()))
		} else {
			usersByID = found
		}
	}
	usersByEmail := map[string]domain.User{}
	if len(emailSet) > 0 {
		emails := make([]string, 0, len(emailSet))
		for email := range emailSet {
			emails = append(emails, email)
		}
		if found, err := s.userRepo.FindUsersByEmails(ctx, emails); err != nil {
			s.LogWarn(ctx, "Beneficiary lookup by email failed, displaying payers", slog.String("error", err.Error()))
		} else {
			usersByEmail = found
		}
	}

	for i := range payments {
		p := &payments[i]
		ref := refs[i]
		if ref.userID != "" {
			if u, ok := usersByID[ref.userID]; ok {
				p.BeneficiaryEmail, p.BeneficiaryName = u.Email, u.Name
				continue
			}
		}
		if ref.email != "" {
			p.BeneficiaryEmail = ref.email
			if u, ok := usersByEmail[ref.email]; ok {
				p.BeneficiaryEmail, p.BeneficiaryName = u.Email, u.Name
			}
			continue
		}
		p.BeneficiaryEmail, p.BeneficiaryName = p.PayerEmail, p.PayerName
	}
}

// CreatePackageCheckout opens a hosted checkout for the caller buying a
// course package for themselves.
func (s *paymentService) CreatePackageCheckout(ctx context.Context, caller domain.Caller, req dto.PackageCheckoutRequest) (*domain.CheckoutSession, error) {
	if caller.Role != domain.RoleIndividual {
		return nil, apperrors.NewForbiddenError("only individual accounts purchase course packages")
	}

	user, err := s.userRepo.FindUserByID(ctx, caller.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load payer for package checkout", slog.String("user_id", caller.UserID))
		return nil, err
	}

	pkg := domain.PackageTier(req.Package)
	price, err := s.packagePrice(pkg)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, domain.CheckoutParams{
		PayerUserID:   user.UserID,
		CustomerEmail: user.Email,
		Purpose:       domain.PurposePackage,
		Description:   packageDescription(pkg),
		Amount:        price,
		Currency:      s.cfg.PaymentCurrency,
		SuccessURL:    s.cfg.FrontendBaseURL + "/billing?checkout=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.FrontendBaseURL + "/billing?checkout=cancelled",
		Metadata: map[string]string{
			domain.MetaKeyBeneficiaryUserID: user.UserID,
			domain.MetaKeyPackage:           string(pkg),
		},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create package checkout session", slog.String("user_id", user.UserID))
		return nil, err
	}

	s.recordPendingPayment(ctx, domain.Payment{
		PaymentID:         uuid.NewString(),
		PayerUserID:       user.UserID,
		BeneficiaryUserID: &user.UserID,
		Amount:            price,
		Currency:          s.cfg.PaymentCurrency,
		Description:       packageDescription(pkg),
		Purpose:           domain.PurposePackage,
		Status:            domain.PaymentPending,
		CheckoutSessionID: &session.SessionID,
		CreatedAt:         time.Now(),
	})

	s.LogInfo(ctx, "Package checkout session created",
		slog.String("user_id", user.UserID),
		slog.String("package", string(pkg)))
	return session, nil
}

// CreateStaffSeatCheckout opens a hosted checkout for one staff seat, with
// the staff member written into the session metadata as beneficiary.
func (s *paymentService) CreateStaffSeatCheckout(ctx context.Context, payer *domain.User, staff *domain.User, business *domain.Business) (*domain.CheckoutSession, error) {
	price := s.cfg.StaffSeatPrice
	if !price.IsPositive() {
		s.LogError(ctx, errors.New("non-positive seat price"), "Staff seat price is not configured")
		return nil, apperrors.NewInternalServerError("staff seat price is not configured")
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, domain.CheckoutParams{
		PayerUserID:   payer.UserID,
		CustomerEmail: payer.Email,
		Purpose:       domain.PurposeStaffSeat,
		Description:   staffSeatDescription(staff.Email),
		Amount:        price,
		Currency:      s.cfg.PaymentCurrency,
		SuccessURL:    s.cfg.FrontendBaseURL + "/staff?checkout=success&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.FrontendBaseURL + "/staff?checkout=cancelled",
		Metadata: map[string]string{
			domain.MetaKeyBeneficiaryUserID: staff.UserID,
			domain.MetaKeyBeneficiaryEmail:  staff.Email,
			domain.MetaKeyBusinessID:        business.BusinessID,
		},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create seat checkout session",
			slog.String("payer_user_id", payer.UserID),
			slog.String("business_id", business.BusinessID))
		return nil, err
	}

	s.recordPendingPayment(ctx, domain.Payment{
		PaymentID:         uuid.NewString(),
		PayerUserID:       payer.UserID,
		BeneficiaryUserID: &staff.UserID,
		Amount:            price,
		Currency:          s.cfg.PaymentCurrency,
		Description:       staffSeatDescription(staff.Email),
		Purpose:           domain.PurposeStaffSeat,
		Status:            domain.PaymentPending,
		CheckoutSessionID: &session.SessionID,
		CreatedAt:         time.Now(),
	})

	s.LogInfo(ctx, "Seat checkout session created",
		slog.String("payer_user_id", payer.UserID),
		slog.String("beneficiary_user_id", staff.UserID))
	return session, nil
}

// recordPendingPayment writes the PENDING row for a fresh checkout session.
// Reconciliation inserts a completed row itself when this write is lost, so
// a failure here is logged rather than surfaced.
func (s *paymentService) recordPendingPayment(ctx context.Context, payment domain.Payment) {
	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		s.LogError(ctx, err, "Failed to record pending payment",
			slog.String("payment_id", payment.PaymentID))
	}
}

func (s *paymentService) packagePrice(pkg domain.PackageTier) (decimal.Decimal, error) {
	var price decimal.Decimal
	switch pkg {
	case domain.PackageBasic:
		price = s.cfg.PackageBasicPrice
	case domain.PackagePremium:
		price = s.cfg.PackagePremiumPrice
	default:
		return decimal.Zero, apperrors.NewValidationFailedError("unknown package " + string(pkg))
	}
	if !price.IsPositive() {
		return decimal.Zero, apperrors.NewInternalServerError("package price is not configured")
	}
	return price, nil
}

// ProcessWebhook verifies and applies a payment provider delivery. Grants are
// idempotent and run before the payment row flips, so a redelivery after a
// partial failure retries them; the row flip is what makes clean redeliveries
// no-ops.
func (s *paymentService) ProcessWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseCheckoutCompleted(payload, signature)
	if err != nil {
		return err
	}
	if event == nil {
		s.LogDebug(ctx, "Ignoring webhook event")
		return nil
	}

	purpose := domain.PaymentPurpose(event.Metadata[domain.MetaKeyPurpose])
	payerID := event.Metadata[domain.MetaKeyPayerUserID]
	if purpose != domain.PurposePackage && purpose != domain.PurposeStaffSeat {
		s.LogWarn(ctx, "Completed session carries no known purpose, skipping",
			slog.String("session_id", event.SessionID))
		return nil
	}
	if payerID == "" {
		s.LogWarn(ctx, "Completed session carries no payer reference, skipping",
			slog.String("session_id", event.SessionID))
		return nil
	}

	completed := domain.Payment{
		PaymentID:         uuid.NewString(),
		PayerUserID:       payerID,
		Amount:            event.AmountTotal,
		Currency:          event.Currency,
		Purpose:           purpose,
		Status:            domain.PaymentCompleted,
		CheckoutSessionID: &event.SessionID,
		CreatedAt:         time.Now(),
	}

	switch purpose {
	case domain.PurposeStaffSeat:
		beneficiaryID := s.resolveSeatBeneficiary(ctx, event)
		if beneficiaryID == "" {
			s.LogWarn(ctx, "Seat payment has no resolvable beneficiary",
				slog.String("session_id", event.SessionID))
		} else {
			if err := s.userRepo.SetUserActive(ctx, beneficiaryID, true, payerID); err != nil {
				s.LogError(ctx, err, "Failed to activate staff for paid seat",
					slog.String("user_id", beneficiaryID),
					slog.String("session_id", event.SessionID))
				return err
			}
			completed.BeneficiaryUserID = &beneficiaryID
		}
		email := event.Metadata[domain.MetaKeyBeneficiaryEmail]
		if email == "" {
			email = event.CustomerEmail
		}
		completed.Description = staffSeatDescription(email)

	case domain.PurposePackage:
		pkg := domain.PackageTier(event.Metadata[domain.MetaKeyPackage])
		if pkg == "" {
			s.LogWarn(ctx, "Package payment has no package tier",
				slog.String("session_id", event.SessionID))
		} else if err := s.userRepo.SetPaidPackage(ctx, payerID, pkg, payerID); err != nil {
			s.LogError(ctx, err, "Failed to grant package",
				slog.String("user_id", payerID),
				slog.String("session_id", event.SessionID))
			return err
		}
		completed.BeneficiaryUserID = &payerID
		completed.Description = packageDescription(pkg)
	}

	transitioned, err := s.paymentRepo.MarkCompletedBySession(ctx, completed, time.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to record completed payment",
			slog.String("session_id", event.SessionID))
		return err
	}
	if !transitioned {
		s.LogInfo(ctx, "Duplicate webhook delivery ignored", slog.String("session_id", event.SessionID))
		return nil
	}

	s.LogInfo(ctx, "Checkout session reconciled",
		slog.String("session_id", event.SessionID),
		slog.String("purpose", string(purpose)))
	return nil
}

// resolveSeatBeneficiary finds the staff account a seat payment activates,
// preferring the user ID written into the session metadata at creation.
func (s *paymentService) resolveSeatBeneficiary(ctx context.Context, event *domain.CheckoutCompletedEvent) string {
	if id := event.Metadata[domain.MetaKeyBeneficiaryUserID]; id != "" {
		return id
	}
	email := event.Metadata[domain.MetaKeyBeneficiaryEmail]
	if email == "" {
		return ""
	}
	user, err := s.userRepo.FindUserByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to resolve seat beneficiary by email")
		}
		return ""
	}
	return user.UserID
}
