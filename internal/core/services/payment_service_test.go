package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portsrepo "github.com/skillgrove/skillgrove_app/internal/core/ports/repositories"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/core/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListDistinctPayers(ctx context.Context) ([]domain.PaymentPayer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentPayer), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkCompletedBySession(ctx context.Context, payment domain.Payment, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, payment, completedAt)
	return args.Bool(0), args.Error(1)
}

// Ensure mock implements the interface
var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

// --- Mock PaymentGateway ---
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, params domain.CheckoutParams) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSessionDetails, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSessionDetails), args.Error(1)
}

func (m *MockPaymentGateway) ParseCheckoutCompleted(payload []byte, signature string) (*domain.CheckoutCompletedEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutCompletedEvent), args.Error(1)
}

var _ portssvc.PaymentGateway = (*MockPaymentGateway)(nil)

// --- Test Suite ---
type PaymentServiceTestSuite struct {
	suite.Suite
	cfg             *config.Config
	mockPaymentRepo *MockPaymentRepository
	mockUserRepo    *MockUserRepository
	mockGateway     *MockPaymentGateway
	service         portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.cfg = &config.Config{
		PaymentCurrency:     "EUR",
		FrontendBaseURL:     "http://localhost:3000",
		StaffSeatPrice:      decimal.NewFromInt(35),
		PackageBasicPrice:   decimal.NewFromInt(120),
		PackagePremiumPrice: decimal.NewFromInt(200),
	}
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockGateway = new(MockPaymentGateway)
	suite.service = services.NewPaymentService(suite.cfg, suite.mockPaymentRepo, suite.mockUserRepo, suite.mockGateway)
}

func seatPayment(beneficiaryID *string, description string) domain.Payment {
	sessionID := "cs_" + uuid.NewString()
	return domain.Payment{
		PaymentID:         uuid.NewString(),
		PayerUserID:       uuid.NewString(),
		BeneficiaryUserID: beneficiaryID,
		Amount:            decimal.NewFromInt(35),
		Currency:          "EUR",
		Description:       description,
		Purpose:           domain.PurposeStaffSeat,
		Status:            domain.PaymentCompleted,
		CheckoutSessionID: &sessionID,
		PayerEmail:        "owner@acme.com",
		PayerName:         "Owner",
	}
}

// --- ListPayments Tests ---

func (suite *PaymentServiceTestSuite) TestListPayments_AdminSeesAllWithPayers() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	payers := []domain.PaymentPayer{{UserID: uuid.NewString(), Email: "owner@acme.com", Name: "Owner"}}

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.Status != nil && *f.Status == domain.PaymentCompleted &&
			f.Purpose == nil && f.PayerEmail == nil && f.PayerUserID == nil && f.BusinessID == nil
	})).Return([]domain.Payment{}, nil).Once()
	suite.mockPaymentRepo.On("ListDistinctPayers", ctx).Return(payers, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Len(history.Payers, 1)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestListPayments_AdminFiltersNormalized() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	req := dto.ListPaymentsRequest{Purpose: "STAFF_SEAT", PayerEmail: " Owner@Acme.com "}

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.Purpose != nil && *f.Purpose == domain.PurposeStaffSeat &&
			f.PayerEmail != nil && *f.PayerEmail == "owner@acme.com"
	})).Return([]domain.Payment{}, nil).Once()
	suite.mockPaymentRepo.On("ListDistinctPayers", ctx).Return([]domain.PaymentPayer{}, nil).Once()

	_, err := suite.service.ListPayments(ctx, caller, req)

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestListPayments_BusinessOwnerScopedToBusiness() {
	ctx := context.Background()
	businessID := uuid.NewString()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleBusiness, BusinessID: &businessID}

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.BusinessID != nil && *f.BusinessID == businessID && f.PayerUserID == nil
	})).Return([]domain.Payment{}, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Empty(history.Payers)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "ListDistinctPayers", mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestListPayments_IndividualSeesOwnOnly() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.PayerUserID != nil && *f.PayerUserID == caller.UserID && f.BusinessID == nil
	})).Return([]domain.Payment{}, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.NotNil(history.Payments)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestListPayments_PlainStaffForbidden() {
	ctx := context.Background()
	businessID := uuid.NewString()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleStaff, BusinessID: &businessID}

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().Error(err)
	suite.Nil(history)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "ListPayments", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestListPayments_BusinessAdminStaffScoped() {
	ctx := context.Background()
	businessID := uuid.NewString()
	caller := domain.Caller{
		UserID: uuid.NewString(), Role: domain.RoleStaff,
		BusinessID: &businessID, BusinessAdmin: true,
	}

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.MatchedBy(func(f domain.PaymentFilter) bool {
		return f.BusinessID != nil && *f.BusinessID == businessID
	})).Return([]domain.Payment{}, nil).Once()

	_, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

// --- Beneficiary Display Tests ---

func (suite *PaymentServiceTestSuite) TestListPayments_BeneficiaryFromStoredID() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	staffID := uuid.NewString()
	payment := seatPayment(&staffID, "Staff seat for jane@acme.com")

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.Anything).Return([]domain.Payment{payment}, nil).Once()
	suite.mockUserRepo.On("FindUsersByIDs", ctx, []string{staffID}).
		Return(map[string]domain.User{staffID: {UserID: staffID, Email: "jane@acme.com", Name: "Jane"}}, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Require().Len(history.Payments, 1)
	suite.Equal("jane@acme.com", history.Payments[0].BeneficiaryEmail)
	suite.Equal("Jane", history.Payments[0].BeneficiaryName)
}

func (suite *PaymentServiceTestSuite) TestListPayments_BeneficiaryFromDescription() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	payment := seatPayment(nil, "Staff seat for Jane@Acme.com")

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.Anything).Return([]domain.Payment{payment}, nil).Once()
	suite.mockUserRepo.On("FindUsersByEmails", ctx, []string{"jane@acme.com"}).
		Return(map[string]domain.User{"jane@acme.com": {Email: "jane@acme.com", Name: "Jane"}}, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Equal("jane@acme.com", history.Payments[0].BeneficiaryEmail)
	suite.Equal("Jane", history.Payments[0].BeneficiaryName)
	suite.mockGateway.AssertNotCalled(suite.T(), "GetCheckoutSession", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestListPayments_BeneficiaryFromGatewaySession() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	staffID := uuid.NewString()
	payment := seatPayment(nil, "Seat purchase")

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.Anything).Return([]domain.Payment{payment}, nil).Once()
	suite.mockGateway.On("GetCheckoutSession", mock.Anything, *payment.CheckoutSessionID).
		Return(&domain.CheckoutSessionDetails{
			SessionID: *payment.CheckoutSessionID,
			Metadata:  map[string]string{domain.MetaKeyBeneficiaryUserID: staffID},
		}, nil).Once()
	suite.mockUserRepo.On("FindUsersByIDs", ctx, []string{staffID}).
		Return(map[string]domain.User{staffID: {UserID: staffID, Email: "jane@acme.com", Name: "Jane"}}, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Equal("jane@acme.com", history.Payments[0].BeneficiaryEmail)
	suite.mockGateway.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestListPayments_GatewayFailureFallsBackToPayer() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	payment := seatPayment(nil, "Seat purchase")

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.Anything).Return([]domain.Payment{payment}, nil).Once()
	suite.mockGateway.On("GetCheckoutSession", mock.Anything, *payment.CheckoutSessionID).
		Return(nil, assert.AnError).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Equal(payment.PayerEmail, history.Payments[0].BeneficiaryEmail)
	suite.Equal(payment.PayerName, history.Payments[0].BeneficiaryName)
}

func (suite *PaymentServiceTestSuite) TestListPayments_PackageDisplaysPayer() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	payment := domain.Payment{
		PaymentID:   uuid.NewString(),
		PayerUserID: caller.UserID,
		Amount:      decimal.NewFromInt(120),
		Currency:    "EUR",
		Description: "BASIC course package",
		Purpose:     domain.PurposePackage,
		Status:      domain.PaymentCompleted,
		PayerEmail:  "jane@example.com",
		PayerName:   "Jane",
	}

	suite.mockPaymentRepo.On("ListPayments", ctx, mock.Anything).Return([]domain.Payment{payment}, nil).Once()

	history, err := suite.service.ListPayments(ctx, caller, dto.ListPaymentsRequest{})

	suite.Require().NoError(err)
	suite.Equal("jane@example.com", history.Payments[0].BeneficiaryEmail)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUsersByIDs", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUsersByEmails", mock.Anything, mock.Anything)
	suite.mockGateway.AssertNotCalled(suite.T(), "GetCheckoutSession", mock.Anything, mock.Anything)
}

// --- CreatePackageCheckout Tests ---

func (suite *PaymentServiceTestSuite) TestCreatePackageCheckout_Success() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	user := &domain.User{UserID: caller.UserID, Email: "jane@example.com", Role: domain.RoleIndividual}
	session := &domain.CheckoutSession{SessionID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}

	suite.mockUserRepo.On("FindUserByID", ctx, caller.UserID).Return(user, nil).Once()
	suite.mockGateway.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(p domain.CheckoutParams) bool {
		return p.PayerUserID == user.UserID &&
			p.CustomerEmail == user.Email &&
			p.Purpose == domain.PurposePackage &&
			p.Amount.Equal(decimal.NewFromInt(120)) &&
			p.Currency == "EUR" &&
			p.Metadata[domain.MetaKeyBeneficiaryUserID] == user.UserID &&
			p.Metadata[domain.MetaKeyPackage] == "BASIC"
	})).Return(session, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.PayerUserID == user.UserID &&
			p.BeneficiaryUserID != nil && *p.BeneficiaryUserID == user.UserID &&
			p.Status == domain.PaymentPending &&
			p.Purpose == domain.PurposePackage &&
			p.CheckoutSessionID != nil && *p.CheckoutSessionID == session.SessionID
	})).Return(nil).Once()

	result, err := suite.service.CreatePackageCheckout(ctx, caller, dto.PackageCheckoutRequest{Package: "BASIC"})

	suite.Require().NoError(err)
	suite.Equal(session, result)
	suite.mockGateway.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreatePackageCheckout_PremiumPrice() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	user := &domain.User{UserID: caller.UserID, Email: "jane@example.com"}
	session := &domain.CheckoutSession{SessionID: "cs_test_456", URL: "https://checkout.example/cs_test_456"}

	suite.mockUserRepo.On("FindUserByID", ctx, caller.UserID).Return(user, nil).Once()
	suite.mockGateway.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(p domain.CheckoutParams) bool {
		return p.Amount.Equal(decimal.NewFromInt(200)) && p.Metadata[domain.MetaKeyPackage] == "PREMIUM"
	})).Return(session, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil).Once()

	_, err := suite.service.CreatePackageCheckout(ctx, caller, dto.PackageCheckoutRequest{Package: "PREMIUM"})

	suite.Require().NoError(err)
	suite.mockGateway.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreatePackageCheckout_NonIndividualForbidden() {
	ctx := context.Background()
	businessID := uuid.NewString()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleBusiness, BusinessID: &businessID}

	result, err := suite.service.CreatePackageCheckout(ctx, caller, dto.PackageCheckoutRequest{Package: "BASIC"})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGateway.AssertNotCalled(suite.T(), "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePackageCheckout_UnknownPackage() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	user := &domain.User{UserID: caller.UserID, Email: "jane@example.com"}

	suite.mockUserRepo.On("FindUserByID", ctx, caller.UserID).Return(user, nil).Once()

	result, err := suite.service.CreatePackageCheckout(ctx, caller, dto.PackageCheckoutRequest{Package: "GOLD"})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockGateway.AssertNotCalled(suite.T(), "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePackageCheckout_PendingWriteFailureTolerated() {
	ctx := context.Background()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleIndividual}
	user := &domain.User{UserID: caller.UserID, Email: "jane@example.com"}
	session := &domain.CheckoutSession{SessionID: "cs_test_789", URL: "https://checkout.example/cs_test_789"}

	suite.mockUserRepo.On("FindUserByID", ctx, caller.UserID).Return(user, nil).Once()
	suite.mockGateway.On("CreateCheckoutSession", ctx, mock.Anything).Return(session, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment")).
		Return(assert.AnError).Once()

	result, err := suite.service.CreatePackageCheckout(ctx, caller, dto.PackageCheckoutRequest{Package: "BASIC"})

	suite.Require().NoError(err)
	suite.Equal(session, result)
}

// --- CreateStaffSeatCheckout Tests ---

func (suite *PaymentServiceTestSuite) TestCreateStaffSeatCheckout_MetadataCarriesBeneficiary() {
	ctx := context.Background()
	payer := &domain.User{UserID: uuid.NewString(), Email: "owner@acme.com"}
	staff := &domain.User{UserID: uuid.NewString(), Email: "jane@acme.com"}
	business := &domain.Business{BusinessID: uuid.NewString(), Name: "Acme GmbH"}
	session := &domain.CheckoutSession{SessionID: "cs_seat_123", URL: "https://checkout.example/cs_seat_123"}

	suite.mockGateway.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(p domain.CheckoutParams) bool {
		return p.PayerUserID == payer.UserID &&
			p.CustomerEmail == payer.Email &&
			p.Purpose == domain.PurposeStaffSeat &&
			p.Amount.Equal(decimal.NewFromInt(35)) &&
			p.Description == "Staff seat for jane@acme.com" &&
			p.Metadata[domain.MetaKeyBeneficiaryUserID] == staff.UserID &&
			p.Metadata[domain.MetaKeyBeneficiaryEmail] == staff.Email &&
			p.Metadata[domain.MetaKeyBusinessID] == business.BusinessID
	})).Return(session, nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.BeneficiaryUserID != nil && *p.BeneficiaryUserID == staff.UserID &&
			p.Status == domain.PaymentPending &&
			p.Purpose == domain.PurposeStaffSeat
	})).Return(nil).Once()

	result, err := suite.service.CreateStaffSeatCheckout(ctx, payer, staff, business)

	suite.Require().NoError(err)
	suite.Equal(session, result)
	suite.mockGateway.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreateStaffSeatCheckout_UnconfiguredPrice() {
	ctx := context.Background()
	suite.cfg.StaffSeatPrice = decimal.Zero
	payer := &domain.User{UserID: uuid.NewString(), Email: "owner@acme.com"}
	staff := &domain.User{UserID: uuid.NewString(), Email: "jane@acme.com"}
	business := &domain.Business{BusinessID: uuid.NewString()}

	result, err := suite.service.CreateStaffSeatCheckout(ctx, payer, staff, business)

	suite.Require().Error(err)
	suite.Nil(result)
	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(500, appErr.Code)
	suite.mockGateway.AssertNotCalled(suite.T(), "CreateCheckoutSession", mock.Anything, mock.Anything)
}

// --- ProcessWebhook Tests ---

func (suite *PaymentServiceTestSuite) TestProcessWebhook_SeatActivatesBeneficiary() {
	ctx := context.Background()
	payload := []byte(`{"type":"checkout.session.completed"}`)
	payerID := uuid.NewString()
	staffID := uuid.NewString()
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_seat_123",
		AmountTotal: decimal.NewFromInt(35),
		Currency:    "EUR",
		Metadata: map[string]string{
			domain.MetaKeyPurpose:           string(domain.PurposeStaffSeat),
			domain.MetaKeyPayerUserID:       payerID,
			domain.MetaKeyBeneficiaryUserID: staffID,
			domain.MetaKeyBeneficiaryEmail:  "jane@acme.com",
		},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()
	suite.mockUserRepo.On("SetUserActive", ctx, staffID, true, payerID).Return(nil).Once()
	suite.mockPaymentRepo.On("MarkCompletedBySession", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.PayerUserID == payerID &&
			p.BeneficiaryUserID != nil && *p.BeneficiaryUserID == staffID &&
			p.Status == domain.PaymentCompleted &&
			p.Purpose == domain.PurposeStaffSeat &&
			p.CheckoutSessionID != nil && *p.CheckoutSessionID == event.SessionID &&
			p.Description == "Staff seat for jane@acme.com"
	}), mock.AnythingOfType("time.Time")).Return(true, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_SeatBeneficiaryResolvedByEmail() {
	ctx := context.Background()
	payload := []byte(`{}`)
	payerID := uuid.NewString()
	staff := &domain.User{UserID: uuid.NewString(), Email: "jane@acme.com"}
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_seat_456",
		AmountTotal: decimal.NewFromInt(35),
		Currency:    "EUR",
		Metadata: map[string]string{
			domain.MetaKeyPurpose:          string(domain.PurposeStaffSeat),
			domain.MetaKeyPayerUserID:      payerID,
			domain.MetaKeyBeneficiaryEmail: "Jane@Acme.com",
		},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "jane@acme.com").Return(staff, nil).Once()
	suite.mockUserRepo.On("SetUserActive", ctx, staff.UserID, true, payerID).Return(nil).Once()
	suite.mockPaymentRepo.On("MarkCompletedBySession", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_PackageGrantsEntitlement() {
	ctx := context.Background()
	payload := []byte(`{}`)
	payerID := uuid.NewString()
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_pkg_123",
		AmountTotal: decimal.NewFromInt(200),
		Currency:    "EUR",
		Metadata: map[string]string{
			domain.MetaKeyPurpose:     string(domain.PurposePackage),
			domain.MetaKeyPayerUserID: payerID,
			domain.MetaKeyPackage:     string(domain.PackagePremium),
		},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()
	suite.mockUserRepo.On("SetPaidPackage", ctx, payerID, domain.PackagePremium, payerID).Return(nil).Once()
	suite.mockPaymentRepo.On("MarkCompletedBySession", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.PayerUserID == payerID &&
			p.BeneficiaryUserID != nil && *p.BeneficiaryUserID == payerID &&
			p.Purpose == domain.PurposePackage &&
			p.Description == "PREMIUM course package"
	}), mock.AnythingOfType("time.Time")).Return(true, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_DuplicateDeliveryIsNoOp() {
	ctx := context.Background()
	payload := []byte(`{}`)
	payerID := uuid.NewString()
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_pkg_123",
		AmountTotal: decimal.NewFromInt(120),
		Currency:    "EUR",
		Metadata: map[string]string{
			domain.MetaKeyPurpose:     string(domain.PurposePackage),
			domain.MetaKeyPayerUserID: payerID,
			domain.MetaKeyPackage:     string(domain.PackageBasic),
		},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()
	// The grant runs again on redelivery; it is idempotent by construction.
	suite.mockUserRepo.On("SetPaidPackage", ctx, payerID, domain.PackageBasic, payerID).Return(nil).Once()
	suite.mockPaymentRepo.On("MarkCompletedBySession", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_InvalidSignature() {
	ctx := context.Background()
	payload := []byte(`{}`)
	sigErr := apperrors.NewBadRequestError("webhook signature verification failed")

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "bad-sig").Return(nil, sigErr).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "bad-sig")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "MarkCompletedBySession",
		mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_IgnoredEventType() {
	ctx := context.Background()
	payload := []byte(`{"type":"invoice.paid"}`)

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(nil, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "MarkCompletedBySession",
		mock.Anything, mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetUserActive",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_GrantFailureSurfaces() {
	ctx := context.Background()
	payload := []byte(`{}`)
	payerID := uuid.NewString()
	staffID := uuid.NewString()
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_seat_789",
		AmountTotal: decimal.NewFromInt(35),
		Currency:    "EUR",
		Metadata: map[string]string{
			domain.MetaKeyPurpose:           string(domain.PurposeStaffSeat),
			domain.MetaKeyPayerUserID:       payerID,
			domain.MetaKeyBeneficiaryUserID: staffID,
		},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()
	suite.mockUserRepo.On("SetUserActive", ctx, staffID, true, payerID).Return(assert.AnError).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().Error(err)
	// The payment row must stay PENDING so the provider retries the delivery.
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "MarkCompletedBySession",
		mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_UnknownPurposeSkipped() {
	ctx := context.Background()
	payload := []byte(`{}`)
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_misc_123",
		AmountTotal: decimal.NewFromInt(10),
		Currency:    "EUR",
		Metadata:    map[string]string{domain.MetaKeyPayerUserID: uuid.NewString()},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "MarkCompletedBySession",
		mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestProcessWebhook_MissingPayerSkipped() {
	ctx := context.Background()
	payload := []byte(`{}`)
	event := &domain.CheckoutCompletedEvent{
		SessionID:   "cs_pkg_999",
		AmountTotal: decimal.NewFromInt(120),
		Currency:    "EUR",
		Metadata: map[string]string{
			domain.MetaKeyPurpose: string(domain.PurposePackage),
			domain.MetaKeyPackage: string(domain.PackageBasic),
		},
	}

	suite.mockGateway.On("ParseCheckoutCompleted", payload, "sig").Return(event, nil).Once()

	err := suite.service.ProcessWebhook(ctx, payload, "sig")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SetPaidPackage",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Suite ---
func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
