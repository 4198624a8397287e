package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/core/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BusinessServiceTestSuite struct {
	suite.Suite
	mockBusinessRepo *MockBusinessRepository
	mockUserRepo     *MockUserRepository
	mockMailer       *MockMailer
	service          portssvc.BusinessSvcFacade
}

func (suite *BusinessServiceTestSuite) SetupTest() {
	suite.mockBusinessRepo = new(MockBusinessRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockMailer = new(MockMailer)
	suite.service = services.NewBusinessService(suite.mockBusinessRepo, suite.mockUserRepo, suite.mockMailer)
}

func adminCaller() domain.Caller {
	return domain.Caller{UserID: uuid.NewString(), Role: domain.RoleAdmin}
}

// --- CreateBusiness Tests ---

func (suite *BusinessServiceTestSuite) TestCreateBusiness_Success() {
	ctx := context.Background()
	caller := adminCaller()
	req := dto.CreateBusinessRequest{
		Name:               "Acme GmbH",
		AllowedEmailDomain: "Acme.COM",
		OwnerName:          "Owner",
		OwnerEmail:         "Owner@Acme.com",
	}

	suite.mockBusinessRepo.On("CreateBusinessWithOwner", ctx,
		mock.MatchedBy(func(b domain.Business) bool {
			return b.Name == "Acme GmbH" &&
				b.AllowedEmailDomain == "acme.com" &&
				b.IsActive &&
				b.CreatedBy == caller.UserID
		}),
		mock.MatchedBy(func(u domain.User) bool {
			return u.Email == "owner@acme.com" &&
				u.Role == domain.RoleBusiness &&
				u.IsActive &&
				u.MustChangePassword &&
				u.PasswordHash != "" &&
				u.AuthProvider == domain.ProviderLocal
		}),
	).Return(nil).Once()
	suite.mockMailer.On("SendStaffWelcomeEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Maybe()

	business, owner, err := suite.service.CreateBusiness(ctx, caller, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(business)
	suite.Require().NotNil(owner)
	suite.Equal(business.OwnerUserID, owner.UserID)
	suite.Require().NotNil(owner.BusinessID)
	suite.Equal(business.BusinessID, *owner.BusinessID)
	suite.mockBusinessRepo.AssertExpectations(suite.T())
}

func (suite *BusinessServiceTestSuite) TestCreateBusiness_MailsProvisionalPassword() {
	ctx := context.Background()
	caller := adminCaller()
	req := dto.CreateBusinessRequest{
		Name:               "Acme GmbH",
		AllowedEmailDomain: "acme.com",
		OwnerName:          "Owner",
		OwnerEmail:         "owner@acme.com",
	}

	var capturedHash string
	suite.mockBusinessRepo.On("CreateBusinessWithOwner", ctx, mock.AnythingOfType("domain.Business"), mock.AnythingOfType("domain.User")).
		Return(nil).Once().Run(func(args mock.Arguments) {
		capturedHash = args.Get(2).(domain.User).PasswordHash
	})

	mailed := make(chan string, 1)
	suite.mockMailer.On("SendStaffWelcomeEmail", mock.Anything, "owner@acme.com", "Owner", mock.AnythingOfType("string")).
		Return(nil).Once().Run(func(args mock.Arguments) {
		mailed <- args.Get(3).(string)
	})

	_, _, err := suite.service.CreateBusiness(ctx, caller, req)
	suite.Require().NoError(err)

	select {
	case tempPassword := <-mailed:
		// The mailed password must match the stored hash.
		suite.NotEmpty(tempPassword)
		suite.True(utils.CheckPasswordHash(tempPassword, capturedHash))
	case <-time.After(2 * time.Second):
		suite.FailNow("welcome email was not sent")
	}
	suite.mockMailer.AssertExpectations(suite.T())
}

func (suite *BusinessServiceTestSuite) TestCreateBusiness_NonAdminForbidden() {
	ctx := context.Background()
	businessID := uuid.NewString()
	caller := domain.Caller{UserID: uuid.NewString(), Role: domain.RoleBusiness, BusinessID: &businessID}
	req := dto.CreateBusinessRequest{Name: "Acme GmbH", AllowedEmailDomain: "acme.com", OwnerName: "O", OwnerEmail: "o@acme.com"}

	business, owner, err := suite.service.CreateBusiness(ctx, caller, req)

	suite.Require().Error(err)
	suite.Nil(business)
	suite.Nil(owner)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockBusinessRepo.AssertNotCalled(suite.T(), "CreateBusinessWithOwner",
		mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BusinessServiceTestSuite) TestCreateBusiness_PublicMailboxDomainRejected() {
	ctx := context.Background()
	req := dto.CreateBusinessRequest{Name: "Acme GmbH", AllowedEmailDomain: "gmail.com", OwnerName: "O", OwnerEmail: "o@gmail.com"}

	business, owner, err := suite.service.CreateBusiness(ctx, adminCaller(), req)

	suite.Require().Error(err)
	suite.Nil(business)
	suite.Nil(owner)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BusinessServiceTestSuite) TestCreateBusiness_DuplicateOwnerEmail() {
	ctx := context.Background()
	req := dto.CreateBusinessRequest{Name: "Acme GmbH", AllowedEmailDomain: "acme.com", OwnerName: "O", OwnerEmail: "o@acme.com"}

	suite.mockBusinessRepo.On("CreateBusinessWithOwner", ctx, mock.AnythingOfType("domain.Business"), mock.AnythingOfType("domain.User")).
		Return(apperrors.NewConflictError("email address already registered")).Once()

	business, owner, err := suite.service.CreateBusiness(ctx, adminCaller(), req)

	suite.Require().Error(err)
	suite.Nil(business)
	suite.Nil(owner)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockMailer.AssertNotCalled(suite.T(), "SendStaffWelcomeEmail",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Read Tests ---

func (suite *BusinessServiceTestSuite) TestGetBusinessByID_Success() {
	ctx := context.Background()
	business := &domain.Business{BusinessID: uuid.NewString(), Name: "Acme GmbH"}

	suite.mockBusinessRepo.On("FindBusinessByID", ctx, business.BusinessID).Return(business, nil).Once()

	result, err := suite.service.GetBusinessByID(ctx, business.BusinessID)

	suite.Require().NoError(err)
	suite.Equal(business, result)
}

func (suite *BusinessServiceTestSuite) TestGetBusinessByID_NotFound() {
	ctx := context.Background()
	businessID := uuid.NewString()

	suite.mockBusinessRepo.On("FindBusinessByID", ctx, businessID).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.GetBusinessByID(ctx, businessID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *BusinessServiceTestSuite) TestListBusinesses_EmptyResultIsNotNil() {
	ctx := context.Background()

	suite.mockBusinessRepo.On("ListBusinesses", ctx).Return(nil, nil).Once()

	result, err := suite.service.ListBusinesses(ctx)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *BusinessServiceTestSuite) TestListBusinesses_RepoError() {
	ctx := context.Background()

	suite.mockBusinessRepo.On("ListBusinesses", ctx).Return(nil, assert.AnError).Once()

	result, err := suite.service.ListBusinesses(ctx)

	suite.Require().Error(err)
	suite.Nil(result)
}

// --- Run Suite ---
func TestBusinessService(t *testing.T) {
	suite.Run(t, new(BusinessServiceTestSuite))
}
