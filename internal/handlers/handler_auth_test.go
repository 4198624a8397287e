package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/dto"
	"github.com/skillgrove/skillgrove_app/internal/handlers"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
	"github.com/skillgrove/skillgrove_app/internal/utils"
)

// MockUserService is a mock implementation of the UserSvcFacade interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) FindOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// MockTokenService is a mock implementation of the TokenSvcFacade interface
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	args := m.Called(ctx, userID, refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

// MockPasswordResetService is a mock implementation of the PasswordResetSvcFacade interface
type MockPasswordResetService struct {
	mock.Mock
}

func (m *MockPasswordResetService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPasswordResetService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.PasswordResetSvcFacade = (*MockPasswordResetService)(nil)

// AuthHandlerTestSuite defines the suite for auth handler tests
type AuthHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockUserService   *MockUserService
	mockTokenService  *MockTokenService
	mockPasswordReset *MockPasswordResetService
	jwtSecret         string
	cookieName        string
}

// signAccessToken signs an access token for the given subject with the
// configured test secret. A negative ttl produces an already expired token.
func (suite *AuthHandlerTestSuite) signAccessToken(userID string, ttl time.Duration) string {
	claims := utils.AccessClaims{
		Role: domain.RoleIndividual,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "skillgrove-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err, "Failed to sign test token")
	return signed
}

// refreshCookie digs the refresh token cookie out of the response.
func (suite *AuthHandlerTestSuite) refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == suite.cookieName {
			return c
		}
	}
	return nil
}

// SetupTest runs before each test in the suite
func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-for-handlers"
	suite.cookieName = "rtid"
	suite.mockUserService = new(MockUserService)
	suite.mockTokenService = new(MockTokenService)
	suite.mockPasswordReset = new(MockPasswordResetService)

	cfg := &config.Config{
		JWTSecret:              suite.jwtSecret,
		IsProduction:           true,
		RefreshTokenCookieName: suite.cookieName,
		RefreshTokenCookiePath: "/api/v1/auth",
	}

	router := gin.New()
	handlers.RegisterRoutes(router, cfg, &portssvc.ServiceContainer{
		User:          suite.mockUserService,
		TokenService:  suite.mockTokenService,
		PasswordReset: suite.mockPasswordReset,
	})
	suite.router = router
}

// --- Register Tests ---

func (suite *AuthHandlerTestSuite) TestRegister_Success() {
	expectedReq := dto.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "Passw0rd!"}
	suite.mockUserService.On("RegisterUser", mock.Anything, expectedReq).
		Return(&domain.User{
			UserID:       "user-1",
			Email:        "ada@example.com",
			Name:         "Ada",
			Role:         domain.RoleIndividual,
			IsActive:     true,
			AuthProvider: domain.ProviderLocal,
		}, nil).Once()

	body := bytes.NewBufferString(`{"name": "Ada", "email": "ada@example.com", "password": "Passw0rd!"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("user-1", resp.UserID)
	suite.Equal("ada@example.com", resp.Email)
	suite.Equal(domain.RoleIndividual, resp.Role)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateEmail() {
	suite.mockUserService.On("RegisterUser", mock.Anything, mock.AnythingOfType("dto.RegisterRequest")).
		Return(nil, apperrors.NewConflictError("An account with this email already exists")).Once()

	body := bytes.NewBufferString(`{"name": "Ada", "email": "ada@example.com", "password": "Passw0rd!"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("An account with this email already exists", resp.Error)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestRegister_WeakPasswordRejectedByBinding() {
	body := bytes.NewBufferString(`{"name": "Ada", "email": "ada@example.com", "password": "short1"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "RegisterUser", mock.Anything, mock.Anything)
}

// --- Login Tests ---

func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	user := &domain.User{UserID: "user-1", Email: "ada@example.com", Name: "Ada", Role: domain.RoleIndividual, IsActive: true}
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "ada@example.com", "Passw0rd!").Return(user, nil).Once()
	suite.mockTokenService.On("GenerateAccessToken", mock.Anything, user).
		Return("access-token-123", time.Now().Add(time.Hour), nil).Once()
	suite.mockTokenService.On("GenerateRefreshToken", mock.Anything, user).
		Return("raw-refresh-token", time.Now().Add(7*24*time.Hour), nil).Once()

	body := bytes.NewBufferString(`{"email": "ada@example.com", "password": "Passw0rd!"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("access-token-123", resp.Token)
	suite.Equal("ada@example.com", resp.User.Email)

	cookie := suite.refreshCookie(w)
	suite.Require().NotNil(cookie, "Login should set the refresh token cookie")
	suite.Equal("raw-refresh-token", cookie.Value)
	suite.True(cookie.HttpOnly)
	suite.Equal("/api/v1/auth", cookie.Path)
	suite.mockUserService.AssertExpectations(suite.T())
	suite.mockTokenService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "ada@example.com", "wrong").
		Return(nil, apperrors.NewUnauthorizedError("Invalid email or password")).Once()

	body := bytes.NewBufferString(`{"email": "ada@example.com", "password": "wrong"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Nil(suite.refreshCookie(w), "No cookie on failed login")
	suite.mockTokenService.AssertNotCalled(suite.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestLogin_DeactivatedAccount() {
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "gone@example.com", "Passw0rd!").
		Return(nil, apperrors.NewForbiddenError("Account is deactivated")).Once()

	body := bytes.NewBufferString(`{"email": "gone@example.com", "password": "Passw0rd!"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Account is deactivated", resp.Error)
	suite.mockUserService.AssertExpectations(suite.T())
}

// --- Refresh Tests ---

func (suite *AuthHandlerTestSuite) TestRefresh_Success() {
	user := &domain.User{UserID: "user-1", Email: "ada@example.com", Role: domain.RoleIndividual, IsActive: true}
	suite.mockTokenService.On("ValidateAndParseRefreshToken", mock.Anything, "user-1", "raw-refresh-token").
		Return(user, nil).Once()
	suite.mockTokenService.On("GenerateAccessToken", mock.Anything, user).
		Return("new-access-token", time.Now().Add(time.Hour), nil).Once()
	suite.mockTokenService.On("GenerateRefreshToken", mock.Anything, user).
		Return("rotated-refresh-token", time.Now().Add(7*24*time.Hour), nil).Once()

	// The access token is expired; refresh only needs its signature and subject.
	expired := suite.signAccessToken("user-1", -30*time.Minute)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	req.AddCookie(&http.Cookie{Name: suite.cookieName, Value: "raw-refresh-token"})
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RefreshTokenResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("new-access-token", resp.Token)

	cookie := suite.refreshCookie(w)
	suite.Require().NotNil(cookie, "Refresh should rotate the cookie")
	suite.Equal("rotated-refresh-token", cookie.Value)
	suite.mockTokenService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestRefresh_MissingCookie() {
	expired := suite.signAccessToken("user-1", -30*time.Minute)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Refresh token missing", resp.Error)
	suite.mockTokenService.AssertNotCalled(suite.T(), "ValidateAndParseRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRefresh_ForeignAccessToken() {
	forged := suite.signAccessToken("user-1", time.Hour) + "tampered"
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	req.AddCookie(&http.Cookie{Name: suite.cookieName, Value: "raw-refresh-token"})
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTokenService.AssertNotCalled(suite.T(), "ValidateAndParseRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRefresh_ExpiredRefreshToken() {
	suite.mockTokenService.On("ValidateAndParseRefreshToken", mock.Anything, "user-1", "stale-refresh-token").
		Return(nil, apperrors.ErrRefreshTokenExpired).Once()

	expired := suite.signAccessToken("user-1", -30*time.Minute)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	req.AddCookie(&http.Cookie{Name: suite.cookieName, Value: "stale-refresh-token"})
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Refresh token has expired, please log in again", resp.Error)

	cookie := suite.refreshCookie(w)
	suite.Require().NotNil(cookie, "Expired session should clear the cookie")
	suite.Empty(cookie.Value)
	suite.Negative(cookie.MaxAge)
	suite.mockTokenService.AssertExpectations(suite.T())
}

// --- Logout Tests ---

func (suite *AuthHandlerTestSuite) TestLogout_Success() {
	suite.mockUserService.On("ClearRefreshToken", mock.Anything, "user-1").Return(nil).Once()

	token := suite.signAccessToken("user-1", time.Hour)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNoContent, w.Code)
	cookie := suite.refreshCookie(w)
	suite.Require().NotNil(cookie, "Logout should expire the cookie")
	suite.Empty(cookie.Value)
	suite.Negative(cookie.MaxAge)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestLogout_MissingToken() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "ClearRefreshToken", mock.Anything, mock.Anything)
}

// --- Forgot Password Tests ---

func (suite *AuthHandlerTestSuite) TestForgotPassword_Success() {
	suite.mockPasswordReset.On("RequestPasswordReset", mock.Anything, "ada@example.com").Return(nil).Once()

	body := bytes.NewBufferString(`{"email": "ada@example.com"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok": true}`, w.Body.String())
	suite.mockPasswordReset.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestForgotPassword_UnknownEmailGetsSameResponse() {
	suite.mockPasswordReset.On("RequestPasswordReset", mock.Anything, "nobody@example.com").
		Return(apperrors.ErrNotFound).Once()

	body := bytes.NewBufferString(`{"email": "nobody@example.com"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok": true}`, w.Body.String())
	suite.mockPasswordReset.AssertExpectations(suite.T())
}

// --- Reset Password Tests ---

func (suite *AuthHandlerTestSuite) TestResetPassword_Success() {
	suite.mockPasswordReset.On("ResetPassword", mock.Anything, "raw-reset-token", "NewPassw0rd!").Return(nil).Once()

	body := bytes.NewBufferString(`{"token": "raw-reset-token", "password": "NewPassw0rd!"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/reset-password", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok": true}`, w.Body.String())
	suite.mockPasswordReset.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestResetPassword_InvalidToken() {
	suite.mockPasswordReset.On("ResetPassword", mock.Anything, "burned-token", "NewPassw0rd!").
		Return(apperrors.NewBadRequestError("The reset link is invalid or has expired")).Once()

	body := bytes.NewBufferString(`{"token": "burned-token", "password": "NewPassw0rd!"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/reset-password", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp handlers.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("The reset link is invalid or has expired", resp.Error)
	suite.mockPasswordReset.AssertExpectations(suite.T())
}

// TestAuthHandler runs the test suite
func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
