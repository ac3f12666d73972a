package services_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"chemstore/internal/models"
	"chemstore/internal/notify"
	"chemstore/internal/repositories"
	"chemstore/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testAuthConfig = services.AuthConfig{
	AccessSecret:  "test_access_secret",
	RefreshSecret: "test_refresh_secret",
	AccessExpiry:  time.Hour,
	RefreshExpiry: 24 * time.Hour,
	OTPTTL:        10 * time.Minute,
}

var codePattern = regexp.MustCompile(`>(\d{4})</h1>`)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockMailer), testAuthConfig)

	in := services.RegisterInput{
		Name:        "Test User",
		Email:       "test@example.com",
		Institution: "IISc",
		PhoneNo:     "9000000000",
		Password:    "password123",
	}

	// Test successful registration
	mockRepo.On("GetByEmailOrPhone", ctx, in.Email, in.PhoneNo).Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, in.Password, user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)))
	mockRepo.AssertExpectations(t)

	// Test email or phone already registered
	mockRepo.On("GetByEmailOrPhone", ctx, in.Email, in.PhoneNo).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.Equal(t, services.KindConflict, services.KindOf(err))
	mockRepo.AssertExpectations(t)

	// Test validation
	_, err = authService.Register(ctx, services.RegisterInput{Email: "not-an-email", Password: "123"})
	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, services.KindInvalidInput, se.Kind)
	assert.ElementsMatch(t, []string{"name", "institution", "phoneno", "email", "password"}, se.Fields)
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := services.NewAuthService(mockRepo, mockMailer, testAuthConfig)

	user := &models.User{
		ID:       uuid.New().String(),
		Name:     "Test User",
		Email:    "test@example.com",
		PhoneNo:  "9000000000",
		Role:     models.RoleAdmin,
		Password: hashed(t, "password123"),
	}

	mockRepo.On("GetByEmailOrPhone", ctx, "", user.PhoneNo).Return(user, nil).Once()
	mockRepo.On("Update", ctx, user).Return(nil)
	mockMailer.On("Send", ctx, mock.AnythingOfType("notify.Message")).Return(nil).Once()

	err := authService.Login(ctx, services.LoginInput{PhoneNo: user.PhoneNo, Password: "password123"})
	require.NoError(t, err)
	require.NotNil(t, user.OTP)
	require.NotNil(t, user.LastLogin)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *user.OTPExpiry, time.Minute)

	msg := mockMailer.Calls[0].Arguments.Get(1).(notify.Message)
	assert.Equal(t, []string{user.Email}, msg.To)
	m := codePattern.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2)
	code := m[1]

	// Test wrong code
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)
	_, err = authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: wrongCode(code)})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	// Test successful verification
	tokens, err := authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: code})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Nil(t, user.OTP)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, tokens.RefreshToken, *user.RefreshToken)

	claims, err := authService.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())

	// The code is single use.
	_, err = authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: code})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	// Refresh tokens are not access tokens.
	_, err = authService.ValidateAccessToken(tokens.RefreshToken)
	assert.Error(t, err)
	mockMailer.AssertExpectations(t)
}

func wrongCode(code string) string {
	if code == "1000" {
		return "1001"
	}
	return "1000"
}

func TestAuthService_Login_Errors(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := services.NewAuthService(mockRepo, mockMailer, testAuthConfig)

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    "test@example.com",
		Password: hashed(t, "password123"),
	}

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmailOrPhone", ctx, user.Email, "").Return(user, nil).Once()
	err := authService.Login(ctx, services.LoginInput{Email: user.Email, Password: "wrongpassword"})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	// Test user not found
	mockRepo.On("GetByEmailOrPhone", ctx, "nobody@example.com", "").Return(nil, notFoundErr("user")).Once()
	err = authService.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, services.KindNotFound, services.KindOf(err))

	// Test neither identifier
	err = authService.Login(ctx, services.LoginInput{Password: "password123"})
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))

	// Test mail failure is a hard error
	mockRepo.On("GetByEmailOrPhone", ctx, user.Email, "").Return(user, nil).Once()
	mockRepo.On("Update", ctx, user).Return(nil).Once()
	mockMailer.On("Send", ctx, mock.Anything).Return(fmt.Errorf("smtp down")).Once()
	err = authService.Login(ctx, services.LoginInput{Email: user.Email, Password: "password123"})
	assert.Equal(t, services.KindInternal, services.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Verify_ExpiredCode(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockMailer), testAuthConfig)

	otp := hashed(t, "1234")
	expired := time.Now().Add(-time.Minute)
	user := &models.User{ID: uuid.New().String(), Email: "test@example.com", OTP: &otp, OTPExpiry: &expired}
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()

	_, err := authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: "1234"})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
	assert.Contains(t, err.Error(), "expired")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Verify_TooManyAttempts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockMailer), testAuthConfig)

	otp := hashed(t, "1234")
	expiry := time.Now().Add(time.Minute)
	user := &models.User{ID: uuid.New().String(), Email: "test@example.com", OTP: &otp, OTPExpiry: &expiry}
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil)
	mockRepo.On("Update", ctx, user).Return(nil)

	for i := 1; i < 5; i++ {
		_, err := authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: "0000"})
		assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
		assert.Contains(t, err.Error(), "Invalid verification code")
		assert.Equal(t, i, user.OTPAttempts)
	}

	_, err := authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: "0000"})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
	assert.Contains(t, err.Error(), "Too many failed attempts")
	assert.Nil(t, user.OTP)
	assert.Zero(t, user.OTPAttempts)

	// The right code no longer works once revoked.
	_, err = authService.Verify(ctx, services.VerifyInput{Email: user.Email, OTP: "1234"})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
	assert.Contains(t, err.Error(), "No verification code requested")
	mockRepo.AssertNumberOfCalls(t, "Update", 5)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockMailer), testAuthConfig)

	user := &models.User{ID: uuid.New().String(), Email: "test@example.com", Role: models.RoleUser}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		UserID:         user.ID,
		Role:           user.Role,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	refresh, err := token.SignedString([]byte(testAuthConfig.RefreshSecret))
	require.NoError(t, err)
	user.RefreshToken = &refresh

	mockRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	mockRepo.On("Update", ctx, user).Return(nil)

	tokens, err := authService.Refresh(ctx, refresh)
	require.NoError(t, err)
	claims, err := authService.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// Test token signed with the wrong secret
	forged, err := token.SignedString([]byte("wrong"))
	require.NoError(t, err)
	_, err = authService.Refresh(ctx, forged)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	require.NoError(t, authService.Logout(ctx, user.ID))
	assert.Nil(t, user.RefreshToken)

	// Test revoked token
	_, err = authService.Refresh(ctx, refresh)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), new(MockMailer), testAuthConfig)

	// Test invalid token
	_, err := authService.ValidateAccessToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		UserID:         "user-123",
		StandardClaims: jwt.StandardClaims{ExpiresAt: jwt.TimeFunc().Add(-time.Hour).Unix()},
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testAuthConfig.AccessSecret))
	_, err = authService.ValidateAccessToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockMailer), testAuthConfig)

	user := &models.User{ID: uuid.New().String(), Password: hashed(t, "password123")}
	mockRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	mockRepo.On("Update", ctx, user).Return(nil).Once()

	err := authService.ChangePassword(ctx, user.ID, services.ChangePasswordInput{OldPassword: "nope", NewPassword: "newpassword"})
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	require.NoError(t, authService.ChangePassword(ctx, user.ID, services.ChangePasswordInput{OldPassword: "password123", NewPassword: "newpassword"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("newpassword")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockMailer := new(MockMailer)
	authService := services.NewAuthService(mockRepo, mockMailer, testAuthConfig)

	user := &models.User{ID: uuid.New().String(), Name: "Test", Email: "test@example.com", Password: hashed(t, "password123")}
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	mockRepo.On("Update", ctx, user).Return(nil).Once()
	mockMailer.On("Send", ctx, mock.Anything).Return(nil).Once()

	require.NoError(t, authService.ForgotPassword(ctx, services.ForgotPasswordInput{Email: user.Email}))

	msg := mockMailer.sent()[0]
	m := regexp.MustCompile(`>([A-Za-z0-9_-]{12})</h3>`).FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(m[1])))

	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, notFoundErr("user")).Once()
	err := authService.ForgotPassword(ctx, services.ForgotPasswordInput{Email: "nobody@example.com"})
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestAuthService_SetRole(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockMailer), testAuthConfig)

	user := &models.User{ID: uuid.New().String(), Email: "test@example.com", Role: models.RoleUser}
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	mockRepo.On("Update", ctx, user).Return(nil).Once()

	updated, err := authService.SetRole(ctx, user.Email, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	_, err = authService.SetRole(ctx, user.Email, "root")
	assert.Equal(t, services.KindInvalidInput, services.KindOf(err))
	mockRepo.AssertExpectations(t)
}
