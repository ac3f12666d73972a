package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"chemstore/internal/models"
	"chemstore/internal/notify"
	"chemstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// maxOTPAttempts is how many wrong codes revoke the current one.
const maxOTPAttempts = 5

// AuthConfig holds token secrets and lifetimes.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	OTPTTL        time.Duration
}

// Claims is the payload of access and refresh tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.StandardClaims
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool { return c.Role == models.RoleAdmin }

// Tokens is a freshly issued session.
type Tokens struct {
	AccessToken   string       `json:"-"`
	RefreshToken  string       `json:"-"`
	AccessExpiry  time.Time    `json:"-"`
	RefreshExpiry time.Time    `json:"-"`
	User          *models.User `json:"user"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo repositories.UserRepository
	mailer   notify.Mailer
	cfg      AuthConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mailer notify.Mailer, cfg AuthConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Institution string `json:"institution" validate:"required"`
	PhoneNo     string `json:"phoneno" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
}

// LoginInput identifies the user by email or phone number.
type LoginInput struct {
	Email    string `json:"email" validate:"required_without=PhoneNo"`
	PhoneNo  string `json:"phoneno" validate:"required_without=Email"`
	Password string `json:"password" validate:"required"`
}

// VerifyInput completes a login with the emailed code.
type VerifyInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

// ChangePasswordInput replaces the caller's password.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPasswordInput requests a temporary password.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Register creates a user with the default role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmailOrPhone(ctx, in.Email, in.PhoneNo); err == nil {
		return nil, conflict("User with this email or phone number already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internal(err, "Could not register user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal(err, "Could not register user")
	}
	user := &models.User{
		Name:        in.Name,
		Email:       in.Email,
		Institution: in.Institution,
		PhoneNo:     in.PhoneNo,
		Password:    string(hashedPassword),
		Role:        models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, internal(err, "Could not register user")
	}
	return user, nil
}

// Login checks the password and emails a one-time code. The session is only
// issued by Verify.
func (s *AuthService) Login(ctx context.Context, in LoginInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmailOrPhone(ctx, in.Email, in.PhoneNo)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("User not found")
		}
		return internal(err, "Login failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return unauthorized("Invalid credentials")
	}

	code, err := loginCode()
	if err != nil {
		return internal(err, "Login failed")
	}
	hashedCode, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return internal(err, "Login failed")
	}
	now := time.Now()
	expiry := now.Add(s.cfg.OTPTTL)
	otp := string(hashedCode)
	user.OTP = &otp
	user.OTPExpiry = &expiry
	user.OTPAttempts = 0
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internal(err, "Login failed")
	}

	msg, err := notify.LoginCodeEmail(user.Email, user.Name, code, int(s.cfg.OTPTTL/time.Minute))
	if err != nil {
		return internal(err, "Failed to send verification code")
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return internal(err, "Failed to send verification code")
	}
	return nil
}

// Verify exchanges a valid one-time code for access and refresh tokens. The
// code is consumed and the refresh token is stored on the user.
func (s *AuthService) Verify(ctx context.Context, in VerifyInput) (*Tokens, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal(err, "Verification failed")
	}
	if user.OTP == nil || user.OTPExpiry == nil {
		return nil, unauthorized("No verification code requested")
	}
	if time.Now().After(*user.OTPExpiry) {
		return nil, unauthorized("Verification code expired")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.OTP), []byte(in.OTP)); err != nil {
		return nil, s.failedAttempt(ctx, user)
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, internal(err, "Verification failed")
	}
	user.OTP = nil
	user.OTPExpiry = nil
	user.OTPAttempts = 0
	user.RefreshToken = &tokens.RefreshToken
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, internal(err, "Verification failed")
	}
	return tokens, nil
}

// failedAttempt counts a wrong code. The code is revoked once maxOTPAttempts
// is reached and the user has to log in again for a new one.
func (s *AuthService) failedAttempt(ctx context.Context, user *models.User) error {
	user.OTPAttempts++
	revoked := user.OTPAttempts >= maxOTPAttempts
	if revoked {
		user.OTP = nil
		user.OTPExpiry = nil
		user.OTPAttempts = 0
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internal(err, "Verification failed")
	}
	if revoked {
		log.Printf("Verification code for %s revoked after %d failed attempts", user.Email, maxOTPAttempts)
		return unauthorized("Too many failed attempts, request a new verification code")
	}
	return unauthorized("Invalid verification code")
}

// Refresh issues a new access token for a refresh token that is still the one
// stored on its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, unauthorized("Refresh token is required")
	}
	claims, err := parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, unauthorized("Invalid or expired refresh token")
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, unauthorized("Invalid or expired refresh token")
		}
		return nil, internal(err, "Could not refresh session")
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, unauthorized("Refresh token has been revoked")
	}

	expiry := time.Now().Add(s.cfg.AccessExpiry)
	access, err := s.sign(user, s.cfg.AccessSecret, expiry)
	if err != nil {
		return nil, internal(err, "Could not refresh session")
	}
	return &Tokens{
		AccessToken:  access,
		AccessExpiry: expiry,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Logout revokes the user's stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	user.RefreshToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internal(err, "Logout failed")
	}
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		return unauthorized("Old password is incorrect")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internal(err, "Could not change password")
	}
	user.Password = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internal(err, "Could not change password")
	}
	return nil
}

// ForgotPassword replaces the password with a random temporary one and emails
// it to the user.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("User not found")
		}
		return internal(err, "Could not reset password")
	}

	temp, err := temporaryPassword()
	if err != nil {
		return internal(err, "Could not reset password")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return internal(err, "Could not reset password")
	}
	msg, err := notify.PasswordResetEmail(user.Email, user.Name, temp)
	if err != nil {
		return internal(err, "Could not reset password")
	}

	user.Password = string(hashedPassword)
	user.RefreshToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return internal(err, "Could not reset password")
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return internal(err, "Failed to send password reset email")
	}
	return nil
}

// Profile returns the user record of userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.userByID(ctx, userID)
}

// SetRole changes the role of the user registered with email. It is only
// reachable from the operator CLI.
func (s *AuthService) SetRole(ctx context.Context, email, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, invalidInput("Unknown role %q", role)
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal(err, "Could not change role")
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, internal(err, "Could not change role")
	}
	log.Printf("Role of %s set to %s", email, role)
	return user, nil
}

// ValidateAccessToken parses and validates an access token, returning its
// claims if valid.
func (s *AuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := parseToken(tokenString, s.cfg.AccessSecret)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func (s *AuthService) userByID(ctx context.Context, userID string) (*models.User, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, unauthorized("Unauthorized")
		}
		return nil, internal(err, "Failed to load user")
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*Tokens, error) {
	now := time.Now()
	t := &Tokens{
		AccessExpiry:  now.Add(s.cfg.AccessExpiry),
		RefreshExpiry: now.Add(s.cfg.RefreshExpiry),
		User:          user,
	}
	var err error
	if t.AccessToken, err = s.sign(user, s.cfg.AccessSecret, t.AccessExpiry); err != nil {
		return nil, err
	}
	if t.RefreshToken, err = s.sign(user, s.cfg.RefreshSecret, t.RefreshExpiry); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *AuthService) sign(user *models.User, secret string, expiry time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiry.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// loginCode returns a random four digit code.
func loginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

func temporaryPassword() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
