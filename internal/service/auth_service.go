package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/mail"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the tunables of an AuthService
type AuthConfig struct {
	AppBaseURL string
	BcryptCost int
	Clock      func() time.Time
}

// AuthService handles registration, verification, login and password management
type AuthService struct {
	userRepo  domain.UserRepository
	tokenRepo domain.VerificationTokenRepository
	mailer    mail.Sender
	issuer    *TokenIssuer
	activity  *ActivityService
	baseURL   string
	cost      int
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo domain.UserRepository,
	tokenRepo domain.VerificationTokenRepository,
	mailer mail.Sender,
	issuer *TokenIssuer,
	activity *ActivityService,
	config AuthConfig,
) *AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		issuer:    issuer,
		activity:  activity,
		baseURL:   config.AppBaseURL,
		cost:      config.BcryptCost,
		now:       config.Clock,
	}
}

// RegisterInput contains the input for registering a user
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// Register creates an unverified user and mails a verification link
func (s *AuthService) Register(ctx context.Context, input RegisterInput, ipAddress string) (*domain.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userRepo.Create(&domain.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hash),
		Verified:     false,
		Enabled:      true,
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(user.ID, domain.ActivityUserRegistered, "Account registered", ipAddress)
	s.sendToken(ctx, user, domain.TokenTypeEmailVerification)

	log.Info().Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// VerifyEmail consumes an email verification token and marks its user verified
func (s *AuthService) VerifyEmail(token string) (*domain.User, error) {
	vt, err := s.consumeToken(token, domain.TokenTypeEmailVerification)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.MarkVerified(vt.UserID); err != nil {
		return nil, err
	}

	s.activity.Record(vt.UserID, domain.ActivityEmailVerified, "Email address verified", "")
	return s.userRepo.GetByID(vt.UserID)
}

// ResendVerification mails a fresh verification link. Unknown or verified
// addresses are ignored so the endpoint does not reveal which emails exist.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.Verified {
		return nil
	}
	s.sendToken(ctx, user, domain.TokenTypeEmailVerification)
	return nil
}

// Login checks credentials and issues an access token
func (s *AuthService) Login(email, password, ipAddress string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.activity.Record(user.ID, domain.ActivityLoginFailure, "Invalid password", ipAddress)
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Enabled {
		s.activity.Record(user.ID, domain.ActivityLoginFailure, "Account disabled", ipAddress)
		return nil, domain.ErrAccountDisabled
	}
	if !user.Verified {
		s.activity.Record(user.ID, domain.ActivityLoginFailure, "Email not verified", ipAddress)
		return nil, domain.ErrEmailNotVerified
	}

	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(user.ID, domain.ActivityLoginSuccess, "Logged in", ipAddress)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RequestPasswordReset mails a reset link to a known address. Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, ipAddress string) error {
	user, err := s.userRepo.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	s.sendToken(ctx, user, domain.TokenTypePasswordReset)
	s.activity.Record(user.ID, domain.ActivityPasswordResetRequest, "Password reset requested", ipAddress)
	return nil
}

// ResetPassword consumes a reset token and replaces the password
func (s *AuthService) ResetPassword(token, newPassword, ipAddress string) error {
	if len(newPassword) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	vt, err := s.consumeToken(token, domain.TokenTypePasswordReset)
	if err != nil {
		return err
	}
	if err := s.setPassword(vt.UserID, newPassword); err != nil {
		return err
	}

	s.activity.Record(vt.UserID, domain.ActivityPasswordResetSuccess, "Password reset", ipAddress)
	return nil
}

// ChangePassword replaces the password of a signed-in user after checking the current one
func (s *AuthService) ChangePassword(userID int64, currentPassword, newPassword, ipAddress string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if len(newPassword) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if err := s.setPassword(userID, newPassword); err != nil {
		return err
	}

	s.activity.Record(userID, domain.ActivityPasswordChange, "Password changed", ipAddress)
	return nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(userID)
}

// PurgeTokens deletes used and expired verification tokens
func (s *AuthService) PurgeTokens() (int64, error) {
	return s.tokenRepo.PurgeExpiredAndUsed(s.now())
}

func (s *AuthService) setPassword(userID int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(userID, string(hash))
}

// consumeToken validates a token of tokenType and marks it used
func (s *AuthService) consumeToken(token string, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrTokenInvalid
	}
	vt, err := s.tokenRepo.GetByToken(token, tokenType)
	if err != nil {
		return nil, err
	}
	if vt.Used {
		return nil, domain.ErrTokenInvalid
	}
	if vt.IsExpired(s.now()) {
		return nil, domain.ErrTokenExpired
	}
	if err := s.tokenRepo.MarkUsed(vt.ID); err != nil {
		return nil, err
	}
	return vt, nil
}

// sendToken replaces the user's outstanding tokens of tokenType with a new one and mails it.
// Failures are logged; the calling operation has already succeeded.
func (s *AuthService) sendToken(ctx context.Context, user *domain.User, tokenType domain.TokenType) {
	logger := log.With().Int64("user_id", user.ID).Str("token_type", string(tokenType)).Logger()

	if err := s.tokenRepo.InvalidateForUser(user.ID, tokenType); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate previous tokens")
	}

	vt, err := s.tokenRepo.Create(&domain.VerificationToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		Type:      tokenType,
		ExpiresAt: s.now().Add(domain.VerificationTokenTTL),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create token")
		return
	}

	validity := "24 hours"
	var msg mail.Message
	if tokenType == domain.TokenTypePasswordReset {
		msg, err = mail.PasswordResetMessage(s.baseURL, user.Email, vt.Token, validity)
	} else {
		msg, err = mail.VerificationMessage(s.baseURL, user.Email, vt.Token, validity)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to render mail")
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("Failed to send mail")
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}
