package service

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/mailer"
	"github.com/growlify/growlify-api/internal/security"
)

// ForgotPasswordMessage is returned by every forgot-password request so the
// response never reveals whether an email is registered
const ForgotPasswordMessage = "Se o e-mail estiver cadastrado, você receberá um link para redefinir sua senha."

// SessionIssuer signs session tokens
type SessionIssuer interface {
	Issue(userID uuid.UUID, email, name string) (string, time.Time, error)
}

// AttemptLimiter throttles repeated attempts per key
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AuthService handles registration, login and password recovery
type AuthService struct {
	userRepo       domain.UserRepository
	resetTokenRepo domain.ResetTokenRepository
	sessions       SessionIssuer
	mailer         mailer.Mailer
	limiter        AttemptLimiter
	appURL         string
	now            func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo domain.UserRepository,
	resetTokenRepo domain.ResetTokenRepository,
	sessions SessionIssuer,
	mail mailer.Mailer,
	limiter AttemptLimiter,
	appURL string,
) *AuthService {
	if mail == nil {
		mail = mailer.NoOpMailer{}
	}
	return &AuthService{
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		sessions:       sessions,
		mailer:         mail,
		limiter:        limiter,
		appURL:         strings.TrimRight(appURL, "/"),
		now:            time.Now,
	}
}

// RegisterInput holds the input for creating an account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a signed-in user with its session token
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewFieldError("email", "Informe um email válido.")
	}
	return email, nil
}

// Register creates the user with its default categories and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) < domain.MinUserNameLength {
		return nil, domain.NewFieldError("name", "Informe seu nome.")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(input.Password) < domain.MinPasswordLength {
		return nil, domain.NewFieldError("password", "A senha deve ter no mínimo 6 caracteres.")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:                 uuid.New(),
		Name:               name,
		Email:              email,
		PasswordHash:       hash,
		SubscriptionStatus: domain.SubscriptionInactive,
	}
	user, err = s.userRepo.CreateWithCategories(ctx, user, domain.DefaultCategories(user.ID))
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID.String()).Msg("Registered new user")

	return s.signIn(user)
}

// Login verifies credentials and signs the user in
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrBadCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrBadCredentials
	}
	return s.signIn(user)
}

func (s *AuthService) signIn(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ForgotPassword emails a reset link when the address is registered. It
// never fails: invalid input, throttling, unknown users and delivery errors
// all end silently.
func (s *AuthService) ForgotPassword(ctx context.Context, clientIP, email string) {
	email, err := normalizeEmail(email)
	if err != nil {
		return
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, clientIP+"|"+email)
		if err != nil {
			log.Warn().Err(err).Msg("Forgot password limiter unavailable")
		} else if !allowed {
			log.Info().Str("client_ip", clientIP).Msg("Forgot password throttled")
			return
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Error().Err(err).Msg("Failed to look up user for password reset")
		}
		return
	}

	token, hash, err := security.NewResetToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate reset token")
		return
	}
	record := &domain.ResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(domain.ResetTokenTTL),
	}
	if err := s.resetTokenRepo.Create(ctx, record); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to store reset token")
		return
	}

	msg := mailer.ResetPasswordEmail{
		To:        user.Email,
		Name:      user.Name,
		ResetLink: s.appURL + "/reset-password?token=" + url.QueryEscape(token),
	}
	if err := s.mailer.SendResetPassword(ctx, msg); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to send reset password email")
	}
}

// ResetPassword redeems a reset token and sets the new password
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if len(token) < 10 {
		return domain.NewFieldError("token", "Token inválido.")
	}
	if utf8.RuneCountInString(password) < domain.MinResetPasswordLength {
		return domain.NewFieldError("password", "A senha deve ter no mínimo 8 caracteres.")
	}

	record, err := s.resetTokenRepo.GetByHash(ctx, security.HashResetToken(token))
	if err != nil {
		return err
	}
	now := s.now()
	if !record.Usable(now) {
		return domain.ErrResetTokenInvalid
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.resetTokenRepo.Redeem(ctx, record, hash, now); err != nil {
		return err
	}
	log.Info().Str("user_id", record.UserID.String()).Msg("Password reset")
	return nil
}
