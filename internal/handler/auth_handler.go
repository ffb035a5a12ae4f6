package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/middleware"
	"github.com/growlify/growlify-api/internal/security"
	"github.com/growlify/growlify-api/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	cookieName   string
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the session
// cookie Secure and should be set in production.
func NewAuthHandler(authService *service.AuthService, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

// RegisterRequest represents the register request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the forgot-password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the reset-password request body
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SessionResponse is returned on register and login
type SessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// UserEnvelope wraps the current user
type UserEnvelope struct {
	User *domain.User `json:"user"`
}

// MessageResponse carries a user facing confirmation
type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(security.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP returns the first X-Forwarded-For entry, falling back to the peer address
func clientIP(c echo.Context) string {
	if forwarded := c.Request().Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return c.RealIP()
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}

	result, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return NewConflictError(c, "Email já cadastrado.")
		}
		return handleCommonError(c, err, "Failed to register user")
	}

	log.Info().Str("user_id", result.User.ID.String()).Msg("User registered")
	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusCreated, SessionResponse{Token: result.Token, User: result.User})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			return NewUnauthorizedError(c, "Email ou senha inválidos.")
		}
		return handleCommonError(c, err, "Failed to log in")
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusOK, SessionResponse{Token: result.Token, User: result.User})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)

	user, err := h.authService.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, msgSessionRequired)
		}
		return handleCommonError(c, err, "Failed to get user")
	}

	return c.JSON(http.StatusOK, UserEnvelope{User: user})
}

// Logout handles POST /api/v1/auth/logout. Sessions are stateless, so
// logging out only drops the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The answer is the
// same whether or not the email exists or the caller is throttled.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}

	h.authService.ForgotPassword(c.Request().Context(), clientIP(c), req.Email)
	return c.JSON(http.StatusOK, MessageResponse{OK: true, Message: service.ForgotPasswordMessage})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(c, msgInvalidBody)
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return NewValidationError(c, []ValidationError{
				{Field: "token", Message: "Token inválido ou expirado. Solicite um novo link."},
			})
		}
		return handleCommonError(c, err, "Failed to reset password")
	}

	return c.JSON(http.StatusOK, MessageResponse{OK: true, Message: "Senha atualizada com sucesso."})
}
