// Package security issues and verifies session tokens and hashes secrets.
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

const (
	// SessionTTL is the lifetime of a session token
	SessionTTL = 7 * 24 * time.Hour

	sessionIssuer   = "growlify-api"
	sessionAudience = "growlify"
)

// ErrInvalidSession is returned for tokens that fail verification
var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims are the private claims carried by a session token
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c *SessionClaims) Validate(ctx context.Context) error {
	if c.Email == "" {
		return errors.New("missing email claim")
	}
	return nil
}

// Session is a verified session
type Session struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	ExpiresAt time.Time
}

// SessionManager signs and validates HS256 session tokens
type SessionManager struct {
	signer    jose.Signer
	validator *validator.Validator
	now       func() time.Time
}

// NewSessionManager creates a SessionManager keyed by secret
func NewSessionManager(secret string) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := []byte(secret)

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	v, err := validator.New(
		func(ctx context.Context) (interface{}, error) { return key, nil },
		validator.HS256,
		sessionIssuer,
		[]string{sessionAudience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &SessionClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	return &SessionManager{signer: signer, validator: v, now: time.Now}, nil
}

// Issue returns a signed token for the user and its expiry
func (m *SessionManager) Issue(userID uuid.UUID, email, name string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(SessionTTL)

	registered := jwt.Claims{
		Issuer:    sessionIssuer,
		Subject:   userID.String(),
		Audience:  jwt.Audience{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.Signed(m.signer).
		Claims(registered).
		Claims(SessionClaims{Email: email, Name: name}).
		CompactSerialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify validates a token and returns its session
func (m *SessionManager) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	raw, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	userID, err := uuid.Parse(claims.RegisteredClaims.Subject)
	if err != nil {
		return nil, ErrInvalidSession
	}

	session := &Session{
		UserID:    userID,
		ExpiresAt: time.Unix(claims.RegisteredClaims.Expiry, 0).UTC(),
	}
	if custom, ok := claims.CustomClaims.(*SessionClaims); ok {
		session.Email = custom.Email
		session.Name = custom.Name
	}
	return session, nil
}
