package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
)

// TokenKind distinguishes access tokens from refresh tokens
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// ErrInvalidToken is the single error returned for every verification failure:
// bad signature, wrong kind, expiry, malformed claims or an unparseable string.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the signed token payload
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"id"`
	Role   string    `json:"role,omitempty"`
	Kind   TokenKind `json:"typ"`
}

// UserUUID parses the user id carried in the claims
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// ExpiresAtTime returns the expiry as time.Time
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns when the token was issued. The token id is a ULID
// stamped with the issue time in milliseconds, which the iat claim rounds
// down to the second; iat is the fallback for ids that are not ULIDs.
func (c *Claims) IssuedAtTime() time.Time {
	if id, err := ulid.ParseStrict(c.ID); err == nil {
		return ulid.Time(id.Time())
	}
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// TokenInput is the identity a token is issued for
type TokenInput struct {
	UserID uuid.UUID
	Role   string
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
}

// TokenService signs and verifies HS256 tokens.
// Access and refresh tokens use distinct secrets so neither can stand in for the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	leeway        time.Duration
	now           func() time.Time
}

// Option configures a TokenService
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and verifying tokens
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service from configuration
func NewTokenService(cfg config.JWTConfig, opts ...Option) *TokenService {
	s := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		leeway:        cfg.Leeway,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueAccess signs a short-lived access token
func (s *TokenService) IssueAccess(input TokenInput) (string, time.Time, error) {
	return s.issue(input, TokenKindAccess)
}

// IssueRefresh signs a long-lived refresh token
func (s *TokenService) IssueRefresh(input TokenInput) (string, time.Time, error) {
	return s.issue(input, TokenKindRefresh)
}

// IssuePair signs an access and a refresh token for the same identity
func (s *TokenService) IssuePair(input TokenInput) (*TokenPair, error) {
	access, accessExp, err := s.IssueAccess(input)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.IssueRefresh(input)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

func (s *TokenService) issue(input TokenInput, kind TokenKind) (string, time.Time, error) {
	now := s.now()
	ttl, secret := s.accessTTL, s.accessSecret
	if kind == TokenKindRefresh {
		ttl, secret = s.refreshTTL, s.refreshSecret
	}
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: input.UserID.String(),
		Role:   input.Role,
		Kind:   kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks a token of the given kind and returns its claims.
// Any failure yields ErrInvalidToken.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret := s.accessSecret
	if kind == TokenKindRefresh {
		secret = s.refreshSecret
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserUUID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTTL returns the access token lifetime
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the refresh token lifetime
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}
