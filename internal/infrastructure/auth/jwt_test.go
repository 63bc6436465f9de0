package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:  "test-access-secret-key-32-chars!!",
		RefreshSecret: "test-refresh-secret-key-32-chars!",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "test-issuer",
	}
}

// fakeClock is a settable time source
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokenService(clock *fakeClock) *TokenService {
	if clock == nil {
		return NewTokenService(testJWTConfig())
	}
	return NewTokenService(testJWTConfig(), WithClock(clock.Now))
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService(nil)
	input := TokenInput{UserID: uuid.New(), Role: "Editor"}

	t.Run("access", func(t *testing.T) {
		token, exp, err := svc.IssueAccess(input)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

		claims, err := svc.Verify(token, TokenKindAccess)
		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "Editor", claims.Role)
		assert.Equal(t, TokenKindAccess, claims.Kind)
		assert.NotEmpty(t, claims.ID)

		id, err := claims.UserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, id)
	})

	t.Run("refresh", func(t *testing.T) {
		token, _, err := svc.IssueRefresh(input)
		require.NoError(t, err)

		claims, err := svc.Verify(token, TokenKindRefresh)
		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, TokenKindRefresh, claims.Kind)
	})
}

func TestClaims_IssuedAtTimeKeepsMilliseconds(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 250*int(time.Millisecond), time.UTC)}
	svc := newTestTokenService(clock)

	token, _, err := svc.IssueAccess(TokenInput{UserID: uuid.New()})
	require.NoError(t, err)
	claims, err := svc.Verify(token, TokenKindAccess)
	require.NoError(t, err)

	_, err = ulid.ParseStrict(claims.ID)
	require.NoError(t, err, "token ids are ULIDs")
	assert.Equal(t, clock.Now().Truncate(time.Second), claims.IssuedAt.Time.UTC())
	assert.True(t, clock.Now().Equal(claims.IssuedAtTime()), "got %v", claims.IssuedAtTime())

	legacy := &Claims{RegisteredClaims: jwt.RegisteredClaims{ID: uuid.NewString(), IssuedAt: jwt.NewNumericDate(clock.Now())}}
	assert.Equal(t, clock.Now().Truncate(time.Second), legacy.IssuedAtTime().UTC(), "non-ULID ids fall back to iat")
}

func TestTokenService_IssuePair(t *testing.T) {
	svc := newTestTokenService(nil)

	pair, err := svc.IssuePair(TokenInput{UserID: uuid.New()})
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestTokenService_KindsAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService(nil)
	input := TokenInput{UserID: uuid.New()}

	access, _, err := svc.IssueAccess(input)
	require.NoError(t, err)
	refresh, _, err := svc.IssueRefresh(input)
	require.NoError(t, err)

	_, err = svc.Verify(access, TokenKindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify(refresh, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokenService(clock)

	token, _, err := svc.IssueAccess(TokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	clock.Advance(15*time.Minute - time.Second)
	_, err = svc.Verify(token, TokenKindAccess)
	require.NoError(t, err, "valid just before expiry")

	clock.Advance(2 * time.Second)
	_, err = svc.Verify(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired tokens fail with the uniform error")
}

func TestTokenService_Leeway(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	cfg := testJWTConfig()
	cfg.Leeway = 30 * time.Second
	svc := NewTokenService(cfg, WithClock(clock.Now))

	token, _, err := svc.IssueAccess(TokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	clock.Advance(15*time.Minute + 10*time.Second)
	_, err = svc.Verify(token, TokenKindAccess)
	assert.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = svc.Verify(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsTampering(t *testing.T) {
	svc := newTestTokenService(nil)
	token, _, err := svc.IssueAccess(TokenInput{UserID: uuid.New(), Role: "Viewer"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("modified signature", func(t *testing.T) {
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)
		_, err := svc.Verify(tampered, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("swapped payload", func(t *testing.T) {
		other, _, err := svc.IssueAccess(TokenInput{UserID: uuid.New(), Role: "Admin"})
		require.NoError(t, err)
		otherParts := strings.Split(other, ".")
		tampered := parts[0] + "." + otherParts[1] + "." + parts[2]
		_, err = svc.Verify(tampered, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, s := range []string{"", "not.a.token", "a.b", token + "x"} {
			_, err := svc.Verify(s, TokenKindAccess)
			assert.ErrorIs(t, err, ErrInvalidToken, s)
		}
	})
}

func TestTokenService_RejectsForeignSecretAndAlgorithm(t *testing.T) {
	svc := newTestTokenService(nil)
	userID := uuid.New().String()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Kind:   TokenKindAccess,
	}

	t.Run("different secret", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
		require.NoError(t, err)
		_, err = svc.Verify(signed, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Verify(signed, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("HS512 with the right secret", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWTConfig().AccessSecret))
		require.NoError(t, err)
		_, err = svc.Verify(signed, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		noExp := *claims
		noExp.ExpiresAt = nil
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &noExp).SignedString([]byte(testJWTConfig().AccessSecret))
		require.NoError(t, err)
		_, err = svc.Verify(signed, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("non-uuid user id", func(t *testing.T) {
		bad := *claims
		bad.UserID = "42"
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &bad).SignedString([]byte(testJWTConfig().AccessSecret))
		require.NoError(t, err)
		_, err = svc.Verify(signed, TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenService_TTLAccessors(t *testing.T) {
	svc := newTestTokenService(nil)
	assert.Equal(t, 15*time.Minute, svc.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, svc.RefreshTTL())
}
