package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
	"github.com/shopadmin/backoffice/internal/infrastructure/cache"
	"github.com/shopadmin/backoffice/internal/infrastructure/event"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	errTokenInvalid = shared.NewDomainError("UNAUTHORIZED", "Invalid or expired token")
	errTokenRevoked = shared.NewDomainError("UNAUTHORIZED", "Token has been revoked")
	errUserGone     = shared.NewDomainError("UNAUTHORIZED", "User no longer exists")
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	roleRepo    identity.RoleRepository
	tokens      *auth.TokenService
	throttle    cache.LoginThrottle
	revocations auth.RevocationStore
	publisher   shared.EventPublisher
	metrics     *telemetry.AuthMetrics
	logger      *zap.Logger

	// rejectPassword burns a password comparison for emails with no account
	rejectPassword func(password string) bool
}

// AuthServiceOption configures optional AuthService collaborators
type AuthServiceOption func(*AuthService)

// WithLoginThrottle enables per email and address attempt limiting
func WithLoginThrottle(throttle cache.LoginThrottle) AuthServiceOption {
	return func(s *AuthService) {
		s.throttle = throttle
	}
}

// WithRevocationStore enables access token revocation on logout and password change
func WithRevocationStore(store auth.RevocationStore) AuthServiceOption {
	return func(s *AuthService) {
		s.revocations = store
	}
}

// WithEventPublisher sets the publisher for user events
func WithEventPublisher(publisher shared.EventPublisher) AuthServiceOption {
	return func(s *AuthService) {
		s.publisher = publisher
	}
}

// WithAuthMetrics records login and refresh outcomes
func WithAuthMetrics(metrics *telemetry.AuthMetrics) AuthServiceOption {
	return func(s *AuthService) {
		s.metrics = metrics
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	tokens *auth.TokenService,
	logger *zap.Logger,
	opts ...AuthServiceOption,
) *AuthService {
	s := &AuthService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		tokens:         tokens,
		logger:         logger,
		rejectPassword: identity.RejectPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates a user by email and password and returns a token pair.
// The attempt is counted against the throttle before the account is looked up.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()

	email := identity.NormalizeEmail(input.Email)
	throttleKey := cache.LoginThrottleKey(email, input.IP)

	if s.throttle != nil {
		res, err := s.throttle.Hit(ctx, throttleKey)
		switch {
		case err != nil:
			// Throttle outages must not lock everybody out
			s.log(ctx).Warn("Login throttle unavailable", zap.Error(err))
		case !res.Allowed:
			s.log(ctx).Warn("Login throttled",
				zap.String("email", email),
				zap.String("ip", input.IP),
				zap.Int64("attempts", res.Attempts))
			s.metrics.RecordLogin(ctx, telemetry.LoginThrottled, time.Since(start))
			span.AddEvent("login_throttled")
			return nil, newTooManyAttemptsError(res.RetryAfter)
		}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, err)
			s.log(ctx).Error("Failed to look up user for login", zap.Error(err))
			return nil, err
		}
		s.rejectPassword(input.Password)
		s.log(ctx).Warn("Login failed", zap.String("email", email), zap.String("ip", input.IP))
		s.metrics.RecordLogin(ctx, telemetry.LoginFailed, time.Since(start))
		return nil, ErrInvalidCredentials
	}

	if !user.VerifyPassword(input.Password) {
		s.log(ctx).Warn("Login failed", zap.String("email", email), zap.String("ip", input.IP))
		s.metrics.RecordLogin(ctx, telemetry.LoginFailed, time.Since(start))
		return nil, ErrInvalidCredentials
	}

	role, err := s.loadRole(ctx, user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pair, err := s.tokens.IssuePair(auth.TokenInput{UserID: user.ID, Role: roleName(role)})
	if err != nil {
		s.log(ctx).Error("Failed to generate token pair", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin(pair.RefreshToken)
	err = s.userRepo.RecordLogin(ctx, user.ID, user.PasswordHash, pair.RefreshToken, *user.LastLoginAt)
	if errors.Is(err, shared.ErrNotFound) {
		// The password changed or the account went away after the check
		s.log(ctx).Warn("Login lost a race with a credential change", zap.String("user_id", user.ID.String()))
		s.metrics.RecordLogin(ctx, telemetry.LoginFailed, time.Since(start))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.log(ctx).Error("Failed to store refresh token", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, throttleKey); err != nil {
			s.log(ctx).Warn("Failed to reset login throttle", zap.Error(err))
		}
	}
	s.publish(ctx, user)

	span.SetAttributes(telemetry.KeyUserID.String(user.ID.String()))
	telemetry.SetOK(span)
	s.metrics.RecordLogin(ctx, telemetry.LoginSucceeded, time.Since(start))
	s.log(ctx).Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", roleName(role)))

	return &LoginResult{Token: pair, User: ToUserInfo(user, role)}, nil
}

// Refresh exchanges a refresh token for a new token pair.
// The presented token must match the one stored for the user, and the stored
// value is overwritten with the new refresh token (last write wins).
func (s *AuthService) Refresh(ctx context.Context, input RefreshTokenInput) (*LoginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "refresh")
	defer span.End()

	claims, err := s.tokens.Verify(input.RefreshToken, auth.TokenKindRefresh)
	if err != nil {
		s.metrics.RecordRefresh(ctx, false)
		return nil, ErrInvalidRefreshToken
	}
	userID, _ := claims.UserUUID()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.metrics.RecordRefresh(ctx, false)
			return nil, ErrInvalidRefreshToken
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !user.RefreshTokenMatches(input.RefreshToken) {
		s.log(ctx).Warn("Refresh token does not match stored token", zap.String("user_id", user.ID.String()))
		s.metrics.RecordRefresh(ctx, false)
		return nil, ErrInvalidRefreshToken
	}

	role, err := s.loadRole(ctx, user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	pair, err := s.tokens.IssuePair(auth.TokenInput{UserID: user.ID, Role: roleName(role)})
	if err != nil {
		s.log(ctx).Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	user.RefreshToken = pair.RefreshToken

	s.metrics.RecordRefresh(ctx, true)
	telemetry.SetOK(span)
	return &LoginResult{Token: pair, User: ToUserInfo(user, role)}, nil
}

// Logout clears the stored refresh token and revokes the presented access token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, input.UserID, ""); err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.log(ctx).Error("Failed to clear refresh token", zap.Error(err))
		return err
	}

	if s.revocations != nil && input.AccessTokenID != "" {
		ttl := time.Until(input.AccessExpiresAt)
		if err := s.revocations.Revoke(ctx, input.AccessTokenID, ttl); err != nil {
			s.log(ctx).Error("Failed to revoke access token", zap.Error(err))
			return err
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, identity.NewUserLoggedOutEvent(input.UserID)); err != nil {
			s.log(ctx).Warn("Failed to publish logout event", zap.Error(err))
		}
	}

	s.log(ctx).Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Register creates a user without a role. The account can authenticate but
// every permission check fails until an administrator assigns a role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	user, err := identity.NewUser(email, input.DisplayName, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.log(ctx).Error("Failed to create user", zap.Error(err))
		return nil, err
	}
	s.publish(ctx, user)

	s.log(ctx).Info("User registered", zap.String("user_id", user.ID.String()))
	info := ToUserInfo(user, nil)
	return &info, nil
}

// ChangePassword replaces the caller's password. The stored refresh token is
// cleared and every access token issued so far is revoked.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.PasswordHash, user.UpdatedAt); err != nil {
		s.log(ctx).Error("Failed to update password", zap.Error(err))
		return err
	}

	if s.revocations != nil {
		if err := s.revocations.RevokeUser(ctx, user.ID.String(), s.tokens.AccessTTL()); err != nil {
			s.log(ctx).Error("Failed to revoke user tokens", zap.Error(err))
			return err
		}
	}

	s.log(ctx).Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// Authenticate verifies a bearer access token and resolves the principal
// behind it from the credential store. The role is loaded on every call so
// permission changes apply to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*identity.Principal, *auth.Claims, error) {
	claims, err := s.tokens.Verify(token, auth.TokenKindAccess)
	if err != nil {
		return nil, nil, errTokenInvalid
	}
	userID, _ := claims.UserUUID()

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if !revoked {
			revoked, err = s.revocations.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
			if err != nil {
				return nil, nil, err
			}
		}
		if revoked {
			return nil, nil, errTokenRevoked
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, errUserGone
		}
		return nil, nil, err
	}

	role, err := s.loadRole(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return identity.NewPrincipal(user, role), claims, nil
}

// Me returns the authenticated user and the permissions of their role
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*CurrentUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.loadRole(ctx, user)
	if err != nil {
		return nil, err
	}

	perms := []string{}
	if role != nil {
		perms = append(perms, role.Permissions...)
	}
	return &CurrentUser{User: ToUserInfo(user, role), Permissions: perms}, nil
}

// loadRole returns the user's role, or nil when the user has none or the
// referenced role was deleted
func (s *AuthService) loadRole(ctx context.Context, user *identity.User) (*identity.Role, error) {
	if !user.HasRole() {
		return nil, nil
	}
	role, err := s.roleRepo.FindByID(ctx, *user.RoleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.log(ctx).Warn("User references a missing role",
				zap.String("user_id", user.ID.String()),
				zap.String("role_id", user.RoleID.String()))
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if s.publisher == nil {
		user.ClearDomainEvents()
		return
	}
	if err := event.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.log(ctx).Warn("Failed to publish user events", zap.Error(err))
	}
}

func roleName(role *identity.Role) string {
	if role == nil {
		return ""
	}
	return role.Name
}

// log returns the service logger tagged with the request and caller in ctx.
func (s *AuthService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}
