package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/interfaces/http/middleware"
)

// DefaultRefreshCookieName is used when the cookie config leaves the name empty
const DefaultRefreshCookieName = "refresh_token"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appidentity.AuthService, cookie config.CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = DefaultRefreshCookieName
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Authenticate with email and password. The refresh token is also set as an httpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Token.RefreshToken, result.Token.RefreshTokenExpiresAt)
	h.Success(c, LoginResponse{
		Token: toTokenResponse(result.Token),
		User:  toUserResponse(result.User),
	})
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  Rotate the token pair. The refresh token is read from the body, falling back to the refresh cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest false "Refresh token"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request body")
			return
		}
	}

	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if cookie, err := c.Cookie(h.cookie.Name); err == nil {
			token = cookie
		}
	}
	if token == "" {
		h.BadRequest(c, "Refresh token is required")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), appidentity.RefreshTokenInput{
		RefreshToken: token,
	})
	if err != nil {
		h.clearRefreshCookie(c)
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.Token.RefreshToken, result.Token.RefreshTokenExpiresAt)
	h.Success(c, LoginResponse{
		Token: toTokenResponse(result.Token),
		User:  toUserResponse(result.User),
	})
}

// Register godoc
// @ID           register
// @Summary      Register an account
// @Description  Create a user without a role. Every permission check fails until an administrator assigns one.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), appidentity.RegisterInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toUserResponse(*user))
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revoke the presented access token, forget the stored refresh token and clear the refresh cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[LogoutResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	userID, err := getUserID(c)
	if claims == nil || err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	err = h.authService.Logout(c.Request.Context(), appidentity.LogoutInput{
		UserID:          userID,
		AccessTokenID:   claims.ID,
		AccessExpiresAt: claims.ExpiresAtTime(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// GetCurrentUser godoc
// @ID           getCurrentUser
// @Summary      Get current user
// @Description  Get the authenticated user together with the permissions of their role
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[CurrentUserResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	current, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CurrentUserResponse{
		User:        toUserResponse(current.User),
		Permissions: current.Permissions,
	})
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change password
// @Description  Change the current user's password. Tokens issued before the change stop working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), appidentity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	h.Success(c, MessageResponse{Message: "Password changed successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	h.writeCookie(c, token, maxAge)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	h.writeCookie(c, "", -1)
}

func (h *AuthHandler) writeCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, value, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSiteMode(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
