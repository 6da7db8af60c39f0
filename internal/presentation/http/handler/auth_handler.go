package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/pkg/oauth"
	"github.com/sangkips/pos-api/pkg/utils"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauthState"

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	jwtManager  *utils.JWTManager
	google      *oauth.GoogleProvider
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler. google may be nil.
func NewAuthHandler(authService *service.AuthService, jwtManager *utils.JWTManager, google *oauth.GoogleProvider, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		google:      google,
		cookie:      cookie,
	}
}

func (h *AuthHandler) sameSite() http.SameSite {
	switch strings.ToLower(h.cookie.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) setSession(c *gin.Context, out *service.LoginOutput) {
	h.setCookie(c, middleware.AccessTokenCookie, out.AccessToken, int(h.jwtManager.AccessTokenExpiry().Seconds()))
	h.setCookie(c, middleware.RefreshTokenCookie, out.RefreshToken, int(h.jwtManager.RefreshTokenExpiry().Seconds()))
}

func (h *AuthHandler) clearSession(c *gin.Context) {
	h.setCookie(c, middleware.AccessTokenCookie, "", -1)
	h.setCookie(c, middleware.RefreshTokenCookie, "", -1)
}

// refreshTokenFrom reads the refresh token from the cookie, then the
// X-Refresh-Token header, then a JSON body.
func refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	if token := c.GetHeader(middleware.RefreshTokenHeader); token != "" {
		return token
	}
	var req request.RefreshTokenRequest
	if c.Request.ContentLength > 0 && c.ShouldBindJSON(&req) == nil {
		return req.RefreshToken
	}
	return ""
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSession(c, output)
	response.OK(c, "Login successful", gin.H{
		"user":  output.User,
		"token": output.AccessToken,
	})
}

// RefreshToken rotates both session cookies
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	output, err := h.authService.RefreshToken(c.Request.Context(), refreshTokenFrom(c))
	if err != nil {
		h.clearSession(c)
		response.Error(c, err)
		return
	}

	h.setSession(c, output)
	response.OK(c, "Token refreshed successfully", gin.H{
		"token": output.AccessToken,
	})
}

// Logout clears the session and revokes outstanding refresh tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if userID := GetUserID(c); userID != nil {
		if err := h.authService.Logout(ctx, *userID); err != nil {
			zap.S().Warnw("logout revoke failed", "user_id", userID, "error", err)
		}
	} else if token := refreshTokenFrom(c); token != "" {
		if err := h.authService.LogoutWithRefreshToken(ctx, token); err != nil {
			zap.S().Warnw("logout revoke failed", "error", err)
		}
	}

	h.clearSession(c)
	response.OK(c, "Logged out successfully", nil)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User retrieved successfully", gin.H{"user": user})
}

// ChangePassword handles password change
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), &service.ChangePasswordInput{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.clearSession(c)
	response.OK(c, "Password changed successfully", nil)
}

// GoogleAuth redirects to the Google consent screen
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	if h.google == nil || !h.google.IsConfigured() {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error())
		return
	}

	state := uuid.NewString()

	h.setCookie(c, oauthStateCookie, state, 600)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthURL(state))
}

// GoogleCallback signs in an existing staff account matched by Google email
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil || !h.google.IsConfigured() {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error())
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	h.setCookie(c, oauthStateCookie, "", -1)
	if err != nil || state == "" || state != c.Query("state") {
		h.redirectError(c, "invalid_state")
		return
	}

	identity, err := h.google.Identify(c.Request.Context(), c.Query("code"))
	if err != nil {
		zap.S().Warnw("google sign-in failed", "error", err)
		h.redirectError(c, "google_failed")
		return
	}

	output, err := h.authService.LoginWithEmail(c.Request.Context(), identity.Email)
	if err != nil {
		h.redirectError(c, "not_registered")
		return
	}

	h.setSession(c, output)
	target := h.google.SuccessURL()
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *AuthHandler) redirectError(c *gin.Context, reason string) {
	target := h.google.ErrorURL()
	if target == "" {
		response.Unauthorized(c, "Google sign-in failed")
		return
	}
	u, err := url.Parse(target)
	if err != nil {
		response.Unauthorized(c, "Google sign-in failed")
		return
	}
	q := u.Query()
	q.Set("error", reason)
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusTemporaryRedirect, u.String())
}
