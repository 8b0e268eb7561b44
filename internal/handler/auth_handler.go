package handler

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"quizhub/internal/config"
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/logger"
	"quizhub/internal/middleware"
	"quizhub/internal/service"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	oauthStateCookieName = "oauthstate"
	oauthStateTTL        = 10 * time.Minute
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService service.AuthService
	server      config.ServerConfig
	validator   *validation.Validator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, server config.ServerConfig, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		server:      server,
		validator:   validator,
	}
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.server.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.server.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterRequest true "Registration"
// @Success 201 {object} dto.UserProfileResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Log in with email and password
// @Description Returns a token pair and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, resp.Tokens.AccessToken, resp.Tokens.ExpiresAt)
	return c.JSON(resp)
}

// Check godoc
// @Summary Check the current session
// @Description Always returns 200; isAuthenticated tells whether the session is valid
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthCheckResponse
// @Router /auth/check [get]
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	resp := h.authService.CheckSession(c.UserContext(), middleware.TokenFromRequest(c))
	return c.JSON(resp)
}

// Refresh godoc
// @Summary Refresh the token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param token body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, resp.AccessToken, resp.ExpiresAt)
	return c.JSON(resp)
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie and revokes the presented access token
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, middleware.SessionCookieName)
	if identity, ok := middleware.IdentityFrom(c); ok {
		if err := h.authService.Logout(c.UserContext(), identity); err != nil {
			return err
		}
	}
	return c.JSON(dto.MessageResponse{Message: "logged out"})
}

func generateStateOauthCookie() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// OAuthLogin godoc
// @Summary Start social login
// @Description Redirects to the configured OAuth provider
// @Tags auth
// @Success 307
// @Failure 404 {object} middleware.ErrorResponse
// @Router /auth/oauth/login [get]
func (h *AuthHandler) OAuthLogin(c *fiber.Ctx) error {
	state, err := generateStateOauthCookie()
	if err != nil {
		return domain.NewInternalError("failed to generate oauth state", err)
	}
	url, err := h.authService.OAuthLoginURL(state)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(oauthStateTTL),
		HTTPOnly: true,
		Secure:   h.server.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// OAuthCallback godoc
// @Summary Finish social login
// @Description Exchanges the code, signs the user in and redirects to the frontend when one is configured
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 200 {object} dto.LoginResponse
// @Success 307
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/oauth/callback [get]
func (h *AuthHandler) OAuthCallback(c *fiber.Ctx) error {
	expected := c.Cookies(oauthStateCookieName)
	h.clearCookie(c, oauthStateCookieName)

	state := c.Query("state")
	if expected == "" || state != expected {
		logger.Get().Warn("OAuth state mismatch", zap.String("ip", c.IP()))
		return domain.NewInvalidInputError("invalid oauth state")
	}
	code := c.Query("code")
	if code == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("code")}
	}

	resp, err := h.authService.HandleOAuthCallback(c.UserContext(), code)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, resp.Tokens.AccessToken, resp.Tokens.ExpiresAt)

	if h.server.FrontendURL != "" {
		return c.Redirect(h.server.FrontendURL, fiber.StatusTemporaryRedirect)
	}
	return c.JSON(resp)
}
