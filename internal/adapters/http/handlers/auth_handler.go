package handlers

import (
	"errors"
	"strings"
	"time"

	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/jwt"
	"transporteuni-api/internal/pkg/response"
	"transporteuni-api/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RefreshTokenRequest represents the refresh/logout request body
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a passenger (or driver) account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := validator.Struct(&input); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Context(), &input)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)
	return response.Created(c, "User registered successfully", result)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return domain.NewValidationError("Email and password are required")
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		return err
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)
	return response.Success(c, "Login successful", result)
}

// RefreshToken rotates a refresh token, or re-issues an access token for a valid bearer
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshTokenRequest false "Refresh token (or refresh_token cookie)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := h.refreshTokenFrom(c)

	if refreshToken == "" {
		bearer := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if bearer == "" || bearer == c.Get("Authorization") {
			return domain.NewAuthError("Refresh token required")
		}

		claims, err := h.authService.ValidateAccessToken(bearer)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return domain.ErrTokenExpired
			}
			return domain.ErrTokenMalformed
		}

		result, err := h.authService.ReissueAccessToken(c.Context(), claims.UserID)
		if err != nil {
			return err
		}
		return response.Success(c, "Token refreshed successfully", result)
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			h.clearAuthCookies(c)
		}
		return err
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)
	return response.Success(c, "Token refreshed successfully", result)
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the refresh token and clear cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := h.refreshTokenFrom(c); refreshToken != "" {
		if err := h.authService.Logout(c.Context(), refreshToken); err != nil {
			return err
		}
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	if err := h.authService.LogoutAll(c.Context(), actor.UserID); err != nil {
		return err
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out from all devices", nil)
}

// refreshTokenFrom reads the refresh token from the body or the cookie
func (h *AuthHandler) refreshTokenFrom(c *fiber.Ctx) string {
	var req RefreshTokenRequest
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&req)
	}
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	return c.Cookies("refresh_token")
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
