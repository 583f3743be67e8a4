package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"transporteuni-api/internal/adapters/http/middleware"
	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/jwt"
	"transporteuni-api/internal/pkg/response"
	"transporteuni-api/internal/pkg/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler(cfg)})
}

func ok(c *fiber.Ctx) error {
	return response.Success(c, "ok", fiber.Map{"userID": c.Locals("userID"), "role": c.Locals("role")})
}

func decode(t *testing.T, resp *http.Response) response.Response {
	t.Helper()
	defer resp.Body.Close()
	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func bearer(t *testing.T, cfg *config.Config, id uint, role string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(id, "user@test.com", role, cfg.JWT.Secret, 60)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.NewDB(t)
	app := newApp(cfg)
	app.Get("/me", middleware.AuthMiddleware(cfg, repositories.NewUserRepository(db)), ok)

	passenger := testutil.CreateUser(t, db, "test@test.com", domain.RolePassenger)
	inactive := testutil.CreateUser(t, db, "gone@test.com", domain.RolePassenger)
	testutil.Deactivate(t, db, inactive)

	expired, err := jwt.GenerateAccessToken(passenger.ID, passenger.Email, passenger.Role, cfg.JWT.Secret, -5)
	require.NoError(t, err)
	foreign, err := jwt.GenerateAccessToken(passenger.ID, passenger.Email, passenger.Role, "another-secret", 60)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing token", "", http.StatusUnauthorized, domain.ErrUnauthorized.Message},
		{"not a bearer", "Basic abc", http.StatusUnauthorized, domain.ErrUnauthorized.Message},
		{"malformed", "Bearer abc.def", http.StatusUnauthorized, domain.ErrTokenMalformed.Message},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, domain.ErrTokenMalformed.Message},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, domain.ErrTokenExpired.Message},
		{"unknown user", bearer(t, cfg, 9999, "admin"), http.StatusUnauthorized, "User no longer exists"},
		{"inactive user", bearer(t, cfg, inactive.ID, inactive.Role), http.StatusUnauthorized, domain.ErrUserInactive.Message},
		{"valid", bearer(t, cfg, passenger.ID, passenger.Role), http.StatusOK, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode(t, resp)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.status == http.StatusOK, body.Success)
		})
	}
}

func TestAuthMiddleware_RoleComesFromStoredUser(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.NewDB(t)
	app := newApp(cfg)
	app.Get("/admin", middleware.AuthMiddleware(cfg, repositories.NewUserRepository(db)), middleware.RequireAdmin(), ok)

	passenger := testutil.CreateUser(t, db, "test@test.com", domain.RolePassenger)

	// a token claiming admin for a passenger account is not enough
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, cfg, passenger.ID, string(domain.RoleAdmin)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	cfg := testutil.Config()
	db := testutil.NewDB(t)
	app := newApp(cfg)
	app.Get("/me", middleware.AuthMiddleware(cfg, repositories.NewUserRepository(db)), ok)
	user := testutil.CreateUser(t, db, "test@test.com", domain.RoleDriver)

	token, err := jwt.GenerateAccessToken(user.ID, user.Email, user.Role, cfg.JWT.Secret, 60)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoleAllowLists(t *testing.T) {
	cfg := testutil.Config()

	guards := map[string]fiber.Handler{
		"admin":     middleware.RequireAdmin(),
		"operator":  middleware.RequireOperator(),
		"driver":    middleware.RequireDriver(),
		"passenger": middleware.RequirePassenger(),
	}

	// allowed[guard][role]
	allowed := map[string]map[domain.Role]bool{
		"admin":     {domain.RoleAdmin: true},
		"operator":  {domain.RoleAdmin: true, domain.RoleOperator: true},
		"driver":    {domain.RoleAdmin: true, domain.RoleOperator: true, domain.RoleDriver: true},
		"passenger": {domain.RoleAdmin: true, domain.RoleOperator: true, domain.RoleDriver: true, domain.RolePassenger: true},
	}

	for guard, handler := range guards {
		for _, role := range domain.Roles {
			t.Run(fmt.Sprintf("%s guard/%s", guard, role), func(t *testing.T) {
				app := newApp(cfg)
				app.Get("/", func(c *fiber.Ctx) error {
					c.Locals("userID", uint(1))
					c.Locals("role", string(role))
					return c.Next()
				}, handler, ok)

				resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
				require.NoError(t, err)

				want := http.StatusForbidden
				if allowed[guard][role] {
					want = http.StatusOK
				}
				assert.Equal(t, want, resp.StatusCode)
			})
		}
	}

	t.Run("no role set", func(t *testing.T) {
		app := newApp(cfg)
		app.Get("/", middleware.RequireOperator(), ok)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequireOwnershipOrAdmin(t *testing.T) {
	cfg := testutil.Config()

	run := func(userID uint, role domain.Role, path string) int {
		app := newApp(cfg)
		app.Get("/users/:id", func(c *fiber.Ctx) error {
			c.Locals("userID", userID)
			c.Locals("role", string(role))
			return c.Next()
		}, middleware.RequireOwnershipOrAdmin("id"), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, run(7, domain.RolePassenger, "/users/7"))
	assert.Equal(t, http.StatusForbidden, run(7, domain.RolePassenger, "/users/8"))
	assert.Equal(t, http.StatusBadRequest, run(7, domain.RolePassenger, "/users/abc"))
	assert.Equal(t, http.StatusOK, run(1, domain.RoleOperator, "/users/8"))
	assert.Equal(t, http.StatusOK, run(1, domain.RoleAdmin, "/users/8"))
	assert.Equal(t, http.StatusForbidden, run(1, domain.RoleDriver, "/users/8"))
}

func TestAPIKey(t *testing.T) {
	cfg := testutil.Config()

	app := newApp(cfg)
	app.Get("/", middleware.APIKey("s3cret"), ok)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing", "/", "", http.StatusUnauthorized},
		{"wrong", "/", "nope", http.StatusForbidden},
		{"header", "/", "s3cret", http.StatusOK},
		{"query", "/?api_key=s3cret", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(middleware.APIKeyHeader, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	open := newApp(cfg)
	open.Get("/", middleware.APIKey(""), ok)
	resp, err := open.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCustomErrorHandler(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "test@test.com", domain.RolePassenger)
	dup := db.Create(&models.User{Email: user.Email, Password: "x", FirstName: "A", LastName: "B"}).Error
	require.Error(t, dup)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		detail  string
	}{
		{"domain error", domain.ErrReservationExists, http.StatusConflict, domain.ErrReservationExists.Message, "state_conflict"},
		{"wrapped domain error", fmt.Errorf("booking: %w", domain.ErrTripNotFound), http.StatusNotFound, "Trip not found", "not_found"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "Resource not found", "not_found"},
		{"duplicate key", dup, http.StatusConflict, "email already exists", "duplicate_key"},
		{"fiber error", fiber.NewError(http.StatusBadRequest, "bad json"), http.StatusBadRequest, "bad json", "validation"},
		{"jwt expired", jwt.ErrTokenExpired, http.StatusUnauthorized, domain.ErrTokenExpired.Message, "auth"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(testutil.Config())
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.detail, body.Error)
		})
	}

	t.Run("prod hides internal detail", func(t *testing.T) {
		prod := testutil.Config()
		prod.AppMode = "prod"
		app := newApp(prod)
		app.Get("/", func(c *fiber.Ctx) error { return errors.New("boom") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "internal", decode(t, resp).Error)
	})
}

func TestCacheHeaders(t *testing.T) {
	app := newApp(testutil.Config())
	app.Get("/public", middleware.PublicCache(time.Minute), ok)
	app.Get("/private", middleware.NoCacheHeaders(), ok)
	app.Get("/missing", middleware.PublicCache(time.Minute), func(c *fiber.Ctx) error { return domain.ErrTripNotFound })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public", nil))
	require.NoError(t, err)
	assert.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Cache-Control"))
}
