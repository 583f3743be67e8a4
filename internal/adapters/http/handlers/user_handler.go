package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/response"
	"transporteuni-api/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ============================================================
// Profile (self)
// ============================================================

// GetProfile gets own profile
// @Summary Get my profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetProfile(c.Context(), actor.UserID)
	if err != nil {
		return err
	}

	return response.Success(c, "Profile retrieved successfully", fiber.Map{"user": user})
}

// UpdateProfile updates own profile
// @Summary Update my profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var input services.UpdateProfileInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := validator.Struct(&input); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Context(), actor.UserID, &input)
	if err != nil {
		return err
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{"user": user})
}

// ChangePassword changes own password
// @Summary Change my password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/change-password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var input services.ChangePasswordInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := validator.Struct(&input); err != nil {
		return err
	}

	if err := h.userService.ChangePassword(c.Context(), actor.UserID, &input); err != nil {
		return err
	}

	return response.Success(c, "Password changed successfully", nil)
}

// ============================================================
// Administration
// ============================================================

// ListUsers lists active users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter"
// @Param search query string false "Email or name"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	users, meta, err := h.userService.ListUsers(c.Context(), &services.ListUsersInput{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Params: params,
	})
	if err != nil {
		return err
	}

	return response.Paginated(c, "Users retrieved successfully", users, meta)
}

// UpdateStatus activates or deactivates a user
// @Summary Activate or deactivate a user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateStatusInput true "Status"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/status [patch]
func (h *UserHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateStatusInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := validator.Struct(&input); err != nil {
		return err
	}

	user, err := h.userService.SetStatus(c.Context(), actor.UserID, id, *input.IsActive)
	if err != nil {
		return err
	}

	return response.Success(c, "User status updated successfully", fiber.Map{"user": user})
}

// UpdateRole changes a user's role
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateRoleInput true "Role"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateRoleInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if err := validator.Struct(&input); err != nil {
		return err
	}

	user, err := h.userService.SetRole(c.Context(), actor.UserID, id, input.Role)
	if err != nil {
		return err
	}

	return response.Success(c, "User role updated successfully", fiber.Map{"user": user})
}
