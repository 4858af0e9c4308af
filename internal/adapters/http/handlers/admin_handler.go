package handlers

import (
	"relic-ledger/internal/adapters/http/middleware"
	"relic-ledger/internal/adapters/persistence/models"
	"relic-ledger/internal/core/services"
	"relic-ledger/internal/pkg/pagination"
	"relic-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles user administration and the dashboard
type AdminHandler struct {
	userService      *services.UserService
	dashboardService *services.DashboardService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userService *services.UserService, dashboardService *services.DashboardService) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		dashboardService: dashboardService,
	}
}

// ListUsers returns a paginated page of user accounts
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.userService.List(c.Context(), params.Offset, params.PageSize)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	items := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, u.ToResponse())
	}

	return response.Success(c, "Users retrieved successfully",
		pagination.NewResponse(items, params, total))
}

// GetUser returns a single user account
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetByID(c.Context(), id)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "User retrieved successfully", user.ToResponse())
}

// CreateUser creates a user account
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.Context(), &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "User created successfully", user.ToResponse())
}

// UpdateUser changes a user's role or active flag
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), id, &input)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "User updated successfully", user.ToResponse())
}

// DeleteUser removes a user account; admins cannot delete themselves
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(c.Context(), id, middleware.CurrentUserID(c)); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ResetPassword replaces a user's password and revokes their sessions
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ResetPassword(c.Context(), id, req.NewPassword); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Password reset successfully", nil)
}

// Dashboard returns aggregate counts and recent activity
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetDashboard(c.Context())
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
