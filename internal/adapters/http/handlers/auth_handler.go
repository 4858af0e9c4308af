package handlers

import (
	"errors"

	"relic-ledger/internal/adapters/http/middleware"
	"relic-ledger/internal/core/domain"
	"relic-ledger/internal/core/services"
	"relic-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a token pair
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, domain.ErrUserInactive):
			return response.Forbidden(c, "Account is deactivated")
		default:
			return response.FromDomainError(c, err)
		}
	}

	return response.Success(c, "Login successful", result)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	user, err := h.authService.GetCurrentUser(c.Context(), userID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// VerifyToken validates the presented access token
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return response.Unauthorized(c, "Access token required")
	}

	user, err := h.authService.VerifyToken(c.Context(), token)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Token is valid", fiber.Map{
		"valid": true,
		"user":  user.ToResponse(),
	})
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	result, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Token refreshed successfully", result)
}

// Logout revokes the presented refresh token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Logged out successfully", nil)
}
