package handler

import (
	"quizhub/internal/dto"
	"quizhub/internal/middleware"
	"quizhub/internal/service"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the signed-in user's profile and history.
type UserHandler struct {
	userService service.UserService
	validator   *validation.Validator
}

func NewUserHandler(userService service.UserService, validator *validation.Validator) *UserHandler {
	return &UserHandler{userService: userService, validator: validator}
}

// GetMyProfile godoc
// @Summary Get my profile
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	resp, err := h.userService.GetProfile(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateMyProfile godoc
// @Summary Update my profile
// @Description Changes name, email or password. Changing the password requires current_password.
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param profile body dto.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} dto.UserProfileResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateMyProfile(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.userService.UpdateProfile(c.UserContext(), identity, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetMyAttempts godoc
// @Summary List my attempts
// @Description Newest first
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Page size" default(10)
// @Param page query int false "Page number" default(1)
// @Success 200 {object} dto.UserAttemptsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me/attempts [get]
func (h *UserHandler) GetMyAttempts(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	resp, err := h.userService.ListAttempts(c.UserContext(), identity, middleware.PaginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
