package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"civicreport/internal/auth"
	"civicreport/internal/service"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// EditUserRequest lists the editable profile fields. Omitted fields are kept.
type EditUserRequest struct {
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Username      *string `json:"username,omitempty" validate:"omitempty,min=3"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty"`
	Password      *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.Principal
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Stats godoc
// @Summary Report counters of the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/my-stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	stats, err := h.userService.Stats(c.Request().Context(), p.ID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Edit godoc
// @Summary Edit the current user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EditUserRequest true "Fields to change"
// @Success 200 {object} auth.Principal
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [patch]
func (h *UserHandler) Edit(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req EditUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Edit(c.Request().Context(), p.ID, service.EditUserInput{
		Email:         req.Email,
		Username:      req.Username,
		ProfilePicURL: req.ProfilePicURL,
		Password:      req.Password,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, auth.PrincipalFromUser(user))
}
