package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"civicreport/internal/auth"
	"civicreport/internal/model"
	"civicreport/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	sessions    *auth.SessionAdapter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessions *auth.SessionAdapter) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Username      string  `json:"username" validate:"required,min=3"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty"`
	Role          string  `json:"role,omitempty" validate:"omitempty,oneof=CITIZEN ADMIN"`
}

// SigninRequest represents a user login request.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup godoc
// @Summary Register a new user
// @Description Mobile clients (Dart/Flutter user agents) receive the token in the body; web clients receive an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} auth.TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Signup(c.Request().Context(), service.SignupInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		Role:          model.Role(req.Role),
		ProfilePicURL: req.ProfilePicURL,
	})
	if err != nil {
		return respondError(err)
	}

	return h.sessions.SignedIn(c, http.StatusCreated, token, "user registered successfully")
}

// Signin godoc
// @Summary Sign in
// @Description Mobile clients (Dart/Flutter user agents) receive the token in the body; web clients receive an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Login credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err)
	}

	return h.sessions.SignedIn(c, http.StatusOK, token, "signed in successfully")
}

// Logout godoc
// @Summary Logout
// @Description Clears the session cookie for web clients. Tokens stay valid until they expire.
// @Tags auth
// @Produce json
// @Success 200 {object} auth.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return h.sessions.LoggedOut(c, "logged out successfully")
}
