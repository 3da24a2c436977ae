package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"civicreport/internal/auth"
	"civicreport/internal/handler"
	"civicreport/internal/logger"
	"civicreport/internal/model"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Incident *handler.IncidentHandler
}

// Register wires routes and middleware. Protected routes carry their guard
// chain explicitly: authentication first, then role authorization.
func Register(e *echo.Echo, log zerolog.Logger, guard *auth.Guard, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log, 0))
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", h.Auth.Signup)
	api.POST("/auth/signin", h.Auth.Signin)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/incidents/:id", h.Incident.Get)

	// Authenticated routes
	authenticated := guard.Protect()
	api.GET("/users/me", h.User.Me, authenticated...)
	api.GET("/users/my-stats", h.User.Stats, authenticated...)
	api.PATCH("/users", h.User.Edit, authenticated...)
	api.POST("/incidents", h.Incident.Create, authenticated...)
	api.DELETE("/incidents/:id", h.Incident.Delete, authenticated...)

	// Admin routes
	api.PATCH("/incidents/:id/status", h.Incident.UpdateStatus, guard.Protect(model.RoleAdmin)...)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
