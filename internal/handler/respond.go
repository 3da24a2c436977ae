package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"civicreport/internal/auth"
	apperrors "civicreport/internal/errors"
)

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondError(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func invalidRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: msg,
		Code:  apperrors.CodeInvalidRequest,
	})
}

func validationFailed(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: err.Error(),
		Code:  apperrors.CodeValidation,
	})
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return validationFailed(err)
	}
	return nil
}

// principal returns the caller attached by the auth guard. Routes reaching
// here without one are misconfigured and fail closed.
func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(c.Request().Context())
	if !ok {
		return auth.Principal{}, respondError(apperrors.ErrCredentialsIncorrect)
	}
	return p, nil
}
