package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	apperrors "civicreport/internal/errors"
	"civicreport/internal/model"
)

// UserLookup is the persistence seam the guard resolves subjects through.
// A missing user must be reported as apperrors.ErrNotFound.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// Guard authenticates requests.
type Guard struct {
	extractor *CredentialExtractor
	tokens    *TokenService
	users     UserLookup
	log       zerolog.Logger
}

// NewGuard creates the authentication guard.
func NewGuard(extractor *CredentialExtractor, tokens *TokenService, users UserLookup, log zerolog.Logger) *Guard {
	return &Guard{
		extractor: extractor,
		tokens:    tokens,
		users:     users,
		log:       log.With().Str("component", "auth_guard").Logger(),
	}
}

// Resolve runs extraction, verification and subject lookup. The token alone
// is not trusted: a deleted account fails even with a valid signature.
func (g *Guard) Resolve(r *http.Request) (Principal, error) {
	raw, err := g.extractor.Extract(r)
	if err != nil {
		return Principal{}, err
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return Principal{}, err
	}

	user, err := g.users.FindByID(r.Context(), claims.SubjectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return Principal{}, &TokenError{Reason: ReasonUnknownSubject, Err: err}
		}
		return Principal{}, fmt.Errorf("resolve subject %d: %w", claims.SubjectID, err)
	}

	return PrincipalFromUser(user), nil
}

// Authenticate is the authentication middleware. On success the principal is
// attached to the request context; on failure the handler never runs.
func (g *Guard) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		principal, err := g.Resolve(req)
		if err != nil {
			var tokenErr *TokenError
			if errors.As(err, &tokenErr) {
				g.log.Debug().Str("reason", string(tokenErr.Reason)).Str("path", req.URL.Path).Msg("authentication rejected")
			} else {
				g.log.Error().Err(err).Str("path", req.URL.Path).Msg("authentication lookup failed")
			}
			return reject(err)
		}

		c.SetRequest(req.WithContext(WithPrincipal(req.Context(), principal)))
		return next(c)
	}
}

// Protect returns the ordered guard chain for a route: authentication, then
// role authorization when roles are given.
func (g *Guard) Protect(roles ...model.Role) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{g.Authenticate}
	if len(roles) > 0 {
		chain = append(chain, RequireRoles(roles...))
	}
	return chain
}

// RoleSet is the set of roles a route accepts.
type RoleSet map[model.Role]struct{}

// NewRoleSet builds a RoleSet. ADMIN is not implied by any other role.
func NewRoleSet(roles ...model.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Authorize passes iff a principal is present and its role is in required.
// It fails closed when no principal was attached.
func Authorize(ctx context.Context, required RoleSet) error {
	principal, ok := PrincipalFrom(ctx)
	if !ok {
		return apperrors.ErrAccessDenied
	}
	if _, ok := required[principal.Role]; !ok {
		return apperrors.ErrAccessDenied
	}
	return nil
}

// RequireRoles is the role authorization middleware.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	required := NewRoleSet(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := Authorize(c.Request().Context(), required); err != nil {
				return reject(err)
			}
			return next(c)
		}
	}
}

func reject(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
