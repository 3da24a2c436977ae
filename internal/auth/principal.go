package auth

import (
	"context"
	"time"

	"civicreport/internal/model"
)

// Principal is the authenticated caller, resolved from storage per request.
// It never carries the password hash.
type Principal struct {
	ID            uint       `json:"user_id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Role          model.Role `json:"role"`
	ProfilePicURL *string    `json:"profile_pic_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PrincipalFromUser strips the sensitive fields from a stored user.
func PrincipalFromUser(u *model.User) Principal {
	return Principal{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		ProfilePicURL: u.ProfilePicURL,
		CreatedAt:     u.CreatedAt,
	}
}

type principalContextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFrom returns the principal attached by the auth guard, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
