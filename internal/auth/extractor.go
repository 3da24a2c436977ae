package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the access token for web clients.
const SessionCookieName = "access_token"

const bearerPrefix = "bearer "

// CredentialExtractor resolves a raw token from the request, trying the
// bearer header first and the session cookie second.
type CredentialExtractor struct {
	cookieName string
}

// NewCredentialExtractor creates an extractor reading the given cookie name.
func NewCredentialExtractor(cookieName string) *CredentialExtractor {
	if cookieName == "" {
		cookieName = SessionCookieName
	}
	return &CredentialExtractor{cookieName: cookieName}
}

// Extract returns the first non-empty token or ErrNoCredential.
func (x *CredentialExtractor) Extract(r *http.Request) (string, error) {
	if token := bearerToken(r.Header.Get(echo.HeaderAuthorization)); token != "" {
		return token, nil
	}
	if cookie, err := r.Cookie(x.cookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token, nil
		}
	}
	return "", ErrNoCredential
}

// bearerToken parses "Bearer <token>" with a case-insensitive scheme.
func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
