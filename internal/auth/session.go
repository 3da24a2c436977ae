package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Channel is the transport a client keeps its session on.
type Channel int

const (
	ChannelWeb Channel = iota
	ChannelMobile
)

func (ch Channel) String() string {
	if ch == ChannelMobile {
		return "mobile"
	}
	return "web"
}

// mobileMarkers identify the Flutter/Dart runtime in a User-Agent.
var mobileMarkers = []string{"dart", "flutter"}

// TokenResponse is the signup/signin body for mobile clients.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse is a confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionAdapter encodes auth responses for the calling channel.
type SessionAdapter struct {
	cookieName string
	production bool
	ttl        time.Duration
	now        func() time.Time
}

// NewSessionAdapter creates an adapter. production switches the cookie to
// Secure and SameSite=Strict.
func NewSessionAdapter(cookieName string, production bool) *SessionAdapter {
	if cookieName == "" {
		cookieName = SessionCookieName
	}
	return &SessionAdapter{
		cookieName: cookieName,
		production: production,
		ttl:        AccessTokenTTL,
		now:        time.Now,
	}
}

// Classify returns ChannelMobile when the client identifier carries a mobile
// runtime marker.
func (a *SessionAdapter) Classify(userAgent string) Channel {
	ua := strings.ToLower(userAgent)
	for _, marker := range mobileMarkers {
		if strings.Contains(ua, marker) {
			return ChannelMobile
		}
	}
	return ChannelWeb
}

// baseCookie holds the attributes shared by set and clear. Clearing only
// works when path, HttpOnly, Secure and SameSite match the original cookie.
func (a *SessionAdapter) baseCookie() *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if a.production {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     a.cookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.production,
		SameSite: sameSite,
	}
}

// SessionCookie builds the cookie carrying token for the token lifetime.
func (a *SessionAdapter) SessionCookie(token string) *http.Cookie {
	c := a.baseCookie()
	c.Value = token
	c.MaxAge = int(a.ttl / time.Second)
	c.Expires = a.now().Add(a.ttl)
	return c
}

// ClearCookie builds the directive that removes the session cookie.
func (a *SessionAdapter) ClearCookie() *http.Cookie {
	c := a.baseCookie()
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

// SignedIn writes the signup/signin response: the raw token for mobile
// clients, an HttpOnly cookie plus message for web clients.
func (a *SessionAdapter) SignedIn(c echo.Context, status int, token, message string) error {
	if a.Classify(c.Request().UserAgent()) == ChannelMobile {
		return c.JSON(status, TokenResponse{AccessToken: token})
	}
	c.SetCookie(a.SessionCookie(token))
	return c.JSON(status, MessageResponse{Message: message})
}

// LoggedOut writes the logout response. Tokens are stateless, so mobile
// clients only get a confirmation.
func (a *SessionAdapter) LoggedOut(c echo.Context, message string) error {
	if a.Classify(c.Request().UserAgent()) == ChannelWeb {
		c.SetCookie(a.ClearCookie())
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: message})
}
