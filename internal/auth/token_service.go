package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "civicreport/internal/errors"
	"civicreport/internal/model"
)

// AccessTokenTTL is the fixed lifetime of an access token.
const AccessTokenTTL = 15 * time.Minute

// Claims represents JWT claims. The subject is the numeric user id; it
// shadows the string "sub" of the embedded registered claims.
type Claims struct {
	SubjectID uint       `json:"sub"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty signing secret: %w", apperrors.ErrConfigFatal)
	}
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue signs a token for the subject valid for AccessTokenTTL.
func (s *TokenService) Issue(subjectID uint, email string, role model.Role) (string, error) {
	now := s.now()
	claims := &Claims{
		SubjectID: subjectID,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a raw token and returns its claims. Every failure is a
// *TokenError, which matches ErrCredentialsIncorrect.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	token, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, &TokenError{Reason: reasonFor(err), Err: err}
	}
	if !token.Valid {
		return nil, &TokenError{Reason: ReasonMalformed, Err: errors.New("token not valid")}
	}
	if claims.ExpiresAt == nil {
		return nil, &TokenError{Reason: ReasonMalformed, Err: errors.New("missing exp claim")}
	}
	if claims.SubjectID == 0 {
		return nil, &TokenError{Reason: ReasonMalformed, Err: errors.New("missing sub claim")}
	}

	return claims, nil
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonInvalidSignature
	default:
		return ReasonMalformed
	}
}
