package auth

import (
	apperrors "civicreport/internal/errors"
)

// Reason is the internal cause of an authentication failure. It is logged,
// never sent to the client.
type Reason string

const (
	ReasonNoCredential     Reason = "no_credential"
	ReasonMalformed        Reason = "malformed"
	ReasonExpired          Reason = "expired"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonUnknownSubject   Reason = "unknown_subject"
)

// TokenError is returned by credential extraction, token verification and
// subject resolution. It matches apperrors.ErrCredentialsIncorrect.
type TokenError struct {
	Reason Reason
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "authentication failed: " + string(e.Reason)
	}
	return "authentication failed: " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error { return e.Err }

// Is makes every TokenError collapse to the same caller-visible outcome.
func (e *TokenError) Is(target error) bool {
	return target == apperrors.ErrCredentialsIncorrect
}

// ErrNoCredential is returned when neither the header nor the cookie carries a token.
var ErrNoCredential = &TokenError{Reason: ReasonNoCredential}
