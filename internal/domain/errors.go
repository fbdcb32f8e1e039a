package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

// Authentication taxonomy. Unknown identifier and wrong password share
// ErrInvalidCredentials so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountSuspended    = errors.New("account is suspended")
	ErrInvalidOrExpiredOtp = errors.New("invalid or expired otp")
	ErrOtpResendThrottled  = errors.New("otp resend throttled")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrTokenExpired        = errors.New("token has expired")
	ErrWrongTokenKind      = errors.New("wrong token kind")
	ErrTokenRevoked        = errors.New("token is revoked or unknown")
	ErrRoleNotFound        = errors.New("role not found")
)
