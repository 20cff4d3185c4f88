package shared

import "errors"

// Operational errors raised by the auth core and the storefront services.
// Each maps to a client-facing status in platform/httpx; anything else is
// treated as an unexpected server error and surfaced without detail.
var (
	// ErrBadRequest indicates missing or malformed input.
	ErrBadRequest = errors.New("bad request")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("duplicate entry")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrNotRegistered indicates a login attempt for an unknown email.
	ErrNotRegistered = errors.New("email not registered")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidCode indicates an unrecognised email verification code.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrInvalidOTP indicates an OTP mismatch.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPExpired indicates the stored OTP is past its expiry.
	ErrOTPExpired = errors.New("otp expired")
	// ErrInvalidToken indicates a missing, malformed or badly signed token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrAccountInactive indicates a login against a non-active account.
	ErrAccountInactive = errors.New("account is not active")
	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrResetNotAuthorized indicates a password reset attempted without a
	// preceding OTP verification.
	ErrResetNotAuthorized = errors.New("password reset not authorized")
)
