package httpx

import (
	"errors"
	"net/http"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unexpected errors are reported generically without leaking detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrNotRegistered):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrInvalidCode),
		errors.Is(err, shared.ErrInvalidOTP),
		errors.Is(err, shared.ErrInvalidToken):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrTokenExpired), errors.Is(err, shared.ErrOTPExpired):
		Problem(w, http.StatusUnauthorized, "Expired", err.Error())
	case errors.Is(err, shared.ErrAccountInactive):
		Problem(w, http.StatusForbidden, "Account Inactive", err.Error())
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrResetNotAuthorized):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
