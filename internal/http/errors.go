package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AppError is the single error shape recovered at the request boundary.
// Message is client-safe; Err is the internal cause and only ever
// reaches logs.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithMessage returns a copy with a different client-facing message;
// the base vars stay immutable.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithCause returns a copy carrying the internal cause.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// The taxonomy. InvalidCredentials is deliberately identical for an
// unknown username and a wrong password.
var (
	ErrValidation = &AppError{
		Code: "VALIDATION", Message: "Invalid request", HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidJSON = &AppError{
		Code: "INVALID_JSON", Message: "Request body must be valid JSON", HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidCredentials = &AppError{
		Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", HTTPStatus: http.StatusUnauthorized,
	}
	ErrInvalidToken = &AppError{
		Code: "INVALID_TOKEN", Message: "Invalid token", HTTPStatus: http.StatusUnauthorized,
	}
	ErrChallengeExpired = &AppError{
		Code: "CHALLENGE_EXPIRED", Message: "Challenge expired. Sign in again.", HTTPStatus: http.StatusUnauthorized,
	}
	// InvalidCode is 401 at login completion; TOTP management endpoints
	// use the 400 variant below.
	ErrInvalidCode = &AppError{
		Code: "INVALID_CODE", Message: "Invalid verification code", HTTPStatus: http.StatusUnauthorized,
	}
	ErrInvalidCodeBadRequest = &AppError{
		Code: "INVALID_CODE", Message: "Invalid or expired code", HTTPStatus: http.StatusBadRequest,
	}
	ErrAlreadyEnabled = &AppError{
		Code: "ALREADY_ENABLED", Message: "Two-factor authentication already enabled", HTTPStatus: http.StatusBadRequest,
	}
	ErrSetupRequired = &AppError{
		Code: "SETUP_REQUIRED", Message: "Generate a setup QR before verifying", HTTPStatus: http.StatusBadRequest,
	}
	ErrNotEnabled = &AppError{
		Code: "NOT_ENABLED", Message: "Two-factor authentication is not enabled", HTTPStatus: http.StatusBadRequest,
	}
	ErrTooManyAttempts = &AppError{
		Code: "TOO_MANY_ATTEMPTS", Message: "Too many attempts. Please wait before retrying.", HTTPStatus: http.StatusTooManyRequests,
	}
	ErrUnauthenticated = &AppError{
		Code: "UNAUTHENTICATED", Message: "Authentication required", HTTPStatus: http.StatusUnauthorized,
	}
	ErrForbidden = &AppError{
		Code: "FORBIDDEN", Message: "Insufficient permissions", HTTPStatus: http.StatusForbidden,
	}
	ErrConflict = &AppError{
		Code: "CONFLICT", Message: "Resource already exists", HTTPStatus: http.StatusConflict,
	}
	ErrNotFound = &AppError{
		Code: "NOT_FOUND", Message: "Not found", HTTPStatus: http.StatusNotFound,
	}
	ErrInternal = &AppError{
		Code: "INTERNAL", Message: "Unexpected error", HTTPStatus: http.StatusInternalServerError,
	}
)

// WriteError renders the error JSON. Internal causes and stack traces
// never reach the body.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{appErr.Code, appErr.Message})
}
