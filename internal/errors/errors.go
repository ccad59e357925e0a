package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCategory groups errors by who is at fault: the client, this service,
// an upstream dependency, or the auth guard. The category picks the wire
// envelope in WriteError and flows into log entries.
type ErrorCategory string

const (
	CategoryClient   ErrorCategory = "client"
	CategoryServer   ErrorCategory = "server"
	CategoryExternal ErrorCategory = "external"
	CategoryAuth     ErrorCategory = "auth"
)

const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"

	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeCaptchaFailed      = "CAPTCHA_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"

	CodeInternalError = "INTERNAL_ERROR"
	CodeDatabaseError = "DATABASE_ERROR"

	CodeCaptchaError = "CAPTCHA_SERVICE_ERROR"
)

// AppError is a structured application error.
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Category   ErrorCategory `json:"-"`
	HTTPStatus int           `json:"-"`
	Cause      error         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// ErrorResponse is the JSON structure returned to clients. The status code
// is repeated in the body so script clients don't have to inspect headers.
type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// AuthErrorResponse is the envelope the auth guard writes when it refuses a
// request. The isValid flag is part of the verifyToken contract, so every
// guard refusal carries it.
type AuthErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	IsValid bool   `json:"isValid"`
}

// New creates a new AppError
func New(code string, message string, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Category:   category,
		HTTPStatus: httpStatus,
	}
}

// Client error constructors

func BadRequest(message string) *AppError {
	return New(CodeInvalidRequest, message, CategoryClient, http.StatusBadRequest)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message, CategoryClient, http.StatusBadRequest)
}

func CaptchaFailed() *AppError {
	return New(CodeCaptchaFailed, "reCAPTCHA verification failed.", CategoryClient, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, CategoryClient, http.StatusUnauthorized)
}

func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid User-credentials.", CategoryClient, http.StatusUnauthorized)
}

func UsernameExists() *AppError {
	return New(CodeUsernameExists, "Username already exists!", CategoryClient, http.StatusConflict)
}

// Guard error constructors. These carry CategoryAuth so WriteError renders
// the guard envelope instead of the plain one.

func InvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid token", CategoryAuth, http.StatusUnauthorized)
}

func TokenExpired() *AppError {
	return New(CodeTokenExpired, "Token has expired", CategoryAuth, http.StatusUnauthorized)
}

// UserNotFound is the guard refusal for a valid token whose user no longer
// exists. The login path uses Unauthorized("User does not exist.") instead;
// the two messages are distinct on the wire.
func UserNotFound() *AppError {
	return New(CodeUserNotFound, "User not found", CategoryAuth, http.StatusUnauthorized)
}

// GuardFailure wraps an unexpected error surfacing inside the auth guard.
func GuardFailure(err error) *AppError {
	return New(CodeInternalError, fmt.Sprintf("An error occurred: %v", err), CategoryAuth, http.StatusInternalServerError).WithCause(err)
}

// Server error constructors

func InternalError(message string) *AppError {
	return New(CodeInternalError, message, CategoryServer, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message, CategoryServer, http.StatusInternalServerError)
}

// NotImplemented is the residual handler-level catch-all. Unexpected
// failures inside signup/login surface here with the 501 status the API
// has always used.
func NotImplemented(message string) *AppError {
	return New(CodeInternalError, message, CategoryServer, http.StatusNotImplemented)
}

// CaptchaServiceError reports a failure talking to the external CAPTCHA
// verifier. It lands on the same 501 as the catch-all but keeps its own
// code and category for logging.
func CaptchaServiceError(message string) *AppError {
	return New(CodeCaptchaError, message, CategoryExternal, http.StatusNotImplemented)
}

// WriteError writes err to the response. AppErrors pick their envelope by
// category (auth errors get the guard envelope); anything else is wrapped
// as a 500.
func WriteError(w http.ResponseWriter, requestID string, err error) {
	appErr, ok := err.(*AppError)
	if !ok {
		appErr = InternalError("an unexpected error occurred").WithCause(err)
	}

	var body any
	if appErr.Category == CategoryAuth {
		body = AuthErrorResponse{
			Status:  appErr.HTTPStatus,
			Message: appErr.Message,
			IsValid: false,
		}
	} else {
		body = ErrorResponse{
			Status: appErr.HTTPStatus,
			Error:  appErr.Message,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(RequestIDHeader, requestID)
	}
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(body)
}

// WriteJSON writes a JSON response with the request ID header.
func WriteJSON(w http.ResponseWriter, requestID string, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(RequestIDHeader, requestID)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
