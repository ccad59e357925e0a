package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/notedhq/noted/internal/db"
	apperrors "github.com/notedhq/noted/internal/errors"
	"github.com/notedhq/noted/internal/logger"
)

// CaptchaVerifier checks a client's challenge response with the external
// verification service.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response string) (bool, error)
}

// credentials is a signup/login payload. The rendered pages post forms;
// API clients send JSON. Both decode into this.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Captcha  string `json:"captcha"`
}

type tokenResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
}

type verifyResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	IsValid bool   `json:"isValid"`
}

type Handlers struct {
	authService *Service
	captcha     CaptchaVerifier
	log         *logger.Logger
}

func NewHandlers(authService *Service, captcha CaptchaVerifier) *Handlers {
	return &Handlers{
		authService: authService,
		captcha:     captcha,
		log:         logger.Default().WithComponent("auth"),
	}
}

// Signup registers a new user. CAPTCHA is checked before anything else;
// a duplicate username is a conflict; anything unexpected falls through
// to the 501 catch-all the API has always used.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	creds, err := decodeCredentials(r)
	if err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	ok, err := h.captcha.Verify(r.Context(), creds.Captcha)
	if err != nil {
		serviceErr := apperrors.CaptchaServiceError(err.Error()).WithCause(err)
		h.log.Error(r.Context(), "captcha verification failed", serviceErr)
		apperrors.WriteError(w, requestID, serviceErr)
		return
	}
	if !ok {
		apperrors.WriteError(w, requestID, apperrors.CaptchaFailed())
		return
	}

	if creds.Username == "" || creds.Password == "" {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("Data not fulfilled. Expected Username and Password."))
		return
	}

	token, err := h.authService.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, db.ErrUsernameExists) {
			apperrors.WriteError(w, requestID, apperrors.UsernameExists())
			return
		}
		h.log.Error(r.Context(), "signup failed", err, map[string]interface{}{
			"username": creds.Username,
		})
		apperrors.WriteError(w, requestID, apperrors.NotImplemented(err.Error()))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusCreated, tokenResponse{
		Status:  http.StatusCreated,
		Message: "User successfully created.",
		Token:   token,
	})
}

// Login authenticates an existing user and issues a session token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	creds, err := decodeCredentials(r)
	if err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	ok, err := h.captcha.Verify(r.Context(), creds.Captcha)
	if err != nil {
		serviceErr := apperrors.CaptchaServiceError(err.Error()).WithCause(err)
		h.log.Error(r.Context(), "captcha verification failed", serviceErr)
		apperrors.WriteError(w, requestID, serviceErr)
		return
	}
	if !ok {
		apperrors.WriteError(w, requestID, apperrors.CaptchaFailed())
		return
	}

	if creds.Username == "" || creds.Password == "" {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("Data not fulfilled. Expected Username and Password."))
		return
	}

	token, err := h.authService.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrUserNotFound):
			apperrors.WriteError(w, requestID, apperrors.Unauthorized("User does not exist."))
		case errors.Is(err, ErrInvalidCredentials):
			apperrors.WriteError(w, requestID, apperrors.InvalidCredentials())
		default:
			h.log.Error(r.Context(), "login failed", err, map[string]interface{}{
				"username": creds.Username,
			})
			apperrors.WriteError(w, requestID, apperrors.NotImplemented(err.Error()))
		}
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusCreated, tokenResponse{
		Status: http.StatusCreated,
		Token:  token,
	})
}

// VerifyToken reports token validity. The guard has already rejected
// everything invalid, so reaching here means valid.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	apperrors.WriteJSON(w, requestID, http.StatusOK, verifyResponse{
		Status:  http.StatusOK,
		Message: "Token Valid",
		IsValid: true,
	})
}

// GetUserData returns the authenticated user's record with the password
// hash redacted.
func (h *Handlers) GetUserData(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	user := GetUserFromContext(r.Context())
	if user == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthorized("User not found"))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, user.Public())
}

func decodeCredentials(r *http.Request) (*credentials, error) {
	creds := &credentials{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(creds); err != nil {
			return nil, err
		}
		return creds, nil
	}

	creds.Username = r.FormValue("username")
	creds.Password = r.FormValue("password")
	creds.Captcha = r.FormValue("g-recaptcha-response")
	if creds.Captcha == "" {
		creds.Captcha = r.FormValue("captcha")
	}
	return creds, nil
}
