package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaptcha struct {
	ok  bool
	err error
}

func (f *fakeCaptcha) Verify(ctx context.Context, response string) (bool, error) {
	return f.ok, f.err
}

func newTestHandlers(t *testing.T, captcha CaptchaVerifier) (*Handlers, *Service, *fakeUserStore) {
	t.Helper()

	store := newFakeUserStore()
	svc := NewService(store, "test-secret")
	return NewHandlers(svc, captcha), svc, store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignupSuccess(t *testing.T) {
	h, svc, _ := newTestHandlers(t, &fakeCaptcha{ok: true})

	rec := postJSON(t, h.Signup, "/signup", map[string]string{
		"username": "alice",
		"password": "pw123",
		"captcha":  "valid",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp tokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "User successfully created.", resp.Message)
	require.NotEmpty(t, resp.Token)

	// The issued token must resolve back to the new user.
	claims, err := svc.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestSignupDuplicateUsername(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeCaptcha{ok: true})

	payload := map[string]string{
		"username": "alice",
		"password": "pw123",
		"captcha":  "valid",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, h.Signup, "/signup", payload).Code)

	// Same username again, different password: still a conflict.
	payload["password"] = "something-else"
	rec := postJSON(t, h.Signup, "/signup", payload)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Username already exists!", resp["error"])
	assert.Equal(t, float64(http.StatusConflict), resp["status"])
}

func TestSignupMissingFields(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeCaptcha{ok: true})

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"no password", map[string]string{"username": "alice", "captcha": "valid"}},
		{"no username", map[string]string{"password": "pw123", "captcha": "valid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Signup, "/signup", tt.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "Data not fulfilled. Expected Username and Password.", resp["error"])
		})
	}
}

func TestSignupCaptchaRefused(t *testing.T) {
	h, _, store := newTestHandlers(t, &fakeCaptcha{ok: false})

	rec := postJSON(t, h.Signup, "/signup", map[string]string{
		"username": "alice",
		"password": "pw123",
		"captcha":  "bogus",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "reCAPTCHA verification failed.", resp["error"])
	assert.Empty(t, store.users, "user must not be created when captcha fails")
}

func TestSignupCaptchaServiceDown(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeCaptcha{err: context.DeadlineExceeded})

	rec := postJSON(t, h.Signup, "/signup", map[string]string{
		"username": "alice",
		"password": "pw123",
		"captcha":  "valid",
	})

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestSignupFormEncoded(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeCaptcha{ok: true})

	form := url.Values{}
	form.Set("username", "bob")
	form.Set("password", "pw123")
	form.Set("g-recaptcha-response", "valid")

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeCaptcha{ok: true})

	signup := map[string]string{
		"username": "alice",
		"password": "pw123",
		"captcha":  "valid",
	}
	require.Equal(t, http.StatusCreated, postJSON(t, h.Signup, "/signup", signup).Code)

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(t, h.Login, "/login", map[string]string{
			"username": "alice",
			"password": "wrong",
			"captcha":  "valid",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Invalid User-credentials.", resp["error"])
		assert.NotContains(t, resp, "token")
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := postJSON(t, h.Login, "/login", map[string]string{
			"username": "nobody",
			"password": "pw123",
			"captcha":  "valid",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "User does not exist.", resp["error"])
	})

	t.Run("success", func(t *testing.T) {
		rec := postJSON(t, h.Login, "/login", map[string]string{
			"username": "alice",
			"password": "pw123",
			"captcha":  "valid",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var resp tokenResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Token)
	})
}

func TestVerifyTokenHandler(t *testing.T) {
	h, _, _ := newTestHandlers(t, &fakeCaptcha{ok: true})

	req := httptest.NewRequest(http.MethodPost, "/verifyToken", nil)
	rec := httptest.NewRecorder()
	h.VerifyToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp verifyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.IsValid)
	assert.Equal(t, "Token Valid", resp.Message)
}

func TestGetUserDataRedactsPassword(t *testing.T) {
	h, svc, store := newTestHandlers(t, &fakeCaptcha{ok: true})

	_, err := svc.Register(context.Background(), "alice", "pw123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/getUserData", nil)
	ctx := context.WithValue(req.Context(), UserContextKey, store.users["alice"])
	rec := httptest.NewRecorder()
	h.GetUserData(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp["username"])
	assert.NotContains(t, resp, "password")
}
