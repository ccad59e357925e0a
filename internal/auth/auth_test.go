package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notedhq/noted/internal/db"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users map[string]*db.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*db.User{}}
}

func (f *fakeUserStore) Create(ctx context.Context, username, hashedPassword string) (*db.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.users[username]; ok {
		return nil, db.ErrUsernameExists
	}
	user := &db.User{
		UserIdx:   int64(len(f.users) + 1),
		Username:  username,
		Password:  hashedPassword,
		CreatedOn: db.NowEpoch(),
		UpdatedOn: db.NowEpoch(),
	}
	f.users[username] = user
	return user, nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[username]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !CheckPassword(hash, password) {
		t.Error("password check failed for correct password")
	}

	if CheckPassword(hash, "wrongpassword") {
		t.Error("password check should fail for wrong password")
	}
}

func TestIssueAndValidate(t *testing.T) {
	svc := NewService(newFakeUserStore(), "test-secret")

	before := time.Now().UTC()
	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if token == "" {
		t.Fatal("issued token is empty")
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("claims resolve to %q, want alice", claims.Username)
	}

	// Validation must be idempotent: same token, same claims.
	again, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("second validation failed: %v", err)
	}
	if again.Username != claims.Username ||
		!again.ExpiresAt.Time.Equal(claims.ExpiresAt.Time) ||
		!again.IssuedAt.Time.Equal(claims.IssuedAt.Time) {
		t.Error("validating the same token twice yielded different claims")
	}

	wantExp := before.Add(TokenExpiry)
	if d := claims.ExpiresAt.Time.Sub(wantExp); d < -time.Minute || d > time.Minute {
		t.Errorf("exp = %v, want about %v", claims.ExpiresAt.Time, wantExp)
	}
	wantIat := before.Add(IssuedAtOffset)
	if d := claims.IssuedAt.Time.Sub(wantIat); d < -time.Minute || d > time.Minute {
		t.Errorf("iat = %v, want about %v", claims.IssuedAt.Time, wantIat)
	}
}

func TestValidateExpired(t *testing.T) {
	secret := "test-secret"
	svc := NewService(newFakeUserStore(), secret)

	expired := signTestToken(t, secret, "bob", time.Now().Add(-time.Hour))

	_, err := svc.Validate(expired)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token yields %v, want ErrTokenExpired", err)
	}
}

func TestValidateBadTokens(t *testing.T) {
	svc := NewService(newFakeUserStore(), "test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", signTestToken(t, "other-secret", "bob", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate(%q) = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	if _, err := svc.Register(context.Background(), "alice", "pw123"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), "alice", "otherpassword")
	if !errors.Is(err, db.ErrUsernameExists) {
		t.Fatalf("duplicate register yields %v, want ErrUsernameExists", err)
	}
}

func TestRegisterThenValidate(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	token, err := svc.Register(context.Background(), "carol", "pw123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validating fresh signup token failed: %v", err)
	}
	if claims.Username != "carol" {
		t.Errorf("token resolves to %q, want carol", claims.Username)
	}

	stored := store.users["carol"]
	if stored == nil {
		t.Fatal("user was not stored")
	}
	if stored.Password == "pw123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("pw123")); err != nil {
		t.Error("stored hash does not verify against the password")
	}
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, "test-secret")

	if _, err := svc.Register(context.Background(), "dave", "correct-horse"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "dave", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password yields %v, want ErrInvalidCredentials", err)
	}

	if _, err := svc.Login(context.Background(), "nobody", "whatever"); !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("unknown user yields %v, want ErrUserNotFound", err)
	}

	token, err := svc.Login(context.Background(), "dave", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validating login token failed: %v", err)
	}
	if claims.Username != "dave" {
		t.Errorf("login token resolves to %q, want dave", claims.Username)
	}
}

// signTestToken builds a token outside the service so expiry and secret
// can be controlled.
func signTestToken(t *testing.T, secret, username string, expiresAt time.Time) string {
	t.Helper()

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(IssuedAtOffset)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}
