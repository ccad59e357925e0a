package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notedhq/noted/internal/db"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenExpiry = 48 * time.Hour
	BcryptCost  = 12

	// IssuedAtOffset shifts the iat claim the same way row timestamps are
	// shifted (see db.ClockOffset). Issued tokens must keep agreeing with
	// what deployed clients already expect, so the claim stays offset.
	IssuedAtOffset = db.ClockOffset
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

// Claims is the session token payload. The subject lives in the legacy
// "user" field rather than RegisteredClaims.Subject.
type Claims struct {
	Username string `json:"user"`
	jwt.RegisteredClaims
}

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, username, hashedPassword string) (*db.User, error)
	GetByUsername(ctx context.Context, username string) (*db.User, error)
}

type Service struct {
	users     UserStore
	jwtSecret []byte
}

func NewService(users UserStore, jwtSecret string) *Service {
	return &Service{
		users:     users,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register hashes the password, stores the user and issues a session token.
// db.ErrUsernameExists passes through for the handler to translate.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	if _, err := s.users.Create(ctx, username, passwordHash); err != nil {
		return "", err
	}

	return s.Issue(username)
}

// Login verifies the credentials and issues a session token.
// db.ErrUserNotFound passes through; a password mismatch is
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if !CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}

	return s.Issue(username)
}

// Issue signs a session token for the given username.
func (s *Service) Issue(username string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now.Add(IssuedAtOffset)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Validate checks signature and expiry and returns the decoded claims.
// Expiry failures map to ErrTokenExpired, every other token defect to
// ErrInvalidToken; anything outside the token-validation family is
// returned as-is for the guard to treat as an internal failure. nbf, iss
// and aud are not checked, matching the clients in the field.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidClaims),
			errors.Is(err, ErrInvalidToken):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserByUsername resolves the full user record behind a validated claim.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
