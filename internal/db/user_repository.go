package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUsernameExists = errors.New("username already exists")

// User is a row of the users table. Password holds the bcrypt hash; the
// readable fields are derived from the stored epoch values on read.
type User struct {
	UserIdx           int64   `json:"user_idx"`
	Username          string  `json:"username"`
	Password          string  `json:"password,omitempty"`
	CreatedOn         float64 `json:"created_on"`
	UpdatedOn         float64 `json:"updated_on"`
	ReadableCreatedOn string  `json:"readable_created_on"`
	ReadableUpdatedOn string  `json:"readable_updated_on"`
}

// Public returns a copy safe to hand back to clients.
func (u *User) Public() *User {
	pub := *u
	pub.Password = ""
	return &pub
}

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, hashedPassword string) (*User, error) {
	query := `
		INSERT INTO users (username, password, created_on, updated_on)
		VALUES ($1, $2, $3, $4)
		RETURNING user_idx
	`

	now := NowEpoch()
	user := &User{
		Username:  username,
		Password:  hashedPassword,
		CreatedOn: now,
		UpdatedOn: now,
	}

	err := r.db.QueryRowContext(ctx, query,
		username, hashedPassword, now, now,
	).Scan(&user.UserIdx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT user_idx, username, password, created_on, updated_on
		FROM users
		WHERE username = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.UserIdx, &user.Username, &user.Password, &user.CreatedOn, &user.UpdatedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.ReadableCreatedOn = FormatEpoch(user.CreatedOn)
	user.ReadableUpdatedOn = FormatEpoch(user.UpdatedOn)
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
