package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

func New(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_idx SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_on DOUBLE PRECISION NOT NULL,
		updated_on DOUBLE PRECISION NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS notes (
		note_idx SERIAL PRIMARY KEY,
		note_title VARCHAR(255) NOT NULL,
		note_text TEXT NOT NULL,
		created_on DOUBLE PRECISION NOT NULL,
		updated_on DOUBLE PRECISION NOT NULL,
		user_idx INTEGER NOT NULL REFERENCES users(user_idx) ON DELETE CASCADE,
		tag_idx INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_notes_user_idx ON notes(user_idx);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
