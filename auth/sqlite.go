package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cameronmore/go-courses/migrations"
	"github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	sqlStore
}

var sqliteQueries = queries{
	insertUser: `
		INSERT INTO users (user_id, username, email, hashed_password, created_at)
		VALUES (?, ?, ?, ?, ?)
		`,
	userById:    `SELECT user_id, username, email, hashed_password, created_at FROM users WHERE user_id = ?`,
	userByEmail: `SELECT user_id, username, email, hashed_password, created_at FROM users WHERE email = ?`,
	userExists:  `SELECT EXISTS (SELECT 1 FROM users WHERE username = ? OR email = ?)`,
	userCourses: `SELECT course_id FROM registrations WHERE user_id = ? ORDER BY registered_at, course_id`,
	addCourse: `
		INSERT INTO registrations (user_id, course_id, registered_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, course_id) DO NOTHING
		`,
	removeCourse: `DELETE FROM registrations WHERE user_id = ? AND course_id = ?`,
}

// Returns a new SQLite backed user store. Call Migrate before first use.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{sqlStore{
		DB:                db,
		q:                 sqliteQueries,
		isUniqueViolation: isSQLiteUniqueViolation,
		newId:             newULID,
		now:               time.Now,
	}}
}

// Creates the users and registrations tables if they don't exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.Up(ctx, s.DB, "sqlite3")
}

func isSQLiteUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
