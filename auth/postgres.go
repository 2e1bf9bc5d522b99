package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cameronmore/go-courses/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type PostgresStore struct {
	sqlStore
}

var postgresQueries = queries{
	insertUser: `
		INSERT INTO users (user_id, username, email, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5)
		`,
	userById:    `SELECT user_id, username, email, hashed_password, created_at FROM users WHERE user_id = $1`,
	userByEmail: `SELECT user_id, username, email, hashed_password, created_at FROM users WHERE email = $1`,
	userExists:  `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
	userCourses: `SELECT course_id FROM registrations WHERE user_id = $1 ORDER BY registered_at, course_id`,
	addCourse: `
		INSERT INTO registrations (user_id, course_id, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id) DO NOTHING
		`,
	removeCourse: `DELETE FROM registrations WHERE user_id = $1 AND course_id = $2`,
}

// Returns a new Postgres backed user store over a pgx database/sql handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{sqlStore{
		DB:                db,
		q:                 postgresQueries,
		isUniqueViolation: isPostgresUniqueViolation,
		newId:             newULID,
		now:               time.Now,
	}}
}

func (pg *PostgresStore) Migrate(ctx context.Context) error {
	return migrations.Up(ctx, pg.DB, "pgx")
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
