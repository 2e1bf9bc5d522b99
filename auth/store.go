package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cameronmore/go-courses/sessions"
	"github.com/oklog/ulid/v2"
)

// queries holds the dialect specific statements of a sql backed store.
type queries struct {
	insertUser   string
	userById     string
	userByEmail  string
	userExists   string
	userCourses  string
	addCourse    string
	removeCourse string
}

// sqlStore implements sessions.UserStore on database/sql. Dialects differ only
// in their statements and in how a unique violation is reported.
type sqlStore struct {
	DB                *sql.DB
	q                 queries
	isUniqueViolation func(error) bool
	newId             func() string
	now               func() time.Time
}

func newULID() string {
	return ulid.Make().String()
}

func (s *sqlStore) CreateUser(ctx context.Context, u sessions.User) (sessions.User, error) {
	u.UserId = s.newId()
	u.CreatedAt = s.now().UTC()
	u.RegisteredCourses = []string{}

	_, err := s.DB.ExecContext(ctx, s.q.insertUser, u.UserId, u.Username, u.Email, u.HashedPassword, u.CreatedAt)
	if err != nil {
		if s.isUniqueViolation(err) {
			return sessions.User{}, sessions.ErrUserExists
		}
		return sessions.User{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (s *sqlStore) LoadUserByUserId(ctx context.Context, id string) (sessions.User, error) {
	return s.loadUser(ctx, s.q.userById, id)
}

func (s *sqlStore) LoadUserByEmail(ctx context.Context, email string) (sessions.User, error) {
	return s.loadUser(ctx, s.q.userByEmail, email)
}

func (s *sqlStore) loadUser(ctx context.Context, query string, arg string) (sessions.User, error) {
	var u sessions.User
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(&u.UserId, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sessions.User{}, sessions.ErrUserNotFound
	} else if err != nil {
		return sessions.User{}, fmt.Errorf("db error: %w", err)
	}

	courses, err := s.userCourses(ctx, u.UserId)
	if err != nil {
		return sessions.User{}, err
	}
	u.RegisteredCourses = courses
	return u, nil
}

func (s *sqlStore) userCourses(ctx context.Context, userId string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.q.userCourses, userId)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	courses := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		courses = append(courses, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return courses, nil
}

func (s *sqlStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	if err := s.DB.QueryRowContext(ctx, s.q.userExists, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// AddCourse inserts the registration unless it already exists.
func (s *sqlStore) AddCourse(ctx context.Context, userId, courseId string) error {
	if _, err := s.DB.ExecContext(ctx, s.q.addCourse, userId, courseId, s.now().UTC()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RemoveCourse deletes the registration. Removing an absent course is not an error.
func (s *sqlStore) RemoveCourse(ctx context.Context, userId, courseId string) error {
	if _, err := s.DB.ExecContext(ctx, s.q.removeCourse, userId, courseId); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
