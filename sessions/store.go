package sessions

import (
	"context"
	"slices"
	"time"
)

type User struct {
	UserId            string
	Username          string
	Email             string
	HashedPassword    string
	RegisteredCourses []string
	CreatedAt         time.Time
}

// Reports whether the user is currently registered for the given course id.
func (u User) IsRegistered(courseId string) bool {
	return slices.Contains(u.RegisteredCourses, courseId)
}

// UserStore persists users and their registration sets. Course membership changes are
// atomic set operations so concurrent requests for the same user cannot clobber each other.
type UserStore interface {
	// CreateUser assigns a new id to u and inserts it. Returns ErrUserExists when the
	// username or email is taken.
	CreateUser(ctx context.Context, u User) (User, error)
	LoadUserByUserId(ctx context.Context, id string) (User, error)
	LoadUserByEmail(ctx context.Context, email string) (User, error)
	// UserExists reports whether any user holds the given username or email.
	UserExists(ctx context.Context, username, email string) (bool, error)

	AddCourse(ctx context.Context, userId, courseId string) error
	RemoveCourse(ctx context.Context, userId, courseId string) error
}
