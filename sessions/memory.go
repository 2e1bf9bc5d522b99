package sessions

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is a UserStore held in process memory. It is safe for concurrent use and
// is meant for tests and local runs without a database.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]*User{}}
}

func (m *MemoryStore) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return User{}, ErrUserExists
		}
	}
	u.UserId = ulid.Make().String()
	u.CreatedAt = time.Now().UTC()
	u.RegisteredCourses = []string{}
	stored := u
	m.users[u.UserId] = &stored
	return copyUser(stored), nil
}

func (m *MemoryStore) LoadUserByUserId(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return copyUser(*u), nil
}

func (m *MemoryStore) LoadUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return copyUser(*u), nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *MemoryStore) UserExists(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) AddCourse(_ context.Context, userId, courseId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userId]
	if !ok {
		return ErrUserNotFound
	}
	if !u.IsRegistered(courseId) {
		u.RegisteredCourses = append(u.RegisteredCourses, courseId)
	}
	return nil
}

func (m *MemoryStore) RemoveCourse(_ context.Context, userId, courseId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userId]
	if !ok {
		return ErrUserNotFound
	}
	u.RegisteredCourses = slices.DeleteFunc(u.RegisteredCourses, func(id string) bool {
		return id == courseId
	})
	return nil
}

// Len returns the number of stored users. Tests use it to assert that a rejected signup
// created nothing.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func copyUser(u User) User {
	u.RegisteredCourses = slices.Clone(u.RegisteredCourses)
	if u.RegisteredCourses == nil {
		u.RegisteredCourses = []string{}
	}
	return u
}
