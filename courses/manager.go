package courses

import (
	"context"

	"github.com/cameronmore/go-courses/sessions"
)

// Manager toggles course registrations for a user. Both directions are idempotent and
// each change is a single atomic store operation.
type Manager struct {
	store   sessions.UserStore
	catalog *Catalog
}

func NewManager(store sessions.UserStore, catalog *Catalog) *Manager {
	return &Manager{store: store, catalog: catalog}
}

func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// Register adds courseId to the user's set. Only catalog courses can be registered;
// registering twice is a no-op.
func (m *Manager) Register(ctx context.Context, userId, courseId string) error {
	if _, ok := m.catalog.Lookup(courseId); !ok {
		return ErrCourseNotFound
	}
	if _, err := m.store.LoadUserByUserId(ctx, userId); err != nil {
		return err
	}
	return m.store.AddCourse(ctx, userId, courseId)
}

// Deregister removes courseId from the user's set. Removing a course the user never had,
// including one that isn't in the catalog, is a no-op.
func (m *Manager) Deregister(ctx context.Context, userId, courseId string) error {
	if _, err := m.store.LoadUserByUserId(ctx, userId); err != nil {
		return err
	}
	return m.store.RemoveCourse(ctx, userId, courseId)
}

// ListCourses splits the catalog into the courses the user is registered for and the rest.
// Both lists follow catalog order.
func (m *Manager) ListCourses(ctx context.Context, userId string) (registered, unregistered []Course, err error) {
	u, err := m.store.LoadUserByUserId(ctx, userId)
	if err != nil {
		return nil, nil, err
	}

	registered = []Course{}
	unregistered = []Course{}
	for _, course := range m.catalog.courses {
		if u.IsRegistered(course.ID) {
			registered = append(registered, course)
		} else {
			unregistered = append(unregistered, course)
		}
	}
	return registered, unregistered, nil
}
