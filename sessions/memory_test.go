package sessions

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	u, err := m.CreateUser(ctx, User{Username: "john", Email: "f20221234@goa.bits-pilani.ac.in", HashedPassword: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.UserId)
	assert.Empty(t, u.RegisteredCourses)

	byId, err := m.LoadUserByUserId(ctx, u.UserId)
	require.NoError(t, err)
	assert.Equal(t, u, byId)

	byEmail, err := m.LoadUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.UserId, byEmail.UserId)

	_, err = m.CreateUser(ctx, User{Username: "john", Email: "other@x"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Equal(t, 1, m.Len())

	_, err = m.LoadUserByUserId(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStore_CourseSetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	u, err := m.CreateUser(ctx, User{Username: "a", Email: "a@x"})
	require.NoError(t, err)

	require.NoError(t, m.AddCourse(ctx, u.UserId, "os"))
	require.NoError(t, m.AddCourse(ctx, u.UserId, "os"))
	require.NoError(t, m.RemoveCourse(ctx, u.UserId, "dbms"))

	got, err := m.LoadUserByUserId(ctx, u.UserId)
	require.NoError(t, err)
	assert.Equal(t, []string{"os"}, got.RegisteredCourses)

	assert.ErrorIs(t, m.AddCourse(ctx, "missing", "os"), ErrUserNotFound)
}

func TestMemoryStore_ConcurrentAddsAreAllKept(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	u, err := m.CreateUser(ctx, User{Username: "a", Email: "a@x"})
	require.NoError(t, err)

	ids := []string{"algo", "dsa", "os", "dbms", "cn", "ml"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, m.AddCourse(ctx, u.UserId, id))
		}(id)
	}
	wg.Wait()

	got, err := m.LoadUserByUserId(ctx, u.UserId)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, got.RegisteredCourses)
}
