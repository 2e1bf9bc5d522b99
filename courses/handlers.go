package courses

import (
	"context"
	"errors"
	"net/http"

	"github.com/cameronmore/go-courses/auth"
	"github.com/cameronmore/go-courses/logging"
	"github.com/cameronmore/go-courses/views"
	"github.com/go-chi/chi/v5"
)

const CoursesPath = "/dashboard/courses"

// Handlers serves the course pages. Every route expects auth.AuthMiddleware in front of it.
type Handlers struct {
	Manager *Manager
	Views   views.Renderer
	Logger  logging.Logger
}

func NewHandlers(m *Manager, v views.Renderer, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{Manager: m, Views: v, Logger: logger.With("component", "courses")}
}

// Routes mounts the course pages on the /dashboard sub-router.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/courses", h.ListHandler)
	r.Post("/courses/register/{id}", h.RegisterHandler)
	r.Post("/courses/deregister/{id}", h.DeregisterHandler)
}

func (h *Handlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return
	}

	registered, unregistered, err := h.Manager.ListCourses(ctx, id.UserId)
	if err != nil {
		h.fail(w, r, id, err)
		return
	}
	err = h.Views.Render(w, http.StatusOK, "courses", views.Map{
		"registered":   registered,
		"unregistered": unregistered,
	})
	if err != nil {
		h.Logger.Error(ctx, "Error rendering courses", "error", err)
		http.Error(w, auth.MsgSomethingWentWrong, http.StatusInternalServerError)
	}
}

func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Manager.Register, "Registered course")
}

func (h *Handlers) DeregisterHandler(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Manager.Deregister, "Deregistered course")
}

func (h *Handlers) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) error, msg string) {
	ctx := r.Context()
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
		return
	}

	courseId := chi.URLParam(r, "id")
	if err := op(ctx, id.UserId, courseId); err != nil {
		h.fail(w, r, id, err)
		return
	}
	h.Logger.Info(ctx, msg, "user_id", id.UserId, "course_id", courseId)
	http.Redirect(w, r, CoursesPath, http.StatusSeeOther)
}

// fail answers a failed course operation. A missing user behind a verified token is a
// server error, not an empty registration set.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, id auth.Identity, err error) {
	if errors.Is(err, ErrCourseNotFound) {
		views.Error(h.Views, w, http.StatusNotFound, "Course not found")
		return
	}
	h.Logger.Error(r.Context(), "Course operation failed", "user_id", id.UserId, "error", err)
	views.Error(h.Views, w, http.StatusInternalServerError, auth.MsgSomethingWentWrong)
}
