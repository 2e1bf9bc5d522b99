package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cameronmore/go-courses/auth"
	"github.com/cameronmore/go-courses/courses"
	"github.com/cameronmore/go-courses/public"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// requestIDHook stamps log events with the chi request id found in their context.
type requestIDHook struct{}

func (requestIDHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	if id := middleware.GetReqID(ctx); id != "" {
		e.Str("req_id", id)
	}
}

// Routes bundles what the router needs.
type Routes struct {
	Auth         *auth.AuthContext
	Courses      *courses.Handlers
	Log          zerolog.Logger
	LoginLimiter *ClientLimiter
	// TrustProxy rewrites RemoteAddr from proxy headers before logging and rate limiting.
	TrustProxy bool
}

// NewRouter wires every page of the portal. Everything under /dashboard sits behind the
// auth middleware.
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if rt.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(hlog.NewHandler(rt.Log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("req_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz)
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.FS(public.Assets))))

	r.Get(auth.IndexPath, rt.Auth.IndexPage)
	r.Get(auth.SignupPath, rt.Auth.SignupPage)
	r.Get(auth.LoginPath, rt.Auth.LoginPage)
	r.Get(auth.LogoutPath, rt.Auth.LogoutHandler)

	r.Group(func(r chi.Router) {
		if rt.LoginLimiter != nil {
			r.Use(rt.LoginLimiter.Middleware)
		}
		r.Post(auth.SignupPath, rt.Auth.SignupHandler)
		r.Post(auth.LoginPath, rt.Auth.LoginHandler)
	})

	// the middleware wraps the whole sub-router, unknown dashboard paths included
	r.Route(auth.DashboardPath, func(r chi.Router) {
		r.Use(rt.Auth.AuthMiddleware)
		r.Get("/", rt.Auth.DashboardHandler)
		rt.Courses.Routes(r)
	})

	return r
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error writing health response")
	}
}
