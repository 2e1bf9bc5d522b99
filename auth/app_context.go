package auth

import (
	"errors"
	"net/http"
	"sync"

	"github.com/cameronmore/go-courses/logging"
	"github.com/cameronmore/go-courses/sessions"
	"github.com/cameronmore/go-courses/views"
	"golang.org/x/crypto/bcrypt"
)

const (
	IndexPath     = "/"
	LoginPath     = "/login"
	SignupPath    = "/signup"
	LogoutPath    = "/logout"
	DashboardPath = "/dashboard"
)

// An authentication manager that handles signup, login, logout and guards protected routes.
type AuthContext struct {
	Store  sessions.UserStore
	Tokens *sessions.TokenService
	Views  views.Renderer
	Logger logging.Logger
	Cookie sessions.CookieOptions

	dummyOnce sync.Once
	dummyHash string
}

// Returns a new AuthContext given a user store, a token service and the page renderer.
func NewAuthContext(store sessions.UserStore, tokens *sessions.TokenService, v views.Renderer, logger logging.Logger, cookie sessions.CookieOptions) *AuthContext {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AuthContext{
		Store:  store,
		Tokens: tokens,
		Views:  v,
		Logger: logger.With("component", "auth"),
		Cookie: cookie,
	}
}

func (ac *AuthContext) IndexPage(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "index", nil)
}

func (ac *AuthContext) SignupPage(w http.ResponseWriter, r *http.Request) {
	if ac.hasValidSession(r) {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	ac.render(w, r, http.StatusOK, "signup", nil)
}

func (ac *AuthContext) LoginPage(w http.ResponseWriter, r *http.Request) {
	if ac.hasValidSession(r) {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	ac.render(w, r, http.StatusOK, "login", nil)
}

// Handles the creation of new accounts. The form is re-rendered with a message when the
// passwords differ, the email is not an institute address, or the account already exists.
//
// Expected form fields: username, email, password, confirmPassword.
func (ac *AuthContext) SignupHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		ac.render(w, r, http.StatusBadRequest, "signup", views.Map{"error": "Failed to parse form"})
		return
	}
	form := SignupFormFromRequest(r)
	rerender := func(status int, message string) {
		ac.render(w, r, status, "signup", views.Map{
			"error":    message,
			"username": form.Username,
			"email":    form.Email,
		})
	}

	if err := form.Validate(); err != nil {
		rerender(http.StatusBadRequest, err.Error())
		return
	}

	exists, err := ac.Store.UserExists(ctx, form.Username, form.Email)
	if err != nil {
		ac.Logger.Error(ctx, "Error checking for existing user", "error", err)
		views.Error(ac.Views, w, http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}
	if exists {
		rerender(http.StatusConflict, MsgUserExists)
		return
	}

	hashedPassword, err := HashPassword(form.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		rerender(http.StatusBadRequest, "Password is too long")
		return
	}
	if err != nil {
		ac.Logger.Error(ctx, "Error hashing password", "error", err)
		views.Error(ac.Views, w, http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}

	u, err := ac.Store.CreateUser(ctx, sessions.User{
		Username:       form.Username,
		Email:          form.Email,
		HashedPassword: hashedPassword,
	})
	if errors.Is(err, sessions.ErrUserExists) {
		rerender(http.StatusConflict, MsgUserExists)
		return
	}
	if err != nil {
		ac.Logger.Error(ctx, "Error inserting user into DB", "error", err)
		views.Error(ac.Views, w, http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}
	ac.Logger.Info(ctx, "User signed up", "user_id", u.UserId)

	if err := ac.startSession(w, u.UserId); err != nil {
		ac.Logger.Error(ctx, "Error issuing session token", "error", err)
		views.Error(ac.Views, w, http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Handles the login for users. An unknown email and a wrong password produce the same
// response.
//
// Expected form fields: email, password.
func (ac *AuthContext) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		ac.render(w, r, http.StatusBadRequest, "login", views.Map{"error": MsgInvalidCredentials})
		return
	}
	form := LoginFormFromRequest(r)
	rerender := func(status int, message string) {
		ac.render(w, r, status, "login", views.Map{"error": message, "email": form.Email})
	}

	if err := form.Validate(); err != nil {
		rerender(http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	u, err := ac.Store.LoadUserByEmail(ctx, form.Email)
	if errors.Is(err, sessions.ErrUserNotFound) {
		// burn the same bcrypt time as a real comparison
		VerifyPassword(form.Password, ac.dummyPasswordHash())
		rerender(http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}
	if err != nil {
		ac.Logger.Error(ctx, "Error loading user for login", "error", err)
		rerender(http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}

	if !VerifyPassword(form.Password, u.HashedPassword) {
		ac.Logger.Info(ctx, "Failed login attempt", "user_id", u.UserId)
		rerender(http.StatusUnauthorized, MsgInvalidCredentials)
		return
	}

	if err := ac.startSession(w, u.UserId); err != nil {
		ac.Logger.Error(ctx, "Error issuing session token", "error", err)
		rerender(http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}
	ac.Logger.Info(ctx, "User logged in", "user_id", u.UserId)
	http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
}

// Logs out a user by replacing the session cookie with an expired one. Tokens are not
// tracked server side, so there is nothing else to revoke.
func (ac *AuthContext) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessions.ClearCookie(ac.Cookie))
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

// AuthMiddleware lets a request through only with a valid session token and attaches the
// verified Identity to its context. Every other request is redirected to the login page.
func (ac *AuthContext) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := sessions.TokenFromRequest(r)
		if !ok {
			redirectToLogin(w, r)
			return
		}

		userId, err := ac.Tokens.Verify(token)
		if err != nil {
			ac.Logger.Info(r.Context(), "Rejected session token", "path", r.URL.Path)
			http.SetCookie(w, sessions.ClearCookie(ac.Cookie))
			redirectToLogin(w, r)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{UserId: userId})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DashboardHandler renders the profile of the authenticated user.
func (ac *AuthContext) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := IdentityFromContext(ctx)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	u, err := ac.Store.LoadUserByUserId(ctx, id.UserId)
	if err != nil {
		// the token named a user the store can't produce
		ac.Logger.Error(ctx, "Error loading user profile", "user_id", id.UserId, "error", err)
		views.Error(ac.Views, w, http.StatusInternalServerError, MsgSomethingWentWrong)
		return
	}
	ac.render(w, r, http.StatusOK, "dashboard", views.Map{"user": u})
}

func (ac *AuthContext) startSession(w http.ResponseWriter, userId string) error {
	token, expires, err := ac.Tokens.Issue(userId)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(token, expires, ac.Cookie))
	return nil
}

func (ac *AuthContext) hasValidSession(r *http.Request) bool {
	token, ok := sessions.TokenFromRequest(r)
	if !ok {
		return false
	}
	_, err := ac.Tokens.Verify(token)
	return err == nil
}

func (ac *AuthContext) dummyPasswordHash() string {
	ac.dummyOnce.Do(func() {
		h, err := HashPassword("not-a-real-password")
		if err == nil {
			ac.dummyHash = h
		}
	})
	return ac.dummyHash
}

func (ac *AuthContext) render(w http.ResponseWriter, r *http.Request, status int, name string, data views.Map) {
	if err := ac.Views.Render(w, status, name, data); err != nil {
		ac.Logger.Error(r.Context(), "Error rendering view", "view", name, "error", err)
		http.Error(w, MsgSomethingWentWrong, http.StatusInternalServerError)
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	status := http.StatusSeeOther
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		status = http.StatusFound
	}
	http.Redirect(w, r, LoginPath, status)
}
