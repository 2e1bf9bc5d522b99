package sessions

import (
	"net/http"
	"time"
)

// CookieName is the cookie slot that carries the session token.
const CookieName = "token"

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
}

// Returns a cookie holding the signed token that expires together with it.
func NewCookie(token string, expires time.Time, opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Returns an expired cookie that makes the client discard its session token.
func ClearCookie(opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Returns the raw session token from the request cookie, or false when there is none.
func TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
