package credential

import (
	"net/http"
	"time"
)

const (
	SessionCookieName = "verdant_session"
	// CSRFCookieName is readable by the client so it can echo the token in
	// the X-CSRF-Token header.
	CSRFCookieName = "verdant_csrf"
)

// CookieConfig carries the deployment-dependent cookie attributes.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

func SessionCookie(cfg CookieConfig, token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}
}

func CSRFCookie(cfg CookieConfig, token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		HttpOnly: false,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}
}

// ClearCookies returns expired copies of both cookies, written on logout
// and on authentication failure.
func ClearCookies(cfg CookieConfig) []*http.Cookie {
	expired := time.Unix(0, 0)
	return []*http.Cookie{
		{Name: SessionCookieName, Value: "", Path: "/", Domain: cfg.Domain, Expires: expired, MaxAge: -1, HttpOnly: true, Secure: cfg.Secure, SameSite: cfg.SameSite},
		{Name: CSRFCookieName, Value: "", Path: "/", Domain: cfg.Domain, Expires: expired, MaxAge: -1, Secure: cfg.Secure, SameSite: cfg.SameSite},
	}
}
