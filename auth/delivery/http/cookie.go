package http

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookieName  = "token"
	RefreshTokenCookieName = "refreshToken"
	CSRFTokenCookieName    = "XSRF-TOKEN"
	CSRFSecretCookieName   = "_csrf"
)

// SessionCookie writes the session cookies. MaxAge is a client hint only,
// token expiry is always decided by the token itself.
type SessionCookie struct {
	Secure             bool
	AccessTokenMaxAge  time.Duration
	RefreshTokenMaxAge time.Duration
}

func CreateSessionCookie(secure bool) SessionCookie {
	return SessionCookie{
		Secure:             secure,
		AccessTokenMaxAge:  24 * time.Hour,
		RefreshTokenMaxAge: 7 * 24 * time.Hour,
	}
}

func (s SessionCookie) cookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s SessionCookie) SetAccessToken(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, s.cookie(AccessTokenCookieName, accessToken, s.AccessTokenMaxAge, true))
}

func (s SessionCookie) SetRefreshToken(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, s.cookie(RefreshTokenCookieName, refreshToken, s.RefreshTokenMaxAge, true))
}

func (s SessionCookie) Clear(w http.ResponseWriter) {
	clearAccessToken := s.cookie(AccessTokenCookieName, "", 0, true)
	clearAccessToken.MaxAge = -1
	clearRefreshToken := s.cookie(RefreshTokenCookieName, "", 0, true)
	clearRefreshToken.MaxAge = -1
	http.SetCookie(w, clearAccessToken)
	http.SetCookie(w, clearRefreshToken)
}

func (s SessionCookie) SetCSRFSecret(w http.ResponseWriter, secret string) {
	http.SetCookie(w, s.cookie(CSRFSecretCookieName, secret, 0, true))
}

func (s SessionCookie) SetCSRFToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(CSRFTokenCookieName, token, 0, false))
}
