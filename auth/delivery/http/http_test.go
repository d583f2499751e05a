package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	csrfRepo "github.com/superj80820/session-auth/auth/repository/csrf"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	httpKit "github.com/superj80820/session-auth/kit/http"
)

func cookieValue(cookies []*http.Cookie, name string) (*http.Cookie, bool) {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return nil, false
}

func TestCSRFStage(t *testing.T) {
	repo := csrfRepo.CreateCSRFRepo()
	handler := httpKit.CreatePipeline(CSRFStage(repo, CreateSessionCookie(false), nil)).
		Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(GetCSRFToken(r.Context())))
		}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	secretCookie, ok := cookieValue(w.Result().Cookies(), CSRFSecretCookieName)
	require.True(t, ok)
	assert.True(t, secretCookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, secretCookie.SameSite)
	tokenCookie, ok := cookieValue(w.Result().Cookies(), CSRFTokenCookieName)
	require.True(t, ok)
	assert.False(t, tokenCookie.HttpOnly)
	assert.Equal(t, tokenCookie.Value, w.Body.String())

	post := func(mutate func(r *http.Request)) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		r.AddCookie(secretCookie)
		mutate(r)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, post(func(r *http.Request) { r.Header.Set("X-XSRF-TOKEN", tokenCookie.Value) }).Code)
	assert.Equal(t, http.StatusOK, post(func(r *http.Request) { r.Header.Set("X-CSRF-TOKEN", tokenCookie.Value) }).Code)
	assert.Equal(t, http.StatusOK, post(func(r *http.Request) { r.URL.RawQuery = "_csrf=" + tokenCookie.Value }).Code)

	rejected := post(func(r *http.Request) {})
	assert.Equal(t, http.StatusForbidden, rejected.Code)
	assert.Contains(t, rejected.Body.String(), "invalid csrf token")

	otherSecret, err := repo.GenerateSecret()
	require.Nil(t, err)
	otherToken, err := repo.GenerateToken(otherSecret)
	require.Nil(t, err)
	assert.Equal(t, http.StatusForbidden, post(func(r *http.Request) { r.Header.Set("X-XSRF-TOKEN", otherToken) }).Code)

	noSecret := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	noSecret.Header.Set("X-XSRF-TOKEN", tokenCookie.Value)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, noSecret)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDecodeRefreshTokenRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", strings.NewReader(`{"refreshToken":"from-body"}`))
	r.AddCookie(&http.Cookie{Name: RefreshTokenCookieName, Value: "from-cookie"})
	req, err := DecodeRefreshTokenRequest(context.Background(), r)
	require.Nil(t, err)
	assert.Equal(t, "from-body", req.(refreshTokenRequest).RefreshToken)

	r = httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	r.AddCookie(&http.Cookie{Name: RefreshTokenCookieName, Value: "from-cookie"})
	req, err = DecodeRefreshTokenRequest(context.Background(), r)
	require.Nil(t, err)
	assert.Equal(t, "from-cookie", req.(refreshTokenRequest).RefreshToken)

	r = httptest.NewRequest(http.MethodPost, "/auth/refresh-token", strings.NewReader(`{`))
	_, err = DecodeRefreshTokenRequest(context.Background(), r)
	assert.Equal(t, code.InvalidBody, code.ParseErrorCode(err).Code)
}

func TestRoleMiddleware(t *testing.T) {
	endpoint := CreateRoleMiddleware(domain.NewRoleSet(domain.RoleAdmin))(func(ctx context.Context, request interface{}) (interface{}, error) {
		return "ok", nil
	})

	_, err := endpoint(context.Background(), nil)
	assert.Equal(t, http.StatusUnauthorized, code.ParseErrorCode(err).GeneralCode)

	_, err = endpoint(httpKit.AddPrincipal(context.Background(), &domain.Account{Role: domain.RoleUser}), nil)
	assert.Equal(t, http.StatusForbidden, code.ParseErrorCode(err).GeneralCode)
	assert.Equal(t, code.AccessDenied, code.ParseErrorCode(err).Code)

	response, err := endpoint(httpKit.AddPrincipal(context.Background(), &domain.Account{Role: domain.RoleAdmin}), nil)
	assert.Nil(t, err)
	assert.Equal(t, "ok", response)
}

func TestSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	sessionCookie := CreateSessionCookie(true)
	sessionCookie.SetAccessToken(w, "access")
	sessionCookie.SetRefreshToken(w, "refresh")

	access, ok := cookieValue(w.Result().Cookies(), AccessTokenCookieName)
	require.True(t, ok)
	assert.Equal(t, 24*60*60, access.MaxAge)
	assert.True(t, access.Secure)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)
	refresh, ok := cookieValue(w.Result().Cookies(), RefreshTokenCookieName)
	require.True(t, ok)
	assert.Equal(t, 7*24*60*60, refresh.MaxAge)

	w = httptest.NewRecorder()
	sessionCookie.Clear(w)
	for _, cookie := range w.Result().Cookies() {
		assert.Equal(t, -1, cookie.MaxAge)
		assert.Empty(t, cookie.Value)
	}
	assert.Len(t, w.Result().Cookies(), 2)
}
