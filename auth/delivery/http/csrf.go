package http

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	httpKit "github.com/superj80820/session-auth/kit/http"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
)

type csrfTokenCtxKey struct{}

func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenCtxKey{}).(string)
	return token
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func readCSRFToken(r *http.Request) string {
	if token := r.Header.Get("X-XSRF-TOKEN"); token != "" {
		return token
	}
	if token := r.Header.Get("X-CSRF-TOKEN"); token != "" {
		return token
	}
	return r.URL.Query().Get("_csrf")
}

// CSRFStage is a double submit cookie check. The secret sits in an httpOnly
// cookie, a token derived from it is handed out in a readable cookie on every
// passing request, and unsafe methods must echo that token back.
func CSRFStage(csrfRepo domain.CSRFRepo, sessionCookie SessionCookie, logger *loggerKit.Logger) httpKit.Stage {
	return httpKit.Guard("csrf", func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error) {
		var secret string
		if cookie, err := r.Cookie(CSRFSecretCookieName); err == nil {
			secret = cookie.Value
		}

		if !isSafeMethod(r.Method) {
			if secret == "" || !csrfRepo.VerifyToken(secret, readCSRFToken(r)) {
				return nil, nil, code.CreateErrorCode(http.StatusForbidden).AddCode(code.InvalidCSRF)
			}
		}

		if secret == "" {
			newSecret, err := csrfRepo.GenerateSecret()
			if err != nil {
				return nil, nil, errors.Wrap(err, "generate csrf secret failed")
			}
			secret = newSecret
			sessionCookie.SetCSRFSecret(w, secret)
		}

		token, err := csrfRepo.GenerateToken(secret)
		if err != nil {
			return nil, nil, errors.Wrap(err, "generate csrf token failed")
		}
		sessionCookie.SetCSRFToken(w, token)

		return w, r.WithContext(context.WithValue(r.Context(), csrfTokenCtxKey{}, token)), nil
	}, logger)
}

type csrfTokenResponse struct {
	Token string `json:"XSRF-TOKEN"`
}

func MakeCSRFTokenEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		return &csrfTokenResponse{Token: GetCSRFToken(ctx)}, nil
	}
}

type healthResponse struct {
	Message string `json:"message"`
}

func MakeHealthEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		return &healthResponse{Message: "Auth API is running"}, nil
	}
}
