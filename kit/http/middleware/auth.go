package middleware

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/kit/code"
	httpKit "github.com/superj80820/session-auth/kit/http"
)

// CreateAuthMiddleware resolves the token CustomBeforeCtx stored in ctx into
// a principal and attaches it for downstream endpoints.
func CreateAuthMiddleware[T any](authFunc func(ctx context.Context, token string) (T, error)) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token := httpKit.GetToken(ctx)
			if token == "" {
				return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.NoToken)
			}
			principal, err := authFunc(ctx, token)
			if err != nil {
				return nil, errors.Wrap(err, "auth failed")
			}
			ctx = httpKit.AddPrincipal(ctx, principal)
			return e(ctx, request)
		}
	}
}
