package http

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
)

// CreateRoleMiddleware lets through principals whose role is in roles. It
// must run after the auth middleware.
func CreateRoleMiddleware(roles domain.RoleSet) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			account, err := principal(ctx)
			if err != nil {
				return nil, err
			}
			if !roles.Contains(account.Role) {
				return nil, code.CreateErrorCode(http.StatusForbidden).AddCode(code.AccessDenied)
			}
			return e(ctx, request)
		}
	}
}
