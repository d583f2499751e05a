package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/kit/code"
	httpKit "github.com/superj80820/session-auth/kit/http"
)

type PassFunc func(ctx context.Context, key string) (pass bool, lastRequests, curExpiry int, err error)

type KeyFunc func(ctx context.Context) string

// KeyByIP gives every client ip its own budget.
func KeyByIP(ctx context.Context) string {
	return httpKit.GetIP(ctx)
}

// KeyByIPAndPath splits an ip's budget per route.
func KeyByIPAndPath(ctx context.Context) string {
	return strings.Join([]string{httpKit.GetIP(ctx), httpKit.GetURL(ctx)}, "-")
}

// CreateRateLimitMiddleware rejects with 429 once passFunc reports the key's
// window as spent. The message carries the seconds left in the window.
func CreateRateLimitMiddleware(getKey KeyFunc, passFunc PassFunc) endpoint.Middleware {
	return func(e endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			pass, _, expiry, err := passFunc(ctx, getKey(ctx))
			if err != nil {
				return nil, errors.Wrap(err, "get rate limit failed")
			}
			if !pass {
				return nil, code.CreateErrorCode(http.StatusTooManyRequests).AddCode(code.RateLimit, expiry)
			}
			return e(ctx, request)
		}
	}
}
