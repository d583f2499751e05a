package http

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/superj80820/session-auth/domain"
	httpTransportKit "github.com/superj80820/session-auth/kit/http/transport"
)

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// DecodeRefreshTokenRequest takes the refresh token from the body and falls
// back to the refreshToken cookie. The body may be empty.
func DecodeRefreshTokenRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	request, err := httpTransportKit.DecodeOptionalJsonRequest[refreshTokenRequest](ctx, r)
	if err != nil {
		return nil, err
	}
	req := request.(refreshTokenRequest)
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(RefreshTokenCookieName); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	return req, nil
}

type authLogoutResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func MakeAuthLogoutEndpoint(svc domain.AuthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(refreshTokenRequest)
		if err := svc.Logout(ctx, req.RefreshToken); err != nil {
			return nil, err
		}
		return &authLogoutResponse{Status: "success", Message: "Logged out successfully"}, nil
	}
}

func EncodeAuthLogoutResponse(sessionCookie SessionCookie) httptransport.EncodeResponseFunc {
	return func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		sessionCookie.Clear(w)
		return httpTransportKit.EncodeJsonResponse(ctx, w, response)
	}
}
