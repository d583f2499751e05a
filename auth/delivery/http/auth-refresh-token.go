package http

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/superj80820/session-auth/domain"
)

func MakeAuthRefreshTokenEndpoint(svc domain.AuthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(refreshTokenRequest)
		account, err := svc.RefreshAccessToken(ctx, req.RefreshToken)
		if err != nil {
			return nil, err
		}
		return newAuthSessionResponse(account), nil
	}
}
