package http

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/superj80820/session-auth/domain"
	httpMiddlewareKit "github.com/superj80820/session-auth/kit/http/middleware"
	httpTransportKit "github.com/superj80820/session-auth/kit/http/transport"
)

var DecodeAuthRegisterRequest = httpTransportKit.DecodeJsonRequest[authRegisterRequest]

type authRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authRegisterResponse struct {
	*authSessionResponse
}

func (authRegisterResponse) SuccessHTTPCode() int {
	return http.StatusCreated
}

func MakeAuthRegisterEndpoint(svc domain.AuthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(authRegisterRequest)
		account, err := svc.Register(ctx, req.Username, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		return &authRegisterResponse{newAuthSessionResponse(account)}, nil
	}
}

func EncodeAuthRegisterResponse(sessionCookie SessionCookie) httptransport.EncodeResponseFunc {
	return httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		res := response.(*authRegisterResponse)
		res.setCookies(w, sessionCookie)
		return httpTransportKit.EncodeJsonResponse(ctx, w, res.authSessionResponse)
	})
}
