package http

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/superj80820/session-auth/domain"
	httpTransportKit "github.com/superj80820/session-auth/kit/http/transport"
)

var DecodeAuthLoginRequest = httpTransportKit.DecodeJsonRequest[authLoginRequest]

type authLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userData struct {
	User *domain.AccountView `json:"user"`
}

// authSessionResponse is the body of every call that hands out tokens. The
// tokens themselves only travel as cookies.
type authSessionResponse struct {
	Status string   `json:"status"`
	Data   userData `json:"data"`

	accessToken  string
	refreshToken string
}

func newAuthSessionResponse(account *domain.Account) *authSessionResponse {
	return &authSessionResponse{
		Status:       "success",
		Data:         userData{User: account.View()},
		accessToken:  account.AccessToken,
		refreshToken: account.RefreshToken,
	}
}

func (a *authSessionResponse) setCookies(w http.ResponseWriter, sessionCookie SessionCookie) {
	if a.accessToken != "" {
		sessionCookie.SetAccessToken(w, a.accessToken)
	}
	if a.refreshToken != "" {
		sessionCookie.SetRefreshToken(w, a.refreshToken)
	}
}

func MakeAuthLoginEndpoint(svc domain.AuthUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(authLoginRequest)
		account, err := svc.Login(ctx, req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		return newAuthSessionResponse(account), nil
	}
}

func EncodeAuthSessionResponse(sessionCookie SessionCookie) httptransport.EncodeResponseFunc {
	return func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		res := response.(*authSessionResponse)
		res.setCookies(w, sessionCookie)
		return httpTransportKit.EncodeJsonResponse(ctx, w, res)
	}
}
