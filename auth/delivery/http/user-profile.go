package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	httpKit "github.com/superj80820/session-auth/kit/http"
	httpTransportKit "github.com/superj80820/session-auth/kit/http/transport"
)

var DecodeUserProfileUpdateRequest = httpTransportKit.DecodeOptionalJsonRequest[userProfileUpdateRequest]

type userProfileUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type userResponse struct {
	Status string   `json:"status"`
	Data   userData `json:"data"`
}

func newUserResponse(view *domain.AccountView) *userResponse {
	return &userResponse{Status: "success", Data: userData{User: view}}
}

func principal(ctx context.Context) (*domain.Account, error) {
	account, ok := httpKit.GetPrincipal[*domain.Account](ctx)
	if !ok || account == nil {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.NoToken)
	}
	return account, nil
}

func MakeUserProfileEndpoint(svc domain.AccountUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		account, err := principal(ctx)
		if err != nil {
			return nil, err
		}
		profile, err := svc.Get(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		return newUserResponse(profile.View()), nil
	}
}

func MakeUserProfileUpdateEndpoint(svc domain.AccountUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(userProfileUpdateRequest)
		account, err := principal(ctx)
		if err != nil {
			return nil, err
		}
		profile, err := svc.UpdateProfile(ctx, account.ID, &domain.AccountUpdate{
			Username: req.Username,
			Email:    req.Email,
		})
		if err != nil {
			return nil, err
		}
		return newUserResponse(profile.View()), nil
	}
}

type userGetRequest struct {
	AccountID int64
}

func DecodeUserGetRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	accountID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil, code.CreateErrorCode(http.StatusNotFound).AddCode(code.AccountNotFound).AddErrorMetaData(errors.Wrap(err, "parse account id failed"))
	}
	return userGetRequest{AccountID: accountID}, nil
}

// MakeUserGetEndpoint is the admin lookup, so the view carries the role.
func MakeUserGetEndpoint(svc domain.AccountUseCase) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(userGetRequest)
		account, err := svc.Get(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		return newUserResponse(account.ViewWithRole()), nil
	}
}
