package account

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
	utilKit "github.com/superj80820/session-auth/kit/util"
)

type updateProfileInput struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type accountUseCase struct {
	accountRepo domain.AccountRepo
	logger      *loggerKit.Logger
}

func CreateAccountUseCase(accountRepo domain.AccountRepo, logger *loggerKit.Logger) (domain.AccountUseCase, error) {
	if logger == nil {
		return nil, errors.New("create account use case failed: nil logger")
	}
	return &accountUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}, nil
}

func (a *accountUseCase) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := a.accountRepo.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusNotFound).AddCode(code.AccountNotFound).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}
	return account.WithoutCredential(), nil
}

func (a *accountUseCase) UpdateProfile(ctx context.Context, accountID int64, update *domain.AccountUpdate) (*domain.Account, error) {
	input := updateProfileInput{}
	if update != nil && update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		input.Username = &username
	}
	if update != nil && update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		input.Email = &email
	}
	if err := utilKit.ValidateStruct(input); errors.Is(err, utilKit.ErrValidation) {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.Validation, err.Error()).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "validate profile failed")
	}

	if input.Username == nil && input.Email == nil {
		return a.Get(ctx, accountID)
	}

	if input.Email != nil {
		owner, err := a.accountRepo.GetByEmail(ctx, *input.Email)
		if err == nil && owner.ID != accountID {
			return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.DuplicateAccount)
		} else if err != nil && !errors.Is(err, domain.ErrNoData) {
			return nil, errors.Wrap(err, "get account by email failed")
		}
	}

	account, err := a.accountRepo.Update(ctx, accountID, &domain.AccountUpdate{
		Username: input.Username,
		Email:    input.Email,
	})
	if errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusNotFound).AddCode(code.AccountNotFound).AddErrorMetaData(err)
	} else if errors.Is(err, domain.ErrDuplicate) {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.DuplicateAccount).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "update account failed")
	}

	a.logger.Info("profile updated", loggerKit.Int64("account-id", accountID))

	return account.WithoutCredential(), nil
}
