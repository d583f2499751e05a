package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
	utilKit "github.com/superj80820/session-auth/kit/util"
)

const defaultBcryptCost = 10

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authUseCase struct {
	accountRepo        domain.AccountRepo
	refreshSessionRepo domain.RefreshSessionRepo
	tokenRepo          domain.TokenRepo
	logger             *loggerKit.Logger

	bcryptCost int
	now        func() time.Time
}

type Option func(*authUseCase)

func WithBcryptCost(cost int) Option {
	return func(a *authUseCase) {
		a.bcryptCost = cost
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(a *authUseCase) {
		a.now = now
	}
}

func CreateAuthUseCase(accountRepo domain.AccountRepo, refreshSessionRepo domain.RefreshSessionRepo, tokenRepo domain.TokenRepo, logger *loggerKit.Logger, options ...Option) (domain.AuthUseCase, error) {
	if logger == nil {
		return nil, errors.New("create auth use case failed: nil logger")
	}
	a := &authUseCase{
		accountRepo:        accountRepo,
		refreshSessionRepo: refreshSessionRepo,
		tokenRepo:          tokenRepo,
		logger:             logger,
		bcryptCost:         defaultBcryptCost,
		now:                time.Now,
	}
	for _, option := range options {
		option(a)
	}
	return a, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationError(err error) error {
	if errors.Is(err, utilKit.ErrValidation) {
		return code.CreateErrorCode(http.StatusBadRequest).AddCode(code.Validation, err.Error()).AddErrorMetaData(err)
	}
	return errors.Wrap(err, "validate input failed")
}

func (a *authUseCase) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	input := registerInput{
		Username: strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
		Password: password,
	}
	if err := utilKit.ValidateStruct(input); err != nil {
		return nil, validationError(err)
	}

	if _, err := a.accountRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.DuplicateAccount)
	} else if !errors.Is(err, domain.ErrNoData) {
		return nil, errors.Wrap(err, "get account by email failed")
	}

	hash, err := utilKit.HashPassword(input.Password, a.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password failed")
	}

	account := &domain.Account{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Role:     domain.RoleUser,
	}
	// a concurrent registration can still win the race, the store's unique
	// index reports it the same way
	if err := a.accountRepo.Create(ctx, account); errors.Is(err, domain.ErrDuplicate) {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.DuplicateAccount).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "create account failed")
	}

	return a.startSession(ctx, account)
}

func (a *authUseCase) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	input := loginInput{
		Email:    NormalizeEmail(email),
		Password: password,
	}
	if err := utilKit.ValidateStruct(input); err != nil {
		return nil, validationError(err)
	}

	account, err := a.accountRepo.GetByEmail(ctx, input.Email)
	if errors.Is(err, domain.ErrNoData) {
		a.logger.Info("login failed", loggerKit.String("reason", "email not registered"))
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidCredential)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account by email failed")
	}

	if ok, err := utilKit.ComparePassword(account.Password, input.Password); err != nil {
		return nil, errors.Wrap(err, "compare password failed")
	} else if !ok {
		a.logger.Info("login failed", loggerKit.String("reason", "password mismatch"), loggerKit.Int64("account-id", account.ID))
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.InvalidCredential)
	}

	return a.startSession(ctx, account)
}

// startSession issues a token pair and records the refresh token. Earlier
// sessions of the account stay valid.
func (a *authUseCase) startSession(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	now := a.now()

	refreshToken, refreshTokenExpireAt, err := a.tokenRepo.GenerateToken(account.ID, domain.REFRESH_TOKEN, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed refresh token failed")
	}
	accessToken, _, err := a.tokenRepo.GenerateToken(account.ID, domain.ACCESS_TOKEN, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed access token failed")
	}

	if _, err := a.refreshSessionRepo.Create(ctx, account.ID, refreshToken, refreshTokenExpireAt); err != nil {
		return nil, errors.Wrap(err, "save refresh session failed")
	}

	result := account.WithoutCredential()
	result.AccessToken = accessToken
	result.RefreshToken = refreshToken
	return result, nil
}

func (a *authUseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := a.refreshSessionRepo.Delete(ctx, refreshToken); err != nil {
		return errors.Wrap(err, "delete refresh session failed")
	}
	return nil
}

// RefreshAccessToken issues a new access token only. The refresh token and
// its session record are left as they are.
func (a *authUseCase) RefreshAccessToken(ctx context.Context, refreshToken string) (*domain.Account, error) {
	if refreshToken == "" {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.NoToken)
	}

	claims, err := a.tokenRepo.VerifyToken(refreshToken, domain.REFRESH_TOKEN)
	if errors.Is(err, domain.ErrInvalidToken) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.InvalidToken).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "verify refresh token failed")
	}

	now := a.now()

	if _, err := a.refreshSessionRepo.Get(ctx, claims.AccountID, refreshToken, now); errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.NoSession).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "get refresh session failed")
	}

	account, err := a.accountRepo.Get(ctx, claims.AccountID)
	if errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusNotFound).AddCode(code.AccountNotFound).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}

	accessToken, _, err := a.tokenRepo.GenerateToken(account.ID, domain.ACCESS_TOKEN, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed access token failed")
	}

	result := account.WithoutCredential()
	result.AccessToken = accessToken
	return result, nil
}

func (a *authUseCase) Verify(ctx context.Context, accessToken string) (*domain.Account, error) {
	if accessToken == "" {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.NoToken)
	}

	claims, err := a.tokenRepo.VerifyToken(accessToken, domain.ACCESS_TOKEN)
	if errors.Is(err, domain.ErrInvalidToken) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.InvalidToken).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "verify access token failed")
	}

	account, err := a.accountRepo.Get(ctx, claims.AccountID)
	if errors.Is(err, domain.ErrNoData) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.AccountNotFound).AddErrorMetaData(err)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}

	return account.WithoutCredential(), nil
}
