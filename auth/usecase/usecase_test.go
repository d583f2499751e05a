package usecase

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accountORMRepo "github.com/superj80820/session-auth/auth/repository/account/orm"
	sessionORMRepo "github.com/superj80820/session-auth/auth/repository/session/orm"
	jwtTokenRepo "github.com/superj80820/session-auth/auth/repository/token/jwt"
	"github.com/superj80820/session-auth/auth/usecase/account"
	"github.com/superj80820/session-auth/auth/usecase/auth"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
	ormKit "github.com/superj80820/session-auth/kit/orm"
)

type testSetup struct {
	accountRepo        domain.AccountRepo
	refreshSessionRepo domain.RefreshSessionRepo
	tokenRepo          domain.TokenRepo
	logger             *loggerKit.Logger
	authUseCase        domain.AuthUseCase
	accountUseCase     domain.AccountUseCase
}

func setup(t *testing.T) *testSetup {
	logger, err := loggerKit.NewLogger("./go.log", loggerKit.InfoLevel, loggerKit.NoStdout)
	require.Nil(t, err)

	db, err := ormKit.CreateDB(ormKit.UseSQLite(":memory:"))
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })

	accountRepo, err := accountORMRepo.CreateAccountRepo(db)
	require.Nil(t, err)
	refreshSessionRepo, err := sessionORMRepo.CreateRefreshSessionRepo(db)
	require.Nil(t, err)
	tokenRepo, err := jwtTokenRepo.CreateTokenRepo("test-secret", time.Hour, 7*24*time.Hour)
	require.Nil(t, err)

	authUseCase, err := auth.CreateAuthUseCase(accountRepo, refreshSessionRepo, tokenRepo, logger, auth.WithBcryptCost(4))
	require.Nil(t, err)
	accountUseCase, err := account.CreateAccountUseCase(accountRepo, logger)
	require.Nil(t, err)

	return &testSetup{
		accountRepo:        accountRepo,
		refreshSessionRepo: refreshSessionRepo,
		tokenRepo:          tokenRepo,
		logger:             logger,
		authUseCase:        authUseCase,
		accountUseCase:     accountUseCase,
	}
}

func assertErrorCode(t *testing.T, err error, httpCode, errorCode int) {
	t.Helper()
	require.NotNil(t, err)
	parsed := code.ParseErrorCode(err)
	assert.Equal(t, httpCode, parsed.GeneralCode)
	assert.Equal(t, errorCode, parsed.Code)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	t.Run("register then read back", func(t *testing.T) {
		registered, err := s.authUseCase.Register(ctx, "  alice ", " Alice@Example.COM ", "secret1")
		require.Nil(t, err)
		assert.Equal(t, "alice", registered.Username)
		assert.Equal(t, "alice@example.com", registered.Email)
		assert.Equal(t, domain.RoleUser, registered.Role)
		assert.Empty(t, registered.Password)
		assert.NotEmpty(t, registered.AccessToken)
		assert.NotEmpty(t, registered.RefreshToken)

		stored, err := s.accountRepo.GetByEmail(ctx, "alice@example.com")
		require.Nil(t, err)
		assert.NotEqual(t, "secret1", stored.Password)

		_, err = s.refreshSessionRepo.Get(ctx, registered.ID, registered.RefreshToken, time.Now())
		assert.Nil(t, err)

		verified, err := s.authUseCase.Verify(ctx, registered.AccessToken)
		require.Nil(t, err)
		assert.Equal(t, registered.ID, verified.ID)
		assert.Empty(t, verified.Password)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.authUseCase.Register(ctx, "alice2", "ALICE@example.com", "secret1")
		assertErrorCode(t, err, http.StatusBadRequest, code.DuplicateAccount)
	})

	t.Run("validation", func(t *testing.T) {
		for _, testCase := range []struct {
			name     string
			username string
			email    string
			password string
		}{
			{name: "short username", username: "ab", email: "ab@example.com", password: "secret1"},
			{name: "long username", username: strings.Repeat("a", 51), email: "long@example.com", password: "secret1"},
			{name: "bad email", username: "bob", email: "not-an-email", password: "secret1"},
			{name: "short password", username: "bob", email: "bob@example.com", password: "12345"},
			{name: "long password", username: "bob", email: "bob@example.com", password: strings.Repeat("a", 73)},
			{name: "multibyte password over bcrypt limit", username: "bob", email: "bob@example.com", password: strings.Repeat("😀", 20)},
			{name: "missing password", username: "bob", email: "bob@example.com", password: ""},
		} {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := s.authUseCase.Register(ctx, testCase.username, testCase.email, testCase.password)
				assertErrorCode(t, err, http.StatusBadRequest, code.Validation)
			})
		}
		_, err := s.accountRepo.GetByEmail(ctx, "bob@example.com")
		assert.ErrorIs(t, err, domain.ErrNoData)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	registered, err := s.authUseCase.Register(ctx, "alice", "alice@example.com", "secret1")
	require.Nil(t, err)

	t.Run("each login opens another session", func(t *testing.T) {
		first, err := s.authUseCase.Login(ctx, "ALICE@example.com", "secret1")
		require.Nil(t, err)
		second, err := s.authUseCase.Login(ctx, "alice@example.com", "secret1")
		require.Nil(t, err)
		assert.Equal(t, registered.ID, first.ID)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

		for _, refreshToken := range []string{registered.RefreshToken, first.RefreshToken, second.RefreshToken} {
			_, err := s.refreshSessionRepo.Get(ctx, registered.ID, refreshToken, time.Now())
			assert.Nil(t, err)
		}
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, errUnknown := s.authUseCase.Login(ctx, "nobody@example.com", "secret1")
		assertErrorCode(t, errUnknown, http.StatusBadRequest, code.InvalidCredential)
		_, errPassword := s.authUseCase.Login(ctx, "alice@example.com", "wrong-password")
		assertErrorCode(t, errPassword, http.StatusBadRequest, code.InvalidCredential)
		assert.Equal(t, code.ParseErrorCode(errUnknown).Message, code.ParseErrorCode(errPassword).Message)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := s.authUseCase.Login(ctx, "alice@example.com", "")
		assertErrorCode(t, err, http.StatusBadRequest, code.Validation)
	})
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	registered, err := s.authUseCase.Register(ctx, "alice", "alice@example.com", "secret1")
	require.Nil(t, err)
	other, err := s.authUseCase.Login(ctx, "alice@example.com", "secret1")
	require.Nil(t, err)

	t.Run("refresh issues access token only", func(t *testing.T) {
		refreshed, err := s.authUseCase.RefreshAccessToken(ctx, registered.RefreshToken)
		require.Nil(t, err)
		assert.Equal(t, registered.ID, refreshed.ID)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.Empty(t, refreshed.RefreshToken)

		_, err = s.authUseCase.Verify(ctx, refreshed.AccessToken)
		assert.Nil(t, err)

		// not rotated
		_, err = s.authUseCase.RefreshAccessToken(ctx, registered.RefreshToken)
		assert.Nil(t, err)
	})

	t.Run("refresh failures", func(t *testing.T) {
		_, err := s.authUseCase.RefreshAccessToken(ctx, "")
		assertErrorCode(t, err, http.StatusUnauthorized, code.NoToken)

		_, err = s.authUseCase.RefreshAccessToken(ctx, "garbage")
		assertErrorCode(t, err, http.StatusUnauthorized, code.InvalidToken)

		_, err = s.authUseCase.RefreshAccessToken(ctx, registered.AccessToken)
		assertErrorCode(t, err, http.StatusUnauthorized, code.InvalidToken)

		unrecorded, _, err := s.tokenRepo.GenerateToken(registered.ID, domain.REFRESH_TOKEN, time.Now())
		require.Nil(t, err)
		_, err = s.authUseCase.RefreshAccessToken(ctx, unrecorded)
		assertErrorCode(t, err, http.StatusUnauthorized, code.NoSession)

		orphan, _, err := s.tokenRepo.GenerateToken(registered.ID+1, domain.REFRESH_TOKEN, time.Now())
		require.Nil(t, err)
		_, err = s.refreshSessionRepo.Create(ctx, registered.ID+1, orphan, time.Now().Add(time.Hour))
		require.Nil(t, err)
		_, err = s.authUseCase.RefreshAccessToken(ctx, orphan)
		assertErrorCode(t, err, http.StatusNotFound, code.AccountNotFound)
	})

	t.Run("session record bound to its account", func(t *testing.T) {
		forged, _, err := s.tokenRepo.GenerateToken(registered.ID+2, domain.REFRESH_TOKEN, time.Now())
		require.Nil(t, err)
		_, err = s.refreshSessionRepo.Create(ctx, registered.ID, forged, time.Now().Add(time.Hour))
		require.Nil(t, err)
		_, err = s.authUseCase.RefreshAccessToken(ctx, forged)
		assertErrorCode(t, err, http.StatusUnauthorized, code.NoSession)
	})

	t.Run("expired session record is not honored", func(t *testing.T) {
		token, _, err := s.tokenRepo.GenerateToken(registered.ID, domain.REFRESH_TOKEN, time.Now())
		require.Nil(t, err)
		_, err = s.refreshSessionRepo.Create(ctx, registered.ID, token, time.Now().Add(-time.Second))
		require.Nil(t, err)
		_, err = s.authUseCase.RefreshAccessToken(ctx, token)
		assertErrorCode(t, err, http.StatusUnauthorized, code.NoSession)
	})

	t.Run("logout revokes only its own session", func(t *testing.T) {
		assert.Nil(t, s.authUseCase.Logout(ctx, registered.RefreshToken))
		_, err := s.authUseCase.RefreshAccessToken(ctx, registered.RefreshToken)
		assertErrorCode(t, err, http.StatusUnauthorized, code.NoSession)

		_, err = s.authUseCase.RefreshAccessToken(ctx, other.RefreshToken)
		assert.Nil(t, err)

		// access tokens stay valid until they expire
		_, err = s.authUseCase.Verify(ctx, registered.AccessToken)
		assert.Nil(t, err)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		assert.Nil(t, s.authUseCase.Logout(ctx, registered.RefreshToken))
		assert.Nil(t, s.authUseCase.Logout(ctx, ""))
		assert.Nil(t, s.authUseCase.Logout(ctx, "never-issued"))
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	registered, err := s.authUseCase.Register(ctx, "alice", "alice@example.com", "secret1")
	require.Nil(t, err)

	_, err = s.authUseCase.Verify(ctx, "")
	assertErrorCode(t, err, http.StatusUnauthorized, code.NoToken)

	_, err = s.authUseCase.Verify(ctx, registered.RefreshToken)
	assertErrorCode(t, err, http.StatusUnauthorized, code.InvalidToken)

	pastUseCase, err := auth.CreateAuthUseCase(s.accountRepo, s.refreshSessionRepo, s.tokenRepo, s.logger,
		auth.WithBcryptCost(4),
		auth.WithNowFunc(func() time.Time { return time.Now().Add(-2 * time.Hour) }),
	)
	require.Nil(t, err)
	stale, err := pastUseCase.Login(ctx, "alice@example.com", "secret1")
	require.Nil(t, err)
	_, err = s.authUseCase.Verify(ctx, stale.AccessToken)
	assertErrorCode(t, err, http.StatusUnauthorized, code.InvalidToken)

	ghost, _, err := s.tokenRepo.GenerateToken(registered.ID+1, domain.ACCESS_TOKEN, time.Now())
	require.Nil(t, err)
	_, err = s.authUseCase.Verify(ctx, ghost)
	assertErrorCode(t, err, http.StatusUnauthorized, code.AccountNotFound)
}

func TestAccountUseCase(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	alice, err := s.authUseCase.Register(ctx, "alice", "alice@example.com", "secret1")
	require.Nil(t, err)
	_, err = s.authUseCase.Register(ctx, "bob", "bob@example.com", "secret1")
	require.Nil(t, err)

	found, err := s.accountUseCase.Get(ctx, alice.ID)
	require.Nil(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Empty(t, found.Password)

	_, err = s.accountUseCase.Get(ctx, alice.ID+12345)
	assertErrorCode(t, err, http.StatusNotFound, code.AccountNotFound)

	username := " alice-new "
	updated, err := s.accountUseCase.UpdateProfile(ctx, alice.ID, &domain.AccountUpdate{Username: &username})
	require.Nil(t, err)
	assert.Equal(t, "alice-new", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)

	sameEmail := "ALICE@example.com"
	updated, err = s.accountUseCase.UpdateProfile(ctx, alice.ID, &domain.AccountUpdate{Email: &sameEmail})
	require.Nil(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)

	taken := "bob@example.com"
	_, err = s.accountUseCase.UpdateProfile(ctx, alice.ID, &domain.AccountUpdate{Email: &taken})
	assertErrorCode(t, err, http.StatusBadRequest, code.DuplicateAccount)

	short := "ab"
	_, err = s.accountUseCase.UpdateProfile(ctx, alice.ID, &domain.AccountUpdate{Username: &short})
	assertErrorCode(t, err, http.StatusBadRequest, code.Validation)

	unchanged, err := s.accountUseCase.UpdateProfile(ctx, alice.ID, &domain.AccountUpdate{})
	require.Nil(t, err)
	assert.Equal(t, "alice-new", unchanged.Username)

	free := "free@example.com"
	_, err = s.accountUseCase.UpdateProfile(ctx, alice.ID+12345, &domain.AccountUpdate{Email: &free})
	assertErrorCode(t, err, http.StatusNotFound, code.AccountNotFound)

	login, err := s.authUseCase.Login(ctx, "alice@example.com", "secret1")
	require.Nil(t, err)
	assert.Equal(t, "alice-new", login.Username)
}
