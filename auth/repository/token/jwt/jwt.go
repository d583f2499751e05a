package jwt

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
)

type tokenClaims struct {
	AccountID string `json:"id"`
	Type      string `json:"typ"`
	jwt.RegisteredClaims
}

type tokenRepo struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser
}

// CreateTokenRepo signs HS256 tokens with secret. Access and refresh tokens
// share the key and are told apart by the typ claim.
func CreateTokenRepo(secret string, accessTTL, refreshTTL time.Duration) (domain.TokenRepo, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &tokenRepo{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}, nil
}

func (t *tokenRepo) ttl(tokenType domain.AccountTokenEnum) (time.Duration, error) {
	switch tokenType {
	case domain.ACCESS_TOKEN:
		return t.accessTTL, nil
	case domain.REFRESH_TOKEN:
		return t.refreshTTL, nil
	}
	return 0, errors.New("unknown token enum")
}

func (t *tokenRepo) GenerateToken(accountID int64, tokenType domain.AccountTokenEnum, now time.Time) (string, time.Time, error) {
	ttl, err := t.ttl(tokenType)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "get token ttl failed")
	}
	expireAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		AccountID: strconv.FormatInt(accountID, 10),
		Type:      tokenType.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireAt),
		},
	})
	signedToken, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signed token failed")
	}
	return signedToken, expireAt, nil
}

// VerifyToken never tells callers why a token failed. Every reason wraps
// domain.ErrInvalidToken.
func (t *tokenRepo) VerifyToken(token string, tokenType domain.AccountTokenEnum) (*domain.TokenClaims, error) {
	var claims tokenClaims
	if _, err := t.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}); err != nil {
		return nil, errors.Wrap(domain.ErrInvalidToken, err.Error())
	}
	if claims.Type != tokenType.String() {
		return nil, errors.Wrap(domain.ErrInvalidToken, "unexpected token type "+claims.Type)
	}
	accountID, err := strconv.ParseInt(claims.AccountID, 10, 64)
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidToken, "parse account id failed")
	}
	return &domain.TokenClaims{
		AccountID: accountID,
		Type:      tokenType,
		ExpireAt:  claims.ExpiresAt.Time,
	}, nil
}
