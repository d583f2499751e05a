package csrf

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/jxskiss/base62"
	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	utilKit "github.com/superj80820/session-auth/kit/util"
)

const (
	secretLength = 18
	saltLength   = 8
)

type csrfRepo struct{}

// CreateCSRFRepo issues double submit tokens of the form salt-hmac(secret, salt).
// The salt is base62 so the first '-' always splits the token.
func CreateCSRFRepo() domain.CSRFRepo {
	return &csrfRepo{}
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "read random failed")
	}
	return b, nil
}

func (c *csrfRepo) GenerateSecret() (string, error) {
	secret, err := randomBytes(secretLength)
	if err != nil {
		return "", errors.Wrap(err, "generate secret failed")
	}
	return base64.RawURLEncoding.EncodeToString(secret), nil
}

func (c *csrfRepo) GenerateToken(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty csrf secret")
	}
	saltBytes, err := randomBytes(saltLength)
	if err != nil {
		return "", errors.Wrap(err, "generate salt failed")
	}
	salt := base62.EncodeToString(saltBytes)
	return salt + "-" + sign(secret, salt), nil
}

func (c *csrfRepo) VerifyToken(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	salt, signature, ok := strings.Cut(token, "-")
	if !ok || salt == "" {
		return false
	}
	mac, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return utilKit.VerifyHMAC([]byte(secret), []byte(salt), mac)
}

func sign(secret, salt string) string {
	return base64.RawURLEncoding.EncodeToString(utilKit.SignHMAC([]byte(secret), []byte(salt)))
}
