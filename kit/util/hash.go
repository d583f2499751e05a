package util

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword fails for passwords longer than 72 bytes instead of silently
// truncating them.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "generate from password failed")
	}
	return string(hash), nil
}

// ComparePassword reports a mismatch as false. Only a hash that cannot be
// parsed is an error.
func ComparePassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "compare hash and password failed")
	}
	return true, nil
}

func SignHMAC(secret, message []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return mac.Sum(nil)
}

func VerifyHMAC(secret, message, signature []byte) bool {
	return hmac.Equal(SignHMAC(secret, message), signature)
}
