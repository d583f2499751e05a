package domain

import (
	"context"
	"time"
)

type AccountTokenEnum int

const (
	UNKNOWN_TOKEN AccountTokenEnum = iota
	ACCESS_TOKEN
	REFRESH_TOKEN
)

func (a AccountTokenEnum) String() string {
	switch a {
	case ACCESS_TOKEN:
		return "access"
	case REFRESH_TOKEN:
		return "refresh"
	}
	return "unknown"
}

type TokenClaims struct {
	AccountID int64
	Type      AccountTokenEnum
	ExpireAt  time.Time
}

// RefreshSession binds one issued refresh token to its account. The record
// is the only thing that makes a refresh token honorable.
type RefreshSession struct {
	ID        int64     `bson:"_id" gorm:"primaryKey;autoIncrement:false"`
	AccountID int64     `bson:"account_id" gorm:"index:idx_refresh_session_token_account,priority:2;not null"`
	Token     string    `bson:"token" gorm:"size:512;index:idx_refresh_session_token_account,priority:1;not null"`
	ExpireAt  time.Time `bson:"expire_at" gorm:"index;not null"`
	CreatedAt time.Time `bson:"created_at"`
}

type TokenRepo interface {
	GenerateToken(accountID int64, tokenType AccountTokenEnum, now time.Time) (token string, expireAt time.Time, err error)
	VerifyToken(token string, tokenType AccountTokenEnum) (*TokenClaims, error)
}

type RefreshSessionRepo interface {
	Create(ctx context.Context, accountID int64, token string, expireAt time.Time) (*RefreshSession, error)
	// Get only matches records that have not expired at now.
	Get(ctx context.Context, accountID int64, token string, now time.Time) (*RefreshSession, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AuthUseCase interface {
	Register(ctx context.Context, username, email, password string) (*Account, error)
	Login(ctx context.Context, email, password string) (*Account, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (*Account, error)
	Verify(ctx context.Context, accessToken string) (*Account, error)
}

type CSRFRepo interface {
	GenerateSecret() (string, error)
	GenerateToken(secret string) (string, error)
	VerifyToken(secret, token string) bool
}

type SessionPurgeUseCase interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
