package orm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	ormKit "github.com/superj80820/session-auth/kit/orm"
	utilKit "github.com/superj80820/session-auth/kit/util"
)

type refreshSessionEntity struct {
	domain.RefreshSession
}

func (refreshSessionEntity) TableName() string {
	return "refresh_session"
}

type refreshSessionRepo struct {
	db               *ormKit.DB
	uniqueIDGenerate *utilKit.UniqueIDGenerate
}

func CreateRefreshSessionRepo(db *ormKit.DB) (domain.RefreshSessionRepo, error) {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return nil, errors.Wrap(err, "get unique id generate failed")
	}
	if err := db.AutoMigrate(&refreshSessionEntity{}); err != nil {
		return nil, errors.Wrap(err, "migrate refresh session failed")
	}
	return &refreshSessionRepo{
		db:               db,
		uniqueIDGenerate: uniqueIDGenerate,
	}, nil
}

func (r *refreshSessionRepo) Create(ctx context.Context, accountID int64, token string, expireAt time.Time) (*domain.RefreshSession, error) {
	entity := refreshSessionEntity{
		RefreshSession: domain.RefreshSession{
			ID:        r.uniqueIDGenerate.Generate().GetInt64(),
			AccountID: accountID,
			Token:     token,
			ExpireAt:  expireAt,
			CreatedAt: time.Now(),
		},
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, errors.Wrap(err, "save refresh session failed")
	}
	return &entity.RefreshSession, nil
}

func (r *refreshSessionRepo) Get(ctx context.Context, accountID int64, token string, now time.Time) (*domain.RefreshSession, error) {
	var entity refreshSessionEntity
	err := r.db.WithContext(ctx).
		Where("token = ? AND account_id = ? AND expire_at > ?", token, accountID, now).
		First(&entity).Error
	if errors.Is(err, ormKit.ErrRecordNotFound) {
		return nil, errors.Wrap(domain.ErrNoData, "refresh session not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "get refresh session failed")
	}
	return &entity.RefreshSession, nil
}

func (r *refreshSessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&refreshSessionEntity{}).Error; err != nil {
		return errors.Wrap(err, "delete refresh session failed")
	}
	return nil
}

func (r *refreshSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expire_at <= ?", now).Delete(&refreshSessionEntity{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "delete expired refresh sessions failed")
	}
	return result.RowsAffected, nil
}
