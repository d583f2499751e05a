package orm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	ormKit "github.com/superj80820/session-auth/kit/orm"
	utilKit "github.com/superj80820/session-auth/kit/util"
)

type accountEntity struct {
	domain.Account
}

func (accountEntity) TableName() string {
	return "account"
}

type accountRepo struct {
	db               *ormKit.DB
	uniqueIDGenerate *utilKit.UniqueIDGenerate
}

func CreateAccountRepo(db *ormKit.DB) (domain.AccountRepo, error) {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return nil, errors.Wrap(err, "get unique id generate failed")
	}
	if err := db.AutoMigrate(&accountEntity{}); err != nil {
		return nil, errors.Wrap(err, "migrate account failed")
	}
	return &accountRepo{
		db:               db,
		uniqueIDGenerate: uniqueIDGenerate,
	}, nil
}

func (a *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now()
	if account.ID == 0 {
		account.ID = a.uniqueIDGenerate.Generate().GetInt64()
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	entity := accountEntity{Account: *account}
	if err := a.db.WithContext(ctx).Create(&entity).Error; errors.Is(err, ormKit.ErrDuplicatedKey) {
		return errors.Wrap(domain.ErrDuplicate, err.Error())
	} else if err != nil {
		return errors.Wrap(err, "create account failed")
	}
	return nil
}

func (a *accountRepo) first(ctx context.Context, query string, args ...interface{}) (*domain.Account, error) {
	var entity accountEntity
	if err := a.db.WithContext(ctx).Where(query, args...).First(&entity).Error; errors.Is(err, ormKit.ErrRecordNotFound) {
		return nil, errors.Wrap(domain.ErrNoData, "account not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}
	return &entity.Account, nil
}

func (a *accountRepo) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	return a.first(ctx, "id = ?", accountID)
}

func (a *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return a.first(ctx, "email = ?", email)
}

func (a *accountRepo) Update(ctx context.Context, accountID int64, update *domain.AccountUpdate) (*domain.Account, error) {
	columns := map[string]interface{}{"updated_at": time.Now()}
	if update.Username != nil {
		columns["username"] = *update.Username
	}
	if update.Email != nil {
		columns["email"] = *update.Email
	}

	result := a.db.WithContext(ctx).Model(&accountEntity{}).Where("id = ?", accountID).Updates(columns)
	if errors.Is(result.Error, ormKit.ErrDuplicatedKey) {
		return nil, errors.Wrap(domain.ErrDuplicate, result.Error.Error())
	} else if result.Error != nil {
		return nil, errors.Wrap(result.Error, "update account failed")
	}
	if result.RowsAffected == 0 {
		return nil, errors.Wrap(domain.ErrNoData, "account not found")
	}
	return a.Get(ctx, accountID)
}
