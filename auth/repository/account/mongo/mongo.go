package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	mongoKit "github.com/superj80820/session-auth/kit/mongo"
	utilKit "github.com/superj80820/session-auth/kit/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "accounts"

type accountRepo struct {
	collection       *mongo.Collection
	uniqueIDGenerate *utilKit.UniqueIDGenerate
}

// CreateAccountRepo stores accounts in db and makes sure email is unique.
func CreateAccountRepo(ctx context.Context, db *mongo.Database) (domain.AccountRepo, error) {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return nil, errors.Wrap(err, "get unique id generate failed")
	}
	collection := db.Collection(collectionName)
	if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}); err != nil {
		return nil, errors.Wrap(err, "create email index failed")
	}
	return &accountRepo{
		collection:       collection,
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

	if _, err := a.collection.InsertOne(ctx, account); mongoKit.IsDuplicateKey(err) {
		return errors.Wrap(domain.ErrDuplicate, err.Error())
	} else if err != nil {
		return errors.Wrap(err, "insert account failed")
	}
	return nil
}

func (a *accountRepo) findOne(ctx context.Context, filter bson.D) (*domain.Account, error) {
	var account domain.Account
	if err := a.collection.FindOne(ctx, filter).Decode(&account); errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(domain.ErrNoData, "account not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "find account failed")
	}
	return &account, nil
}

func (a *accountRepo) Get(ctx context.Context, accountID int64) (*domain.Account, error) {
	return a.findOne(ctx, bson.D{{Key: "_id", Value: accountID}})
}

func (a *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return a.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (a *accountRepo) Update(ctx context.Context, accountID int64, update *domain.AccountUpdate) (*domain.Account, error) {
	set := bson.D{{Key: "updated_at", Value: time.Now()}}
	if update.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *update.Username})
	}
	if update.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *update.Email})
	}

	var account domain.Account
	err := a.collection.FindOneAndUpdate(
		ctx,
		bson.D{{Key: "_id", Value: accountID}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(domain.ErrNoData, "account not found")
	} else if mongoKit.IsDuplicateKey(err) {
		return nil, errors.Wrap(domain.ErrDuplicate, err.Error())
	} else if err != nil {
		return nil, errors.Wrap(err, "update account failed")
	}
	return &account, nil
}
