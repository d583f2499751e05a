package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/session-auth/domain"
	utilKit "github.com/superj80820/session-auth/kit/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "refresh_sessions"

type refreshSessionRepo struct {
	collection       *mongo.Collection
	uniqueIDGenerate *utilKit.UniqueIDGenerate
}

// CreateRefreshSessionRepo indexes sessions by (token, account_id). The TTL
// index on expire_at lets mongo drop expired records on its own.
func CreateRefreshSessionRepo(ctx context.Context, db *mongo.Database) (domain.RefreshSessionRepo, error) {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return nil, errors.Wrap(err, "get unique id generate failed")
	}
	collection := db.Collection(collectionName)
	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}, {Key: "account_id", Value: 1}},
			Options: options.Index().SetName("token_account_id"),
		},
		{
			Keys:    bson.D{{Key: "expire_at", Value: 1}},
			Options: options.Index().SetName("expire_at_ttl").SetExpireAfterSeconds(0),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "create refresh session indexes failed")
	}
	return &refreshSessionRepo{
		collection:       collection,
		uniqueIDGenerate: uniqueIDGenerate,
	}, nil
}

func (r *refreshSessionRepo) Create(ctx context.Context, accountID int64, token string, expireAt time.Time) (*domain.RefreshSession, error) {
	refreshSession := domain.RefreshSession{
		ID:        r.uniqueIDGenerate.Generate().GetInt64(),
		AccountID: accountID,
		Token:     token,
		ExpireAt:  expireAt,
		CreatedAt: time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, refreshSession); err != nil {
		return nil, errors.Wrap(err, "insert refresh session failed")
	}
	return &refreshSession, nil
}

func (r *refreshSessionRepo) Get(ctx context.Context, accountID int64, token string, now time.Time) (*domain.RefreshSession, error) {
	var refreshSession domain.RefreshSession
	err := r.collection.FindOne(ctx, bson.D{
		{Key: "token", Value: token},
		{Key: "account_id", Value: accountID},
		{Key: "expire_at", Value: bson.D{{Key: "$gt", Value: now}}},
	}).Decode(&refreshSession)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(domain.ErrNoData, "refresh session not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "find refresh session failed")
	}
	return &refreshSession, nil
}

func (r *refreshSessionRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.D{{Key: "token", Value: token}}); err != nil {
		return errors.Wrap(err, "delete refresh session failed")
	}
	return nil
}

func (r *refreshSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.D{{Key: "expire_at", Value: bson.D{{Key: "$lte", Value: now}}}})
	if err != nil {
		return 0, errors.Wrap(err, "delete expired refresh sessions failed")
	}
	return result.DeletedCount, nil
}
