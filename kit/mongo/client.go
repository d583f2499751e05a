package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CreateClient connects and pings within timeout so a bad uri fails at
// startup instead of on the first request.
func CreateClient(ctx context.Context, uri string, timeout time.Duration) (*mongoDriver.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongoDriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo failed")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo failed")
	}
	return client, nil
}

func IsDuplicateKey(err error) bool {
	return mongoDriver.IsDuplicateKeyError(err)
}
