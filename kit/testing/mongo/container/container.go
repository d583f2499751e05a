package container

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	testingKit "github.com/superj80820/session-auth/kit/testing"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const image = "mongo:6"

type mongodbContainer struct {
	*mongodb.MongoDBContainer
	uri string
}

func CreateMongoDB(ctx context.Context) (testingKit.Container, error) {
	container, err := mongodb.RunContainer(ctx, testcontainers.WithImage(image))
	if err != nil {
		return nil, errors.Wrap(err, "run mongodb container failed")
	}
	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, errors.Wrap(err, "get mongodb connection string failed")
	}
	return &mongodbContainer{MongoDBContainer: container, uri: uri}, nil
}

func Setup(t *testing.T, ctx context.Context) testingKit.Container {
	return testingKit.Setup(t, ctx, CreateMongoDB)
}

func (m *mongodbContainer) GetURI() string {
	return m.uri
}
