package container

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	testingKit "github.com/superj80820/session-auth/kit/testing"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

const image = "docker.io/redis:7"

type redisContainer struct {
	*redis.RedisContainer
	addr string
}

// CreateRedis starts redis and exposes it as host:port, the form go-redis
// expects for Addr.
func CreateRedis(ctx context.Context) (testingKit.Container, error) {
	container, err := redis.RunContainer(ctx,
		testcontainers.WithImage(image),
		redis.WithLogLevel(redis.LogLevelNotice),
	)
	if err != nil {
		return nil, errors.Wrap(err, "run redis container failed")
	}
	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, errors.Wrap(err, "get redis endpoint failed")
	}
	return &redisContainer{RedisContainer: container, addr: addr}, nil
}

func Setup(t *testing.T, ctx context.Context) testingKit.Container {
	return testingKit.Setup(t, ctx, CreateRedis)
}

func (r *redisContainer) GetURI() string {
	return r.addr
}
