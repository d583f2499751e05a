package testing

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// Container is a disposable backing service reachable at GetURI.
type Container interface {
	GetURI() string
	Terminate(context.Context) error
}

// Setup starts a container for the duration of t. Tests are skipped when no
// docker provider is available.
func Setup[C Container](t *testing.T, ctx context.Context, create func(context.Context) (C, error)) C {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	container, err := create(ctx)
	if err != nil {
		t.Fatalf("start container failed: %+v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate container failed: %+v", err)
		}
	})
	return container
}
