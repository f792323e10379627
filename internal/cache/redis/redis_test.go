//go:build integration
// +build integration

package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/entities"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

func TestMain(m *testing.M) {
	shutdown := setup()

	code := m.Run()
	shutdown()
	os.Exit(code)
}

func setup() func() {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		logrus.WithError(err).Fatalf("failed to create container")
	}

	host, err := c.Host(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to get host")
	}

	port, err := c.MappedPort(ctx, "6379")
	if err != nil {
		logrus.WithError(err).Fatal("failed to map port")
	}

	client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%d", host, port.Int())})

	return func() {
		client.Close()
		c.Terminate(ctx)
	}
}

func TestRedis_ReadEmpty(t *testing.T) {
	c := New(client, "empty")

	s, err := c.Read(ctx)
	require.NoError(t, err)
	require.True(t, s.Empty())
}

func TestRedis_WriteRead(t *testing.T) {
	c := New(client, "")
	defer client.Del(ctx, DefaultKey)

	s := cache.New()
	s.Identity = &entities.Identity{ID: "1", Handle: "@alexj"}
	s.PutPost(&entities.Post{ID: "1", CreatedAt: time.Unix(100, 0).UTC(), Images: []entities.Image{}, Comments: []entities.Comment{}})
	s.DirtyProfiles["1"] = true

	require.NoError(t, c.Write(ctx, s))

	got, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, s, got)
}
