//go:build integration
// +build integration

package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/storage"
)

var (
	db  *mongo.Database
	ctx = context.Background()
	s   storage.Storage
)

func TestMain(m *testing.M) {
	shutdown := setup()

	s = New(db, 5*time.Second)

	code := m.Run()
	shutdown()
	os.Exit(code)
}

func setup() func() {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:6",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
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

	port, err := c.MappedPort(ctx, "27017")
	if err != nil {
		logrus.WithError(err).Fatal("failed to map port")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%d", host, port.Int())))
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect")
	}

	db = client.Database("citypulse")

	return func() {
		client.Disconnect(ctx)
		c.Terminate(ctx)
	}
}

func cleanup(t *testing.T) {
	_, err := db.Collection(postsCollection).DeleteMany(ctx, bson.M{})
	require.NoError(t, err)
	_, err = db.Collection(profilesCollection).DeleteMany(ctx, bson.M{})
	require.NoError(t, err)
}

func testPost(id string, createdAt time.Time) *entities.Post {
	return &entities.Post{
		ID:           id,
		AuthorID:     "author",
		Title:        "Broken streetlight",
		AuthorHandle: "@alexj",
		Category:     "Safety",
		Priority:     entities.PriorityLow,
		Images:       []entities.Image{{Src: "src", Alt: "alt"}},
		Comments:     []entities.Comment{{User: "Sam", Text: "+1", Timestamp: time.Unix(10, 0).UTC()}},
		Status:       entities.StatusPending,
		CreatedAt:    createdAt,
	}
}

func TestMg_Posts(t *testing.T) {
	defer cleanup(t)

	p1 := testPost("1", time.Unix(1000, 0).UTC())
	p2 := testPost("2", time.Unix(2000, 0).UTC())

	require.NoError(t, s.UpsertPost(ctx, p1))
	require.NoError(t, s.UpsertPost(ctx, p2))
	require.NoError(t, s.UpsertPost(ctx, p2))

	pp, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, pp, 2)
	require.Equal(t, "2", pp[0].ID)
	require.Equal(t, p1.Images, pp[1].Images)
	require.Equal(t, p1.Comments, pp[1].Comments)

	_, err = s.GetPost(ctx, "3")
	require.Equal(t, storage.ErrNotFound, err)

	require.NoError(t, s.DeletePost(ctx, "2"))
	require.Equal(t, storage.ErrNotFound, s.DeletePost(ctx, "2"))

	pp, err = s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, pp, 1)
}

func TestMg_UpsertPost_KeepsImmutableFields(t *testing.T) {
	defer cleanup(t)

	p := testPost("1", time.Unix(1000, 0).UTC())
	require.NoError(t, s.UpsertPost(ctx, p))

	changed := p.Clone()
	changed.AuthorHandle = "@other"
	changed.CreatedAt = time.Unix(9000, 0).UTC()
	changed.Status = entities.StatusInProgress
	require.NoError(t, s.UpsertPost(ctx, changed))

	got, err := s.GetPost(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "@alexj", got.AuthorHandle)
	require.True(t, p.CreatedAt.Equal(got.CreatedAt))
	require.Equal(t, entities.StatusInProgress, got.Status)
}

func TestMg_Profile(t *testing.T) {
	defer cleanup(t)

	_, err := s.GetProfile(ctx, "1")
	require.Equal(t, storage.ErrNotFound, err)

	p := &entities.Profile{ID: "1", Name: "Alex", Handle: "@alexj", Interests: []string{"Parks"}, Coins: 7}
	require.NoError(t, s.SetProfile(ctx, p))

	lower := p.Clone()
	lower.Coins = 2
	lower.Name = "Alex J"
	require.NoError(t, s.SetProfile(ctx, lower))

	got, err := s.GetProfile(ctx, "1")
	require.NoError(t, err)
	require.EqualValues(t, 7, got.Coins)
	require.Equal(t, "Alex J", got.Name)
	require.Equal(t, []string{"Parks"}, got.Interests)
}
