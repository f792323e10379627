// Package seed populates empty remote storage with demo data.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/storage"
)

var log = logrus.WithField("layer", "seed").WithField("package", "seed")

// nolint:gochecknoglobals
var namespace = uuid.MustParse("6f1c5a4e-3b0a-4c55-9d8e-2a4f1b7c9e01")

// ID returns stable id for demo entity name.
func ID(name string) string {
	return uuid.NewSHA1(namespace, []byte(name)).String()
}

// Seeder ...
type Seeder struct {
	storage storage.Storage
	cache   cache.Cache
	now     func() time.Time
}

// New returns Seeder. When c is nil seeded posts are not written into local cache.
func New(s storage.Storage, c cache.Cache) *Seeder {
	return &Seeder{
		storage: s,
		cache:   c,
		now:     time.Now,
	}
}

// EnsureSeeded returns remote posts. If remote has no posts, it stores demo authors and posts first
// and returns what remote lists afterwards. Demo posts deleted earlier stay deleted.
// It is a no-op once remote has at least one post.
func (s *Seeder) EnsureSeeded(ctx context.Context) ([]*entities.Post, error) {
	posts, err := s.storage.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if len(posts) > 0 {
		return posts, nil
	}

	now := entities.Timestamp(s.now())

	for _, v := range Profiles() {
		if err := s.storage.SetProfile(ctx, v); err != nil {
			return nil, fmt.Errorf("failed to seed profile %s: %w", v.Handle, err)
		}
	}

	for _, v := range Posts(now) {
		if err := s.storage.UpsertPost(ctx, v); err != nil {
			return nil, fmt.Errorf("failed to seed post %s: %w", v.ID, err)
		}
	}

	posts, err = s.storage.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeded posts: %w", err)
	}

	if len(posts) == 0 {
		log.Warn("demo posts were deleted, remote storage stays empty")
		return posts, nil
	}

	log.WithField("count", len(posts)).Info("remote storage seeded")

	if s.cache != nil {
		if err := s.writeCache(ctx, posts, now); err != nil {
			log.WithError(err).Error("failed to write seeded posts into cache")
		}
	}

	return entities.ClonePosts(posts), nil
}

func (s *Seeder) writeCache(ctx context.Context, posts []*entities.Post, now time.Time) error {
	snap, err := s.cache.Read(ctx)
	if err != nil {
		return err
	}

	snap = snap.Normalize()
	snap.ReplacePosts(entities.ClonePosts(posts))
	for _, v := range Profiles() {
		if _, ok := snap.Profiles[v.ID]; !ok {
			snap.Profiles[v.ID] = v
		}
	}
	snap.SyncedAt = now

	return s.cache.Write(ctx, snap)
}
