// Package impl is implementation of service interface.
package impl

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/blob"
	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/identity"
	"github.com/Decentr-net/citypulse/internal/service"
	"github.com/Decentr-net/citypulse/internal/storage"
)

var log = logrus.WithField("layer", "service").WithField("package", "impl")

// Seeder returns remote posts seeding remote storage when it is empty.
type Seeder interface {
	EnsureSeeded(ctx context.Context) ([]*entities.Post, error)
}

type srv struct {
	storage  storage.Storage
	blob     blob.Storage
	cache    cache.Cache
	identity identity.Resolver
	seeder   Seeder

	now   func() time.Time
	newID func() string

	// mu serializes snapshot read-modify-write, remote calls are never made under it.
	mu sync.Mutex
}

// New creates new instance of service.
func New(s storage.Storage, b blob.Storage, c cache.Cache, r identity.Resolver, sd Seeder) service.Service {
	return &srv{
		storage:  s,
		blob:     b,
		cache:    c,
		identity: r,
		seeder:   sd,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// timestamp returns current time as it will be read back from storage.
func (s *srv) timestamp() time.Time {
	return entities.Timestamp(s.now())
}

// snapshot returns copy of cached snapshot. Unreadable cache is treated as empty one.
func (s *srv) snapshot(ctx context.Context) *cache.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.cache.Read(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to read cache, using empty one")
		return cache.New()
	}

	return snap.Normalize()
}

// update applies f to cached snapshot and writes it back.
// Nothing is written when the snapshot can not be read.
func (s *srv) update(ctx context.Context, f func(snap *cache.Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.cache.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	snap = snap.Normalize()
	f(snap)

	if err := s.cache.Write(ctx, snap); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	return nil
}

// dualWrite sends entity to remote storage and then applies it to local cache.
// apply receives synced=false when remote write failed, the entity must be marked dirty then.
// Remote failure is returned wrapped in storage.ErrUnavailable after cache is updated.
func (s *srv) dualWrite(ctx context.Context, remote func(ctx context.Context) error, apply func(snap *cache.Snapshot, synced bool)) error {
	rerr := remote(ctx)
	if rerr != nil {
		log.WithError(rerr).Warn("remote write failed, keeping local copy")
	}

	if err := s.update(ctx, func(snap *cache.Snapshot) {
		apply(snap, rerr == nil)
	}); err != nil {
		if rerr != nil {
			// entity is neither in remote nor in cache
			return fmt.Errorf("failed to write remote (%s) and cache: %w", rerr.Error(), err)
		}

		// remote holds the entity, cache is refreshed on next read
		log.WithError(err).Warn("failed to update cache after remote write")
	}

	if rerr != nil {
		return fmt.Errorf("failed to write remote: %w", storage.Unavailable(rerr))
	}

	return nil
}

func putPost(p *entities.Post) func(snap *cache.Snapshot, synced bool) {
	return func(snap *cache.Snapshot, synced bool) {
		snap.PutPost(p.Clone())
		if synced {
			delete(snap.DirtyPosts, p.ID)
		} else {
			snap.DirtyPosts[p.ID] = true
		}
	}
}

func putProfile(p *entities.Profile) func(snap *cache.Snapshot, synced bool) {
	return func(snap *cache.Snapshot, synced bool) {
		snap.Profiles[p.ID] = p.Clone()
		if synced {
			delete(snap.DirtyProfiles, p.ID)
		} else {
			snap.DirtyProfiles[p.ID] = true
		}
	}
}

func (s *srv) writePost(ctx context.Context, p *entities.Post) error {
	return s.dualWrite(ctx, func(ctx context.Context) error {
		return s.storage.UpsertPost(ctx, p)
	}, putPost(p))
}

func (s *srv) writeProfile(ctx context.Context, p *entities.Profile) error {
	return s.dualWrite(ctx, func(ctx context.Context) error {
		return s.storage.SetProfile(ctx, p)
	}, putProfile(p))
}

func (s *srv) Sync(ctx context.Context) error {
	snap := s.snapshot(ctx)
	if len(snap.DirtyPosts) == 0 && len(snap.DirtyProfiles) == 0 {
		return nil
	}

	var (
		posts    = make(map[string]*entities.Post)
		profiles = make(map[string]*entities.Profile)
		err      error
	)

	for id := range snap.DirtyProfiles {
		p, ok := snap.Profiles[id]
		if !ok {
			profiles[id] = nil
			continue
		}

		if err = s.storage.SetProfile(ctx, p); err != nil {
			break
		}
		profiles[id] = p
	}

	if err == nil {
		for id := range snap.DirtyPosts {
			p, ok := snap.Post(id)
			if !ok {
				posts[id] = nil
				continue
			}

			if err = s.storage.UpsertPost(ctx, p); err != nil {
				break
			}
			posts[id] = p
		}
	}

	if len(posts) > 0 || len(profiles) > 0 {
		// entity changed while it was being sent stays dirty
		if uerr := s.update(ctx, func(snap *cache.Snapshot) {
			for id, sent := range posts {
				if cur, ok := snap.Post(id); !ok || sent == nil || reflect.DeepEqual(cur, sent) {
					delete(snap.DirtyPosts, id)
				}
			}
			for id, sent := range profiles {
				if cur, ok := snap.Profiles[id]; !ok || sent == nil || reflect.DeepEqual(cur, sent) {
					delete(snap.DirtyProfiles, id)
				}
			}
		}); uerr != nil {
			log.WithError(uerr).Warn("failed to clear dirty marks")
		}

		log.WithField("posts", len(posts)).WithField("profiles", len(profiles)).Info("local writes synced")
	}

	if err != nil {
		return fmt.Errorf("failed to sync: %w", storage.Unavailable(err))
	}

	return nil
}

func (s *srv) SignOut(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		log.WithError(err).Warn("signing out with unsynced writes")
	}

	id := s.identity.Resolve(ctx)

	return s.update(ctx, func(snap *cache.Snapshot) {
		if !snap.DirtyProfiles[id.ID] {
			delete(snap.Profiles, id.ID)
		}

		// someone else could have been served since
		if snap.Identity != nil && snap.Identity.ID == id.ID {
			snap.Identity = nil
		}
	})
}
