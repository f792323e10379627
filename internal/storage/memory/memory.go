// Package memory is in-process implementation of storage interface.
// It is used in demo mode when no remote database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/storage"
)

// Storage keeps posts and profiles in maps.
// Deleted posts are kept as tombstones like the database backends do.
type Storage struct {
	mu       sync.RWMutex
	posts    map[string]*entities.Post
	deleted  map[string]bool
	profiles map[string]*entities.Profile

	offline int32
}

// New returns empty Storage.
func New() *Storage {
	return &Storage{
		posts:    make(map[string]*entities.Post),
		deleted:  make(map[string]bool),
		profiles: make(map[string]*entities.Profile),
	}
}

// SetOffline makes every following call fail with storage.ErrUnavailable while v is true.
func (s *Storage) SetOffline(v bool) {
	var i int32
	if v {
		i = 1
	}
	atomic.StoreInt32(&s.offline, i)
}

func (s *Storage) check(ctx context.Context) error {
	if atomic.LoadInt32(&s.offline) == 1 {
		return storage.ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return storage.Unavailable(err)
	}

	return nil
}

// ListPosts ...
func (s *Storage) ListPosts(ctx context.Context) ([]*entities.Post, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Post, 0, len(s.posts))
	for id, v := range s.posts {
		if s.deleted[id] {
			continue
		}
		out = append(out, v.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

// GetPost ...
func (s *Storage) GetPost(ctx context.Context, id string) (*entities.Post, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok || s.deleted[id] {
		return nil, storage.ErrNotFound
	}

	return p.Clone(), nil
}

// UpsertPost updates tombstone of deleted post without bringing it back. ...
func (s *Storage) UpsertPost(ctx context.Context, p *entities.Post) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := p.Clone()
	if old, ok := s.posts[p.ID]; ok {
		v.AuthorID = old.AuthorID
		v.AuthorHandle = old.AuthorHandle
		v.CreatedAt = old.CreatedAt
	}
	s.posts[p.ID] = v

	return nil
}

// DeletePost ...
func (s *Storage) DeletePost(ctx context.Context, id string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok || s.deleted[id] {
		return storage.ErrNotFound
	}
	s.deleted[id] = true

	return nil
}

// GetProfile ...
func (s *Storage) GetProfile(ctx context.Context, id string) (*entities.Profile, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return p.Clone(), nil
}

// SetProfile ...
func (s *Storage) SetProfile(ctx context.Context, p *entities.Profile) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := p.Clone()
	if old, ok := s.profiles[p.ID]; ok && old.Coins > v.Coins {
		v.Coins = old.Coins
	}
	s.profiles[p.ID] = v

	return nil
}

// Ping implements health.Pinger.
func (s *Storage) Ping(ctx context.Context) error {
	return s.check(ctx)
}
