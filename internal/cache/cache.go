// Package cache contains the local cache interface and the snapshot it persists.
package cache

import (
	"context"
	"time"

	"github.com/Decentr-net/citypulse/internal/entities"
)

//go:generate mockgen -destination=./mock/cache.go -package=mock -source=cache.go

// Cache persists whole snapshots. Write replaces the stored snapshot atomically,
// Read of an empty cache returns an empty snapshot.
type Cache interface {
	Read(ctx context.Context) (*Snapshot, error)
	Write(ctx context.Context, s *Snapshot) error
}

// Snapshot is the materialized local state shared by every requester of the instance.
type Snapshot struct {
	// Identity is the last requester who read posts or profile. It is not a session,
	// requests are always served on behalf of their own identity.
	Identity *entities.Identity           `json:"identity,omitempty"`
	Posts    []*entities.Post             `json:"posts"`
	Profiles map[string]*entities.Profile `json:"profiles"`

	// DirtyPosts and DirtyProfiles hold ids of entities written locally but not yet accepted by remote.
	DirtyPosts    map[string]bool `json:"dirtyPosts"`
	DirtyProfiles map[string]bool `json:"dirtyProfiles"`

	SyncedAt time.Time `json:"syncedAt"`
}

// New returns empty snapshot.
func New() *Snapshot {
	return &Snapshot{
		Posts:         []*entities.Post{},
		Profiles:      map[string]*entities.Profile{},
		DirtyPosts:    map[string]bool{},
		DirtyProfiles: map[string]bool{},
	}
}

// Normalize initializes nil collections. It is used after decoding.
func (s *Snapshot) Normalize() *Snapshot {
	if s.Posts == nil {
		s.Posts = []*entities.Post{}
	}
	if s.Profiles == nil {
		s.Profiles = map[string]*entities.Profile{}
	}
	if s.DirtyPosts == nil {
		s.DirtyPosts = map[string]bool{}
	}
	if s.DirtyProfiles == nil {
		s.DirtyProfiles = map[string]bool{}
	}

	return s
}

// Empty returns true if snapshot has neither posts nor profiles.
func (s *Snapshot) Empty() bool {
	return len(s.Posts) == 0 && len(s.Profiles) == 0
}

// Clone returns deep copy of snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := New()
	out.SyncedAt = s.SyncedAt

	if s.Identity != nil {
		i := *s.Identity
		out.Identity = &i
	}

	out.Posts = entities.ClonePosts(s.Posts)
	for k, v := range s.Profiles {
		out.Profiles[k] = v.Clone()
	}
	for k, v := range s.DirtyPosts {
		out.DirtyPosts[k] = v
	}
	for k, v := range s.DirtyProfiles {
		out.DirtyProfiles[k] = v
	}

	return out
}

// Post returns post by id.
func (s *Snapshot) Post(id string) (*entities.Post, bool) {
	for _, v := range s.Posts {
		if v.ID == id {
			return v, true
		}
	}

	return nil, false
}

// PutPost replaces post with the same id or puts new one at the head of the list.
func (s *Snapshot) PutPost(p *entities.Post) {
	for i, v := range s.Posts {
		if v.ID == p.ID {
			s.Posts[i] = p
			return
		}
	}

	s.Posts = append([]*entities.Post{p}, s.Posts...)
}

// RemovePost ...
func (s *Snapshot) RemovePost(id string) {
	out := s.Posts[:0]
	for _, v := range s.Posts {
		if v.ID != id {
			out = append(out, v)
		}
	}
	s.Posts = out
	delete(s.DirtyPosts, id)
}

// ReplacePosts replaces cached posts with remote ones.
// Posts which are still dirty keep their local copy.
func (s *Snapshot) ReplacePosts(remote []*entities.Post) {
	local := make(map[string]*entities.Post, len(s.DirtyPosts))
	for _, v := range s.Posts {
		if s.DirtyPosts[v.ID] {
			local[v.ID] = v
		}
	}

	out := make([]*entities.Post, 0, len(remote)+len(local))
	for _, v := range remote {
		if p, ok := local[v.ID]; ok {
			out = append(out, p)
			delete(local, v.ID)
			continue
		}
		out = append(out, v)
	}

	// dirty posts remote has never seen go first, they are newest
	pending := make([]*entities.Post, 0, len(local))
	for _, v := range s.Posts {
		if p, ok := local[v.ID]; ok {
			pending = append(pending, p)
		}
	}

	s.Posts = append(pending, out...)
}
