package impl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Decentr-net/citypulse/internal/blob"
	blobmock "github.com/Decentr-net/citypulse/internal/blob/mock"
	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/identity"
	"github.com/Decentr-net/citypulse/internal/seed"
	"github.com/Decentr-net/citypulse/internal/service"
	"github.com/Decentr-net/citypulse/internal/storage"
	"github.com/Decentr-net/citypulse/internal/storage/memory"
)

var (
	ctx = context.Background()
	now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	alex = entities.Identity{ID: "u-alex", Handle: "@alexj", Name: "Alex Johnson", Email: "alexj@example.com"}
)

type memCache struct {
	mu      sync.Mutex
	snap    *cache.Snapshot
	readErr error
}

func (c *memCache) Read(_ context.Context) (*cache.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.readErr != nil {
		return nil, c.readErr
	}

	if c.snap == nil {
		return cache.New(), nil
	}

	return c.snap.Clone(), nil
}

func (c *memCache) Write(_ context.Context, s *cache.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap = s.Clone()

	return nil
}

func (c *memCache) failReads(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readErr = err
}

// microStorage keeps times with microsecond precision as postgres does.
type microStorage struct {
	*memory.Storage
}

func (s microStorage) UpsertPost(ctx context.Context, p *entities.Post) error {
	p = p.Clone()
	p.CreatedAt = p.CreatedAt.Truncate(time.Microsecond)
	for i := range p.Comments {
		p.Comments[i].Timestamp = p.Comments[i].Timestamp.Truncate(time.Microsecond)
	}

	return s.Storage.UpsertPost(ctx, p)
}

type listSeeder struct {
	s storage.Storage
}

func (l listSeeder) EnsureSeeded(ctx context.Context) ([]*entities.Post, error) {
	return l.s.ListPosts(ctx)
}

type env struct {
	srv    *srv
	remote *memory.Storage
	cache  *memCache
	blob   *blobmock.MockStorage
	id     entities.Identity
}

func newEnv(t *testing.T) *env {
	e := &env{
		remote: memory.New(),
		cache:  &memCache{},
		blob:   blobmock.NewMockStorage(gomock.NewController(t)),
		id:     alex,
	}

	r := identity.ResolverFunc(func(context.Context) entities.Identity { return e.id })

	e.srv = New(e.remote, e.blob, e.cache, r, listSeeder{e.remote}).(*srv)
	e.srv.now = func() time.Time { return now }

	return e
}

func (e *env) snapshot(t *testing.T) *cache.Snapshot {
	s, err := e.cache.Read(ctx)
	require.NoError(t, err)
	return s
}

func (e *env) validPost() *entities.Post {
	p := e.srv.NewPost(ctx)
	p.Title = "Broken bench"
	p.Body = "The bench near the fountain lost two planks"
	p.Category = "Parks"
	p.City = "Springfield"
	return p
}

func count(pp []*entities.Post, id string) int {
	var c int
	for _, v := range pp {
		if v.ID == id {
			c++
		}
	}
	return c
}

func TestSrv_NewPost(t *testing.T) {
	e := newEnv(t)

	p := e.srv.NewPost(ctx)

	require.NotEmpty(t, p.ID)
	require.Equal(t, "@alexj", p.AuthorHandle)
	require.Equal(t, "u-alex", p.AuthorID)
	require.Equal(t, entities.StatusPending, p.Status)
	require.Equal(t, entities.PriorityMedium, p.Priority)
	require.Equal(t, 2024, p.Year)
	require.Equal(t, now, p.CreatedAt)
	require.Empty(t, p.Comments)
	require.Zero(t, p.Likes)

	require.NotEqual(t, p.ID, e.srv.NewPost(ctx).ID)
}

func TestSrv_CreatePost_RoundTrip(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	v := e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Equal(t, 1, count(v.Posts, created.ID))

	for _, p := range v.Posts {
		if p.ID == created.ID {
			require.Equal(t, created, p)
		}
	}

	require.Empty(t, e.snapshot(t).DirtyPosts)
}

func TestSrv_CreatePost_FillsDefaults(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, &entities.Post{Title: "Flooded underpass", Category: "Roads"})
	require.NoError(t, err)

	require.NotEmpty(t, created.ID)
	require.Equal(t, "@alexj", created.AuthorHandle)
	require.Equal(t, "Alex Johnson", created.AuthorName)
	require.Equal(t, entities.StatusPending, created.Status)
	require.Equal(t, entities.PriorityMedium, created.Priority)
	require.Equal(t, now, created.CreatedAt)
}

func TestSrv_CreatePost_Invalid(t *testing.T) {
	tt := []struct {
		name string
		f    func(p *entities.Post)
	}{
		{name: "other_author", f: func(p *entities.Post) { p.AuthorHandle = "@mariag" }},
		{name: "no_title", f: func(p *entities.Post) { p.Title = " " }},
		{name: "no_category", f: func(p *entities.Post) { p.Category = "" }},
		{name: "unknown_status", f: func(p *entities.Post) { p.Status = "done" }},
		{name: "unknown_priority", f: func(p *entities.Post) { p.Priority = "urgent" }},
		{name: "rejected_without_note", f: func(p *entities.Post) { p.Status = entities.StatusRejected }},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)

			p := e.validPost()
			tc.f(p)

			_, err := e.srv.CreatePost(ctx, p)
			require.True(t, errors.Is(err, service.ErrInvalidRequest), err)

			pp, err := e.remote.ListPosts(ctx)
			require.NoError(t, err)
			require.Empty(t, pp)
			require.True(t, e.snapshot(t).Empty())
		})
	}
}

func TestSrv_CreatePost_Offline(t *testing.T) {
	e := newEnv(t)
	e.remote.SetOffline(true)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.True(t, errors.Is(err, storage.ErrUnavailable))
	require.NotNil(t, created)

	snap := e.snapshot(t)
	require.True(t, snap.DirtyPosts[created.ID])

	v := e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceCache, v.Source)
	require.Equal(t, 1, count(v.Posts, created.ID))

	e.remote.SetOffline(false)

	v = e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Equal(t, 1, count(v.Posts, created.ID))
	require.Empty(t, e.snapshot(t).DirtyPosts)

	stored, err := e.remote.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, stored)
}

func TestSrv_CreatePost_Existing(t *testing.T) {
	e := newEnv(t)

	existing := e.validPost()
	existing.Status = entities.StatusResolved
	existing.Comments = []entities.Comment{{User: "Maria Garcia", Text: "Reported to the city", Timestamp: now}}
	require.NoError(t, e.remote.UpsertPost(ctx, existing))

	tt := []struct {
		name string
		f    func(p *entities.Post)
	}{
		{name: "status_back", f: func(p *entities.Post) { p.Status = entities.StatusPending }},
		{name: "comments_removed", f: func(p *entities.Post) { p.Comments = nil }},
		{name: "created_at", f: func(p *entities.Post) { p.CreatedAt = now.Add(time.Hour) }},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			// cache knows nothing about the post
			require.True(t, e.snapshot(t).Empty())

			p := existing.Clone()
			tc.f(p)

			_, err := e.srv.CreatePost(ctx, p)
			require.True(t, errors.Is(err, service.ErrInvalidRequest), err)

			stored, err := e.remote.GetPost(ctx, existing.ID)
			require.NoError(t, err)
			require.Equal(t, existing, stored)
		})
	}

	_, err := e.srv.CreatePost(ctx, existing)
	require.NoError(t, err)
}

func TestSrv_CreatePost_OtherAuthorsID(t *testing.T) {
	e := newEnv(t)

	existing := e.validPost()
	existing.AuthorID, existing.AuthorHandle, existing.AuthorName = "u-maria", "@mariag", "Maria Garcia"
	require.NoError(t, e.remote.UpsertPost(ctx, existing))

	_, err := e.srv.CreatePost(ctx, &entities.Post{ID: existing.ID, Title: "Mine now", Category: "Parks"})
	require.True(t, errors.Is(err, service.ErrInvalidRequest), err)

	stored, err := e.remote.GetPost(ctx, existing.ID)
	require.NoError(t, err)
	require.Equal(t, existing, stored)
}

func TestSrv_CreatePost_CacheUnreadable(t *testing.T) {
	e := newEnv(t)
	e.remote.SetOffline(true)

	pending, err := e.srv.CreatePost(ctx, e.validPost())
	require.True(t, errors.Is(err, storage.ErrUnavailable))

	e.cache.failReads(errors.New("disk error"))

	_, err = e.srv.CreatePost(ctx, e.validPost())
	require.Error(t, err)
	require.False(t, errors.Is(err, storage.ErrUnavailable), err)

	e.cache.failReads(nil)

	snap := e.snapshot(t)
	_, ok := snap.Post(pending.ID)
	require.True(t, ok)
	require.True(t, snap.DirtyPosts[pending.ID])
	require.Len(t, snap.Posts, 1)

	e.remote.SetOffline(false)
	e.cache.failReads(errors.New("disk error"))

	// remote accepted the post, cache is left as is
	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	e.cache.failReads(nil)
	_, err = e.remote.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, e.snapshot(t).DirtyPosts[pending.ID])
}

func TestSrv_EditPost_SubMillisecondClock(t *testing.T) {
	e := newEnv(t)
	e.srv.storage = microStorage{e.remote}
	e.srv.now = func() time.Time { return now.Add(123456789 * time.Nanosecond) }

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)
	require.Equal(t, now.Add(123*time.Millisecond), created.CreatedAt)

	edit := created.Clone()
	edit.Status = entities.StatusInProgress
	_, err = e.srv.EditPost(ctx, edit)
	require.NoError(t, err)

	commented, err := e.srv.Comment(ctx, created.ID, "on it")
	require.NoError(t, err)

	edit = commented.Clone()
	edit.Priority = entities.PriorityHigh
	_, err = e.srv.EditPost(ctx, edit)
	require.NoError(t, err)

	stored, err := e.remote.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PriorityHigh, stored.Priority)
	require.Len(t, stored.Comments, 1)
}

func TestSrv_CreatePost_Media(t *testing.T) {
	e := newEnv(t)

	gomock.InOrder(
		e.blob.EXPECT().Upload(gomock.Any(), blob.PostMedia, "u-alex_1717236000000.png", []byte("png")).
			Return("https://cdn/post_media/u-alex_1717236000000.png", nil),
		e.blob.EXPECT().Upload(gomock.Any(), blob.PostMedia, "u-alex_1717236000001.mp4", []byte("mp4")).
			Return("https://cdn/post_media/u-alex_1717236000001.mp4", nil),
		e.blob.EXPECT().Upload(gomock.Any(), blob.PostMedia, "u-alex_1717236000002.jpg", []byte("jpg")).
			Return("", blob.ErrUploadFailed),
	)

	created, err := e.srv.CreatePost(ctx, e.validPost(),
		service.Media{Filename: "bench.png", Alt: "bench", Data: []byte("png")},
		service.Media{Filename: "clip.mp4", Data: []byte("mp4")},
		service.Media{Filename: "other.jpg", Data: []byte("jpg")},
	)
	require.True(t, errors.Is(err, service.ErrAssetUploadFailed))
	require.False(t, errors.Is(err, storage.ErrUnavailable))

	require.Equal(t, []entities.Image{{Src: "https://cdn/post_media/u-alex_1717236000000.png", Alt: "bench"}}, created.Images)
	require.Equal(t, &entities.Video{Src: "https://cdn/post_media/u-alex_1717236000001.mp4"}, created.Video)

	stored, err := e.remote.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, stored)
}

func TestSrv_EditPost_Idempotent(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	edit := created.Clone()
	edit.Title = "Broken bench, two planks missing"

	_, err = e.srv.EditPost(ctx, edit)
	require.NoError(t, err)
	first, err := e.remote.ListPosts(ctx)
	require.NoError(t, err)

	_, err = e.srv.EditPost(ctx, edit)
	require.NoError(t, err)
	second, err := e.remote.ListPosts(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, edit.Title, second[0].Title)
}

func TestSrv_EditPost_Status(t *testing.T) {
	tt := []struct {
		name string
		from entities.Status
		to   entities.Status
		note string

		err error
	}{
		{name: "resolved_to_pending", from: entities.StatusResolved, to: entities.StatusPending, err: service.ErrInvalidRequest},
		{name: "rejected_without_note", from: entities.StatusPending, to: entities.StatusRejected, err: service.ErrInvalidRequest},
		{name: "rejected_with_note", from: entities.StatusPending, to: entities.StatusRejected, note: "duplicate report"},
		{name: "in_progress", from: entities.StatusPending, to: entities.StatusInProgress},
		{name: "in_progress_to_pending", from: entities.StatusInProgress, to: entities.StatusPending, err: service.ErrInvalidRequest},
		{name: "resolved_to_rejected", from: entities.StatusResolved, to: entities.StatusRejected, note: "note", err: service.ErrInvalidRequest},
		{name: "same_status", from: entities.StatusResolved, to: entities.StatusResolved},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)

			p := e.validPost()
			p.Status = tc.from
			require.NoError(t, e.remote.UpsertPost(ctx, p))

			next := p.Clone()
			next.Status = tc.to
			next.AdminNote = tc.note

			_, err := e.srv.EditPost(ctx, next)

			stored, gerr := e.remote.GetPost(ctx, p.ID)
			require.NoError(t, gerr)

			if tc.err != nil {
				require.True(t, errors.Is(err, tc.err), err)
				require.Equal(t, tc.from, stored.Status)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.to, stored.Status)
			require.Equal(t, tc.note, stored.AdminNote)
		})
	}
}

func TestSrv_EditPost_Immutable(t *testing.T) {
	tt := []struct {
		name string
		f    func(p *entities.Post)
	}{
		{name: "author_handle", f: func(p *entities.Post) { p.AuthorHandle = "@mariag" }},
		{name: "author_id", f: func(p *entities.Post) { p.AuthorID = "u-maria" }},
		{name: "created_at", f: func(p *entities.Post) { p.CreatedAt = p.CreatedAt.Add(time.Hour) }},
		{name: "comment_removed", f: func(p *entities.Post) { p.Comments = p.Comments[:0] }},
		{name: "comment_edited", f: func(p *entities.Post) { p.Comments[0].Text = "edited" }},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)

			created, err := e.srv.CreatePost(ctx, e.validPost())
			require.NoError(t, err)
			created, err = e.srv.Comment(ctx, created.ID, "first")
			require.NoError(t, err)

			next := created.Clone()
			tc.f(next)

			_, err = e.srv.EditPost(ctx, next)
			require.True(t, errors.Is(err, service.ErrInvalidRequest), err)
		})
	}
}

func TestSrv_EditPost_NotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.srv.EditPost(ctx, e.validPost())
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_Counters(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	_, err = e.srv.Like(ctx, created.ID)
	require.NoError(t, err)
	_, err = e.srv.Like(ctx, created.ID)
	require.NoError(t, err)
	_, err = e.srv.Dislike(ctx, created.ID)
	require.NoError(t, err)
	p, err := e.srv.Share(ctx, created.ID)
	require.NoError(t, err)

	require.EqualValues(t, 2, p.Likes)
	require.EqualValues(t, 1, p.Dislikes)
	require.EqualValues(t, 1, p.Shares)

	stored, err := e.remote.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, p, stored)

	cached, ok := e.snapshot(t).Post(created.ID)
	require.True(t, ok)
	require.Equal(t, p, cached)

	_, err = e.srv.Like(ctx, "unknown")
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_Like_Offline(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	e.remote.SetOffline(true)

	p, err := e.srv.Like(ctx, created.ID)
	require.True(t, errors.Is(err, storage.ErrUnavailable))
	require.EqualValues(t, 1, p.Likes)

	// dirty local copy is the base for following writes
	p, err = e.srv.Like(ctx, created.ID)
	require.True(t, errors.Is(err, storage.ErrUnavailable))
	require.EqualValues(t, 2, p.Likes)
	require.True(t, e.snapshot(t).DirtyPosts[created.ID])

	_, err = e.srv.Like(ctx, "unknown")
	require.True(t, errors.Is(err, storage.ErrUnavailable))

	e.remote.SetOffline(false)
	require.NoError(t, e.srv.Sync(ctx))

	stored, err := e.remote.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, stored.Likes)
	require.Empty(t, e.snapshot(t).DirtyPosts)
}

func TestSrv_Comment(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	_, err = e.srv.Comment(ctx, created.ID, "  ")
	require.True(t, errors.Is(err, service.ErrInvalidRequest))

	_, err = e.srv.Comment(ctx, created.ID, "first")
	require.NoError(t, err)
	p, err := e.srv.Comment(ctx, created.ID, " second ")
	require.NoError(t, err)

	require.Equal(t, []entities.Comment{
		{User: "Alex Johnson", Text: "first", Timestamp: now},
		{User: "Alex Johnson", Text: "second", Timestamp: now},
	}, p.Comments)
}

func TestSrv_DeletePost(t *testing.T) {
	e := newEnv(t)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.NoError(t, err)

	e.remote.SetOffline(true)
	require.True(t, errors.Is(e.srv.DeletePost(ctx, created.ID), storage.ErrUnavailable))

	_, ok := e.snapshot(t).Post(created.ID)
	require.True(t, ok)

	e.remote.SetOffline(false)
	require.NoError(t, e.srv.DeletePost(ctx, created.ID))

	_, ok = e.snapshot(t).Post(created.ID)
	require.False(t, ok)

	_, err = e.remote.GetPost(ctx, created.ID)
	require.Equal(t, storage.ErrNotFound, err)

	require.True(t, errors.Is(e.srv.DeletePost(ctx, created.ID), service.ErrNotFound))
}

func TestSrv_DeletePost_NotSynced(t *testing.T) {
	e := newEnv(t)
	e.remote.SetOffline(true)

	created, err := e.srv.CreatePost(ctx, e.validPost())
	require.Error(t, err)

	e.remote.SetOffline(false)

	// post is flushed on next read; until then remote does not know it
	require.NoError(t, e.srv.DeletePost(ctx, created.ID))

	snap := e.snapshot(t)
	_, ok := snap.Post(created.ID)
	require.False(t, ok)
	require.Empty(t, snap.DirtyPosts)
}

func TestSrv_GetPosts_Seeds(t *testing.T) {
	e := newEnv(t)
	e.srv.seeder = seed.New(e.remote, nil)

	first := e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceRemote, first.Source)
	require.NotEmpty(t, first.Posts)

	second := e.srv.GetPosts(ctx)
	require.Len(t, second.Posts, len(first.Posts))

	stored, err := e.remote.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, stored, len(first.Posts))

	require.Len(t, e.snapshot(t).Posts, len(first.Posts))
}

func TestSrv_GetPosts_SeedDeleted(t *testing.T) {
	e := newEnv(t)
	e.srv.seeder = seed.New(e.remote, nil)

	seeded := e.srv.GetPosts(ctx)
	require.NotEmpty(t, seeded.Posts)

	for _, v := range seeded.Posts {
		require.NoError(t, e.srv.DeletePost(ctx, v.ID))
	}

	v := e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Empty(t, v.Posts)
	require.Empty(t, e.snapshot(t).Posts)

	_, err := e.srv.Like(ctx, seeded.Posts[0].ID)
	require.True(t, errors.Is(err, service.ErrNotFound), err)
}

func TestSrv_GetPosts_Fallback(t *testing.T) {
	e := newEnv(t)

	p := e.validPost()
	require.NoError(t, e.remote.UpsertPost(ctx, p))

	v := e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Len(t, v.Posts, 1)

	e.remote.SetOffline(true)

	v = e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceCache, v.Source)
	require.Len(t, v.Posts, 1)
	require.Equal(t, p.ID, v.Posts[0].ID)
}

func TestSrv_GetPosts_Default(t *testing.T) {
	e := newEnv(t)
	e.remote.SetOffline(true)

	v := e.srv.GetPosts(ctx)
	require.Equal(t, service.SourceDefault, v.Source)
	require.NotNil(t, v.Posts)
	require.Empty(t, v.Posts)
}

func TestSrv_GetPosts_RemoteWins(t *testing.T) {
	e := newEnv(t)

	stale := cache.New()
	stale.PutPost(&entities.Post{ID: "stale", Title: "stale"})
	stale.PutPost(&entities.Post{ID: "1", Title: "cached"})
	require.NoError(t, e.cache.Write(ctx, stale))

	p := e.validPost()
	p.ID = "1"
	require.NoError(t, e.remote.UpsertPost(ctx, p))

	v := e.srv.GetPosts(ctx)
	require.Len(t, v.Posts, 1)
	require.Equal(t, p.Title, v.Posts[0].Title)

	snap := e.snapshot(t)
	require.Len(t, snap.Posts, 1)
	require.Equal(t, p.Title, snap.Posts[0].Title)
	require.Equal(t, alex, *snap.Identity)
	require.Equal(t, now, snap.SyncedAt)
}

func TestSrv_GetMyPosts(t *testing.T) {
	e := newEnv(t)

	handles := []string{"@mariag", "@alexj", "@samlee", "@alexj", "@mariag"}
	for i, h := range handles {
		require.NoError(t, e.remote.UpsertPost(ctx, &entities.Post{
			ID:           string(rune('a' + i)),
			Title:        "title",
			Category:     "Roads",
			AuthorHandle: h,
			Comments:     []entities.Comment{{User: "Sam", Text: h}},
			CreatedAt:    now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, e.remote.SetProfile(ctx, &entities.Profile{ID: alex.ID, Name: alex.Name, Handle: "@alexj"}))

	v := e.srv.GetMyPosts(ctx)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Len(t, v.Posts, 2)
	require.Equal(t, "d", v.Posts[0].ID)
	require.Equal(t, "b", v.Posts[1].ID)

	c := e.srv.GetMyComments(ctx)
	require.Len(t, c.Comments, 2)
	require.Equal(t, "d", c.Comments[0].PostID)
	require.Equal(t, "@alexj", c.Comments[0].Text)
}

func TestSrv_Summarize(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.remote.UpsertPost(ctx, &entities.Post{ID: "1", Category: "Roads", CreatedAt: time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC)}))
	require.NoError(t, e.remote.UpsertPost(ctx, &entities.Post{ID: "2", Category: "Parks", CreatedAt: time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)}))

	v := e.srv.Summarize(ctx, now)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Equal(t, 1, v.Summary.TodayCount)
	require.Equal(t, 2, v.Summary.TotalCount)
	require.Equal(t, map[string]int{"Roads": 1}, v.Summary.TodayByCategory)
}

func TestSrv_GetProfile(t *testing.T) {
	t.Run("guest", func(t *testing.T) {
		e := newEnv(t)
		e.id = entities.GuestIdentity
		e.remote.SetOffline(true)

		v := e.srv.GetProfile(ctx)
		require.Equal(t, service.SourceDefault, v.Source)
		require.Equal(t, entities.GuestProfile(), v.Profile)
		require.Equal(t, "@guest", v.Profile.Handle)
	})

	t.Run("remote", func(t *testing.T) {
		e := newEnv(t)

		p := &entities.Profile{ID: alex.ID, Name: "Alex", Handle: "@alexj", Interests: []string{}, Coins: 5}
		require.NoError(t, e.remote.SetProfile(ctx, p))

		v := e.srv.GetProfile(ctx)
		require.Equal(t, service.SourceRemote, v.Source)
		require.Equal(t, p, v.Profile)
		require.Equal(t, p, e.snapshot(t).Profiles[alex.ID])
	})

	t.Run("not_found", func(t *testing.T) {
		e := newEnv(t)

		v := e.srv.GetProfile(ctx)
		require.Equal(t, service.SourceDefault, v.Source)
		require.Equal(t, entities.DefaultProfile(alex), v.Profile)

		stored, err := e.remote.GetProfile(ctx, alex.ID)
		require.NoError(t, err)
		require.Equal(t, v.Profile, stored)
	})

	t.Run("unavailable", func(t *testing.T) {
		e := newEnv(t)
		e.remote.SetOffline(true)

		v := e.srv.GetProfile(ctx)
		require.Equal(t, service.SourceDefault, v.Source)
		require.Equal(t, entities.DefaultProfile(alex), v.Profile)
	})

	t.Run("unavailable_cached", func(t *testing.T) {
		e := newEnv(t)

		p := &entities.Profile{ID: alex.ID, Name: "Alex", Handle: "@alexj", Interests: []string{"Parks"}}
		require.NoError(t, e.remote.SetProfile(ctx, p))
		e.srv.GetProfile(ctx)

		e.remote.SetOffline(true)

		v := e.srv.GetProfile(ctx)
		require.Equal(t, service.SourceCache, v.Source)
		require.Equal(t, p, v.Profile)
	})
}

func TestSrv_SaveProfile(t *testing.T) {
	e := newEnv(t)

	saved, err := e.srv.SaveProfile(ctx, &entities.Profile{
		Name:      "Alex J",
		Bio:       "Cyclist",
		Interests: []string{"Roads", " roads", "", "Parks "},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, alex.ID, saved.ID)
	require.Equal(t, "@alexj", saved.Handle)
	require.Equal(t, alex.Email, saved.Email)
	require.Equal(t, entities.DefaultAvatar, saved.Avatar)
	require.Equal(t, []string{"Roads", "Parks"}, saved.Interests)

	stored, err := e.remote.GetProfile(ctx, alex.ID)
	require.NoError(t, err)
	require.Equal(t, saved, stored)
}

func TestSrv_SaveProfile_Avatar(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.remote.SetProfile(ctx, &entities.Profile{ID: alex.ID, Name: "Alex", Handle: "@alexj", Avatar: "https://cdn/old.png"}))

	e.blob.EXPECT().Upload(gomock.Any(), blob.ProfilePhotos, "u-alex_1717236000000.png", []byte("new")).
		Return("https://cdn/profile_photos/u-alex_1717236000000.png", nil)

	saved, err := e.srv.SaveProfile(ctx, &entities.Profile{Name: "Alex", Handle: "@alexj"}, &service.Media{Filename: "me.png", Data: []byte("new")})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/profile_photos/u-alex_1717236000000.png", saved.Avatar)
}

func TestSrv_SaveProfile_AvatarFailed(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.remote.SetProfile(ctx, &entities.Profile{ID: alex.ID, Name: "Alex", Handle: "@alexj", Avatar: "https://cdn/old.png"}))

	e.blob.EXPECT().Upload(gomock.Any(), blob.ProfilePhotos, gomock.Any(), gomock.Any()).Return("", blob.ErrUploadFailed)

	saved, err := e.srv.SaveProfile(ctx, &entities.Profile{Name: "Alex", Bio: "new bio"}, &service.Media{Filename: "me.png", Data: []byte("new")})
	require.True(t, errors.Is(err, service.ErrAssetUploadFailed))
	require.Equal(t, "https://cdn/old.png", saved.Avatar)

	stored, err := e.remote.GetProfile(ctx, alex.ID)
	require.NoError(t, err)
	require.Equal(t, "new bio", stored.Bio)
	require.Equal(t, "https://cdn/old.png", stored.Avatar)
}

func TestSrv_SaveProfile_Invalid(t *testing.T) {
	tt := []struct {
		name    string
		id      entities.Identity
		profile *entities.Profile
	}{
		{name: "guest", id: entities.GuestIdentity, profile: &entities.Profile{Name: "Guest"}},
		{name: "other_user", id: alex, profile: &entities.Profile{ID: "u-maria", Name: "Maria"}},
		{name: "no_name", id: alex, profile: &entities.Profile{Name: " "}},
		{name: "handle_changed", id: alex, profile: &entities.Profile{Name: "Alex", Handle: "@alex", Coins: 10}},
		{name: "coins_decreased", id: alex, profile: &entities.Profile{Name: "Alex", Handle: "@alexj", Coins: 9}},
	}

	for i := range tt {
		tc := tt[i]
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.id = tc.id

			prev := &entities.Profile{ID: alex.ID, Name: "Alex", Handle: "@alexj", Coins: 10}
			require.NoError(t, e.remote.SetProfile(ctx, prev))

			_, err := e.srv.SaveProfile(ctx, tc.profile, nil)
			require.True(t, errors.Is(err, service.ErrInvalidRequest), err)

			stored, err := e.remote.GetProfile(ctx, alex.ID)
			require.NoError(t, err)
			require.Equal(t, prev, stored)
		})
	}
}

func TestSrv_SaveProfile_Offline(t *testing.T) {
	e := newEnv(t)
	e.remote.SetOffline(true)

	saved, err := e.srv.SaveProfile(ctx, &entities.Profile{Name: "Alex", Bio: "offline"}, nil)
	require.True(t, errors.Is(err, storage.ErrUnavailable))
	require.True(t, e.snapshot(t).DirtyProfiles[alex.ID])

	v := e.srv.GetProfile(ctx)
	require.Equal(t, service.SourceCache, v.Source)
	require.Equal(t, saved, v.Profile)

	e.remote.SetOffline(false)

	v = e.srv.GetProfile(ctx)
	require.Equal(t, service.SourceRemote, v.Source)
	require.Equal(t, "offline", v.Profile.Bio)
	require.Empty(t, e.snapshot(t).DirtyProfiles)
}

func TestSrv_SignOut(t *testing.T) {
	e := newEnv(t)

	e.srv.GetProfile(ctx)
	require.NoError(t, e.remote.UpsertPost(ctx, e.validPost()))
	e.srv.GetPosts(ctx)

	snap := e.snapshot(t)
	require.NotNil(t, snap.Identity)
	require.Contains(t, snap.Profiles, alex.ID)

	require.NoError(t, e.srv.SignOut(ctx))

	snap = e.snapshot(t)
	require.Nil(t, snap.Identity)
	require.NotContains(t, snap.Profiles, alex.ID)
	require.Len(t, snap.Posts, 1)
}

func TestSrv_SignOut_OtherIdentity(t *testing.T) {
	e := newEnv(t)

	e.srv.GetProfile(ctx)

	e.id = entities.Identity{ID: "u-maria", Handle: "@mariag", Name: "Maria Garcia"}
	require.NoError(t, e.srv.SignOut(ctx))

	snap := e.snapshot(t)
	require.NotNil(t, snap.Identity)
	require.Equal(t, alex.ID, snap.Identity.ID)
	require.Contains(t, snap.Profiles, alex.ID)

	e.id = alex
	require.NoError(t, e.srv.SignOut(ctx))

	snap = e.snapshot(t)
	require.Nil(t, snap.Identity)
	require.NotContains(t, snap.Profiles, alex.ID)
}

func TestSrv_Sync(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.srv.Sync(ctx))

	e.remote.SetOffline(true)
	_, err := e.srv.CreatePost(ctx, e.validPost())
	require.Error(t, err)
	_, err = e.srv.CreatePost(ctx, e.validPost())
	require.Error(t, err)
	_, err = e.srv.SaveProfile(ctx, &entities.Profile{Name: "Alex"}, nil)
	require.Error(t, err)

	require.True(t, errors.Is(e.srv.Sync(ctx), storage.ErrUnavailable))

	e.remote.SetOffline(false)
	require.NoError(t, e.srv.Sync(ctx))

	pp, err := e.remote.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, pp, 2)

	_, err = e.remote.GetProfile(ctx, alex.ID)
	require.NoError(t, err)

	snap := e.snapshot(t)
	require.Empty(t, snap.DirtyPosts)
	require.Empty(t, snap.DirtyProfiles)
}
