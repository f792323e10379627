package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Decentr-net/citypulse/internal/blob"
	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/service"
	"github.com/Decentr-net/citypulse/internal/stats"
	"github.com/Decentr-net/citypulse/internal/storage"
)

// posts implements read ladder: flush local writes, read (and seed) remote, fall back to cache, then to empty list.
func (s *srv) posts(ctx context.Context, id entities.Identity) ([]*entities.Post, service.Source) {
	if err := s.Sync(ctx); err != nil {
		log.WithError(err).Debug("failed to sync before read")
	}

	remote, err := s.seeder.EnsureSeeded(ctx)
	if err == nil {
		out := entities.ClonePosts(remote)

		if err := s.update(ctx, func(snap *cache.Snapshot) {
			snap.ReplacePosts(remote)
			snap.Identity = &id
			snap.SyncedAt = s.timestamp()
			out = entities.ClonePosts(snap.Posts)
		}); err != nil {
			log.WithError(err).Warn("failed to reconcile cache")
		}

		return out, service.SourceRemote
	}

	log.WithError(err).Warn("failed to get remote posts, falling back to cache")

	if snap := s.snapshot(ctx); len(snap.Posts) > 0 {
		return snap.Posts, service.SourceCache
	}

	return []*entities.Post{}, service.SourceDefault
}

func (s *srv) GetPosts(ctx context.Context) service.PostsView {
	posts, src := s.posts(ctx, s.identity.Resolve(ctx))

	return service.PostsView{
		Posts:  posts,
		Source: src,
	}
}

func (s *srv) GetMyPosts(ctx context.Context) service.PostsView {
	id := s.identity.Resolve(ctx)
	profile, _ := s.profile(ctx, id)
	posts, src := s.posts(ctx, id)

	return service.PostsView{
		Posts:  entities.FilterByAuthor(posts, profile.Handle),
		Source: src,
	}
}

func (s *srv) GetMyComments(ctx context.Context) service.CommentsView {
	my := s.GetMyPosts(ctx)

	out := make([]service.Comment, 0)
	for _, p := range my.Posts {
		for _, c := range p.Comments {
			out = append(out, service.Comment{
				PostID:    p.ID,
				Title:     p.Title,
				User:      c.User,
				Text:      c.Text,
				Timestamp: c.Timestamp,
			})
		}
	}

	return service.CommentsView{
		Comments: out,
		Source:   my.Source,
	}
}

func (s *srv) Summarize(ctx context.Context, asOf time.Time) service.SummaryView {
	posts, src := s.posts(ctx, s.identity.Resolve(ctx))

	return service.SummaryView{
		Summary: stats.Summarize(posts, asOf),
		Source:  src,
	}
}

func (s *srv) NewPost(ctx context.Context) *entities.Post {
	return entities.NewPostTemplate(s.newID(), s.identity.Resolve(ctx), s.timestamp())
}

func (s *srv) CreatePost(ctx context.Context, p *entities.Post, media ...service.Media) (*entities.Post, error) {
	id := s.identity.Resolve(ctx)
	now := s.timestamp()

	p = p.Clone()
	s.fillPost(p, id, now)
	p.NormalizeTimes()

	if p.AuthorHandle != id.Handle {
		return nil, invalid("post can be created only on behalf of %s", id.Handle)
	}

	if err := validatePost(p); err != nil {
		return nil, err
	}

	prev, err := s.current(ctx, p.ID)
	switch {
	case err == nil:
		prev.NormalizeTimes()
		if err := validatePostUpdate(prev, p); err != nil {
			return nil, err
		}
	case errors.Is(err, service.ErrNotFound):
	default:
		log.WithError(err).WithField("id", p.ID).Warn("failed to check existing post, creating it")
	}

	uerr := s.attach(ctx, p, id, now, media)

	if err := s.writePost(ctx, p); err != nil {
		return p, errors.Join(err, uerr)
	}

	return p, uerr
}

func (s *srv) fillPost(p *entities.Post, id entities.Identity, now time.Time) {
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.AuthorHandle == "" {
		p.AuthorHandle = id.Handle
	}
	if p.AuthorID == "" {
		p.AuthorID = id.ID
	}
	if p.AuthorName == "" {
		p.AuthorName = id.Name
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Year == 0 {
		p.Year = p.CreatedAt.Year()
	}
	if p.Status == "" {
		p.Status = entities.StatusPending
	}
	if p.Priority == "" {
		p.Priority = entities.PriorityMedium
	}
	if p.Images == nil {
		p.Images = []entities.Image{}
	}
	if p.Comments == nil {
		p.Comments = []entities.Comment{}
	}
}

// attach uploads media and adds them to post. Failed uploads are skipped, post keeps its previous assets.
func (s *srv) attach(ctx context.Context, p *entities.Post, id entities.Identity, now time.Time, media []service.Media) error {
	var errs []error

	for i, m := range media {
		name := blob.Filename(id.ID, m.Filename, now.Add(time.Duration(i)*time.Millisecond))

		url, err := s.blob.Upload(ctx, blob.PostMedia, name, m.Data)
		if err != nil {
			log.WithError(err).WithField("file", m.Filename).Error("failed to upload post media")
			errs = append(errs, fmt.Errorf("%w: %s: %s", service.ErrAssetUploadFailed, m.Filename, err.Error()))
			continue
		}

		if strings.HasPrefix(blob.ContentType(name), "video/") {
			p.Video = &entities.Video{Src: url}
			continue
		}

		p.Images = append(p.Images, entities.Image{Src: url, Alt: m.Alt})
	}

	return errors.Join(errs...)
}

// current returns the version of post which mutations are applied to:
// local copy not yet synced, then remote one, then cached one.
func (s *srv) current(ctx context.Context, id string) (*entities.Post, error) {
	snap := s.snapshot(ctx)

	cached, ok := snap.Post(id)
	if ok && snap.DirtyPosts[id] {
		return cached, nil
	}

	p, err := s.storage.GetPost(ctx, id)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: post %s", service.ErrNotFound, id)
	case ok:
		log.WithError(err).WithField("id", id).Warn("failed to get remote post, using cached one")
		return cached, nil
	default:
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
}

func (s *srv) mutate(ctx context.Context, id string, f func(p *entities.Post) error) (*entities.Post, error) {
	prev, err := s.current(ctx, id)
	if err != nil {
		return nil, err
	}
	prev.NormalizeTimes()

	next := prev.Clone()
	if err := f(next); err != nil {
		return nil, err
	}
	next.NormalizeTimes()

	if err := validatePostUpdate(prev, next); err != nil {
		return nil, err
	}

	return next, s.writePost(ctx, next)
}

func (s *srv) EditPost(ctx context.Context, p *entities.Post) (*entities.Post, error) {
	if p.ID == "" {
		return nil, invalid("id is required")
	}

	return s.mutate(ctx, p.ID, func(next *entities.Post) error {
		*next = *p.Clone()
		if next.Images == nil {
			next.Images = []entities.Image{}
		}
		if next.Comments == nil {
			next.Comments = []entities.Comment{}
		}
		return nil
	})
}

func (s *srv) Like(ctx context.Context, id string) (*entities.Post, error) {
	return s.mutate(ctx, id, func(p *entities.Post) error {
		p.Likes++
		return nil
	})
}

func (s *srv) Dislike(ctx context.Context, id string) (*entities.Post, error) {
	return s.mutate(ctx, id, func(p *entities.Post) error {
		p.Dislikes++
		return nil
	})
}

func (s *srv) Share(ctx context.Context, id string) (*entities.Post, error) {
	return s.mutate(ctx, id, func(p *entities.Post) error {
		p.Shares++
		return nil
	})
}

func (s *srv) Comment(ctx context.Context, id string, text string) (*entities.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment text is required")
	}

	author := s.identity.Resolve(ctx)

	return s.mutate(ctx, id, func(p *entities.Post) error {
		p.Comments = append(p.Comments, entities.Comment{
			User:      author.Name,
			Text:      text,
			Timestamp: s.timestamp(),
		})
		return nil
	})
}

// DeletePost removes post from remote storage. Cache is changed only after remote accepted the call.
func (s *srv) DeletePost(ctx context.Context, id string) error {
	err := s.storage.DeletePost(ctx, id)

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		// post which never reached remote is removed locally
		if snap := s.snapshot(ctx); !snap.DirtyPosts[id] {
			if uerr := s.update(ctx, func(snap *cache.Snapshot) { snap.RemovePost(id) }); uerr != nil {
				log.WithError(uerr).Warn("failed to remove stale post from cache")
			}
			return fmt.Errorf("%w: post %s", service.ErrNotFound, id)
		}
	default:
		return fmt.Errorf("failed to delete post: %w", storage.Unavailable(err))
	}

	if err := s.update(ctx, func(snap *cache.Snapshot) { snap.RemovePost(id) }); err != nil {
		log.WithError(err).Warn("failed to remove post from cache")
	}

	return nil
}
