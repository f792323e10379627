package impl

import (
	"context"
	"errors"
	"fmt"

	"github.com/Decentr-net/citypulse/internal/blob"
	"github.com/Decentr-net/citypulse/internal/cache"
	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/service"
	"github.com/Decentr-net/citypulse/internal/storage"
)

// profile returns profile of identity: remote one, cached one or synthesized default.
// Missing remote profile is created from the default template.
func (s *srv) profile(ctx context.Context, id entities.Identity) (*entities.Profile, service.Source) {
	if id.Guest {
		return entities.GuestProfile(), service.SourceDefault
	}

	p, err := s.storage.GetProfile(ctx, id.ID)
	switch {
	case err == nil:
		out, src := p, service.SourceRemote

		if err := s.update(ctx, func(snap *cache.Snapshot) {
			snap.Identity = &id
			if cached, ok := snap.Profiles[id.ID]; ok && snap.DirtyProfiles[id.ID] {
				out, src = cached.Clone(), service.SourceCache
				return
			}
			snap.Profiles[id.ID] = p.Clone()
		}); err != nil {
			log.WithError(err).Warn("failed to cache profile")
		}

		return out, src
	case errors.Is(err, storage.ErrNotFound):
		if cached, ok := s.cachedProfile(ctx, id.ID); ok {
			return cached, service.SourceCache
		}

		p := entities.DefaultProfile(id)
		if err := s.writeProfile(ctx, p); err != nil {
			log.WithError(err).Warn("failed to store default profile")
		}

		return p, service.SourceDefault
	default:
		log.WithError(err).Warn("failed to get remote profile, falling back to cache")

		if cached, ok := s.cachedProfile(ctx, id.ID); ok {
			return cached, service.SourceCache
		}

		return entities.DefaultProfile(id), service.SourceDefault
	}
}

func (s *srv) cachedProfile(ctx context.Context, id string) (*entities.Profile, bool) {
	p, ok := s.snapshot(ctx).Profiles[id]
	return p, ok
}

func (s *srv) GetProfile(ctx context.Context) service.ProfileView {
	if err := s.Sync(ctx); err != nil {
		log.WithError(err).Debug("failed to sync before read")
	}

	p, src := s.profile(ctx, s.identity.Resolve(ctx))

	return service.ProfileView{
		Profile: p,
		Source:  src,
	}
}

// previousProfile returns last known profile of identity or nil if there is none.
func (s *srv) previousProfile(ctx context.Context, id string) *entities.Profile {
	snap := s.snapshot(ctx)
	if p, ok := snap.Profiles[id]; ok && snap.DirtyProfiles[id] {
		return p
	}

	p, err := s.storage.GetProfile(ctx, id)
	if err == nil {
		return p
	}

	if p, ok := snap.Profiles[id]; ok {
		return p
	}

	return nil
}

func (s *srv) SaveProfile(ctx context.Context, p *entities.Profile, avatar *service.Media) (*entities.Profile, error) {
	id := s.identity.Resolve(ctx)
	if id.Guest {
		return nil, invalid("guest profile can not be changed")
	}

	if p.ID != "" && p.ID != id.ID {
		return nil, invalid("profile belongs to another user")
	}

	prev := s.previousProfile(ctx, id.ID)

	next := p.Clone()
	next.ID = id.ID
	next.Interests = normalizeInterests(next.Interests)
	if next.Handle == "" {
		next.Handle = id.Handle
		if prev != nil {
			next.Handle = prev.Handle
		}
	}
	if next.Email == "" {
		next.Email = id.Email
	}

	if err := validateProfile(prev, next); err != nil {
		return nil, err
	}

	var uerr error
	if avatar != nil {
		url, err := s.blob.Upload(ctx, blob.ProfilePhotos, blob.Filename(id.ID, avatar.Filename, s.now()), avatar.Data)
		if err != nil {
			log.WithError(err).Error("failed to upload avatar")
			uerr = fmt.Errorf("%w: %s", service.ErrAssetUploadFailed, err.Error())

			if prev != nil {
				next.Avatar = prev.Avatar
			}
		} else {
			next.Avatar = url
		}
	}

	next.Avatar = next.AvatarOrDefault()

	if err := s.writeProfile(ctx, next); err != nil {
		return next, errors.Join(err, uerr)
	}

	return next, uerr
}
