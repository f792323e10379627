// Package identity resolves the acting principal.
package identity

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/entities"
)

var log = logrus.WithField("layer", "identity").WithField("package", "identity")

// Session is a live session provided by external auth provider.
type Session struct {
	UserID    string
	Email     string
	Name      string
	AvatarURL string
}

// SessionProvider returns current session. Nil session means there is no one.
type SessionProvider interface {
	Session(ctx context.Context) (*Session, error)
}

// Resolver resolves identity.
type Resolver interface {
	// Resolve returns authenticated identity or guest one. It never fails.
	Resolve(ctx context.Context) entities.Identity
}

type resolver struct {
	p SessionProvider
}

// New creates new instance of resolver.
func New(p SessionProvider) Resolver {
	return resolver{p: p}
}

func (r resolver) Resolve(ctx context.Context) entities.Identity {
	s, err := r.p.Session(ctx)
	if err != nil {
		log.WithError(err).Debug("failed to get session, acting as guest")
		return entities.GuestIdentity
	}

	if s == nil || s.UserID == "" {
		return entities.GuestIdentity
	}

	return FromSession(s)
}

// FromSession converts session into identity.
func FromSession(s *Session) entities.Identity {
	name := s.Name
	if name == "" {
		name = "User"
	}

	return entities.Identity{
		ID:     s.UserID,
		Handle: entities.HandleFromEmail(s.Email),
		Name:   name,
		Email:  s.Email,
		Avatar: s.AvatarURL,
	}
}

// ResolverFunc is an adapter to use ordinary functions as Resolver.
type ResolverFunc func(ctx context.Context) entities.Identity

// Resolve ...
func (f ResolverFunc) Resolve(ctx context.Context) entities.Identity {
	return f(ctx)
}

// Static returns resolver which always returns i.
func Static(i entities.Identity) Resolver {
	return ResolverFunc(func(context.Context) entities.Identity {
		return i
	})
}

type sessionKey struct{}

// WithSession puts session into context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// ContextProvider reads session put by WithSession.
type ContextProvider struct{}

// Session ...
func (ContextProvider) Session(ctx context.Context) (*Session, error) {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s, nil
}
