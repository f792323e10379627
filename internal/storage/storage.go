// Package storage contains a storage interface.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Decentr-net/citypulse/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// ErrUnavailable is returned when remote storage can not serve request.
// Callers should treat it as "no data", not as "empty data".
var ErrUnavailable = errors.New("remote unavailable")

// Storage provides methods for interacting with remote posts and profiles tables.
type Storage interface {
	ListPosts(ctx context.Context) ([]*entities.Post, error)
	GetPost(ctx context.Context, id string) (*entities.Post, error)
	// UpsertPost inserts post or replaces it by id. Author and creation time are never overwritten.
	UpsertPost(ctx context.Context, p *entities.Post) error
	DeletePost(ctx context.Context, id string) error

	GetProfile(ctx context.Context, id string) (*entities.Profile, error)
	SetProfile(ctx context.Context, p *entities.Profile) error
}

// Unavailable wraps err with ErrUnavailable.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
}
