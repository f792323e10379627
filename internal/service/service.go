// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/stats"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

var (
	// ErrInvalidRequest is returned when write is rejected by local validation, before any I/O.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAssetUploadFailed is returned alongside saved entity when its asset was not uploaded.
	ErrAssetUploadFailed = errors.New("asset upload failed")
	// ErrNotFound is returned when mutated post does not exist.
	ErrNotFound = errors.New("not found")
)

// Source tells where view data came from.
type Source string

const (
	// SourceRemote ...
	SourceRemote Source = "remote"
	// SourceCache ...
	SourceCache Source = "cache"
	// SourceDefault means data was synthesized.
	SourceDefault Source = "default"
)

// PostsView ...
type PostsView struct {
	Posts  []*entities.Post `json:"posts"`
	Source Source           `json:"source"`
}

// ProfileView ...
type ProfileView struct {
	Profile *entities.Profile `json:"profile"`
	Source  Source            `json:"source"`
}

// Comment is a comment left on one of the acting identity's posts.
type Comment struct {
	PostID    string    `json:"postId"`
	Title     string    `json:"title"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentsView ...
type CommentsView struct {
	Comments []Comment `json:"comments"`
	Source   Source    `json:"source"`
}

// SummaryView ...
type SummaryView struct {
	Summary stats.Summary `json:"summary"`
	Source  Source        `json:"source"`
}

// Media is an asset attached to a write.
type Media struct {
	Filename string
	Alt      string
	Data     []byte
}

// Service is the synchronization controller. Reads never fail, they degrade to cached or default data.
// Writes which reached local cache but not remote storage return the entity with an error wrapping
// storage.ErrUnavailable; such entities are sent again by Sync.
type Service interface {
	GetPosts(ctx context.Context) PostsView
	GetMyPosts(ctx context.Context) PostsView
	GetMyComments(ctx context.Context) CommentsView
	GetProfile(ctx context.Context) ProfileView
	Summarize(ctx context.Context, asOf time.Time) SummaryView

	NewPost(ctx context.Context) *entities.Post
	CreatePost(ctx context.Context, p *entities.Post, media ...Media) (*entities.Post, error)
	EditPost(ctx context.Context, p *entities.Post) (*entities.Post, error)
	Like(ctx context.Context, id string) (*entities.Post, error)
	Dislike(ctx context.Context, id string) (*entities.Post, error)
	Share(ctx context.Context, id string) (*entities.Post, error)
	Comment(ctx context.Context, id string, text string) (*entities.Post, error)
	DeletePost(ctx context.Context, id string) error

	SaveProfile(ctx context.Context, p *entities.Profile, avatar *Media) (*entities.Profile, error)
	SignOut(ctx context.Context) error

	// Sync sends locally written entities to remote storage.
	Sync(ctx context.Context) error
}
