// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")

const postColumns = `id, author_id, title, body, author_name, author_handle, location, city, year, category,
	priority, images, video_src, likes, dislikes, comments, shares, status, admin_note, created_at`

type pg struct {
	ext     sqlx.ExtContext
	timeout time.Duration
}

type postDTO struct {
	ID           string         `db:"id"`
	AuthorID     string         `db:"author_id"`
	Title        string         `db:"title"`
	Body         string         `db:"body"`
	AuthorName   string         `db:"author_name"`
	AuthorHandle string         `db:"author_handle"`
	Location     string         `db:"location"`
	City         string         `db:"city"`
	Year         int            `db:"year"`
	Category     string         `db:"category"`
	Priority     string         `db:"priority"`
	Images       types.JSONText `db:"images"`
	VideoSrc     string         `db:"video_src"`
	Likes        uint32         `db:"likes"`
	Dislikes     uint32         `db:"dislikes"`
	Comments     types.JSONText `db:"comments"`
	Shares       uint32         `db:"shares"`
	Status       string         `db:"status"`
	AdminNote    string         `db:"admin_note"`
	CreatedAt    time.Time      `db:"created_at"`
}

type profileDTO struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Handle     string         `db:"handle"`
	Email      string         `db:"email"`
	Avatar     string         `db:"avatar"`
	Bio        string         `db:"bio"`
	Profession string         `db:"profession"`
	Interests  pq.StringArray `db:"interests"`
	Coins      uint64         `db:"coins"`
}

// New creates new instance of pg. Every call is limited by timeout.
func New(db *sql.DB, timeout time.Duration) storage.Storage {
	return pg{
		ext:     sqlx.NewDb(db, "postgres"),
		timeout: timeout,
	}
}

func (s pg) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.timeout)
}

func (s pg) ListPosts(ctx context.Context) ([]*entities.Post, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var p []*postDTO

	if err := sqlx.SelectContext(ctx, s.ext, &p, fmt.Sprintf(`
			SELECT %s FROM post
			WHERE deleted_at IS NULL
			ORDER BY created_at DESC, id
		`, postColumns),
	); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to query: %w", err))
	}

	out := make([]*entities.Post, 0, len(p))
	for _, v := range p {
		post, err := toPost(v)
		if err != nil {
			return nil, storage.Unavailable(err)
		}
		out = append(out, post)
	}

	return out, nil
}

func (s pg) GetPost(ctx context.Context, id string) (*entities.Post, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, fmt.Sprintf(`
			SELECT %s FROM post
			WHERE id = $1 AND deleted_at IS NULL
		`, postColumns),
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, storage.Unavailable(fmt.Errorf("failed to query: %w", err))
	}

	post, err := toPost(&p)
	if err != nil {
		return nil, storage.Unavailable(err)
	}

	return post, nil
}

func (s pg) UpsertPost(ctx context.Context, p *entities.Post) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	post, err := toPostDTO(p)
	if err != nil {
		return err
	}

	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		fmt.Sprintf(`
			INSERT INTO post(%s)
			VALUES(:id, :author_id, :title, :body, :author_name, :author_handle, :location, :city, :year, :category,
				:priority, :images, :video_src, :likes, :dislikes, :comments, :shares, :status, :admin_note, :created_at)
			ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, body=excluded.body, author_name=excluded.author_name, location=excluded.location,
			city=excluded.city, year=excluded.year, category=excluded.category, priority=excluded.priority,
			images=excluded.images, video_src=excluded.video_src, likes=excluded.likes, dislikes=excluded.dislikes,
			comments=excluded.comments, shares=excluded.shares, status=excluded.status, admin_note=excluded.admin_note
		`, postColumns), post,
	); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to exec: %w", err))
	}

	return nil
}

func (s pg) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.ext.ExecContext(ctx,
		`UPDATE post SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL`,
		id, time.Now().UTC(),
	)

	if err != nil {
		return storage.Unavailable(fmt.Errorf("failed to exec: %w", err))
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) GetProfile(ctx context.Context, id string) (*entities.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var p profileDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, `
			SELECT id, name, handle, email, avatar, bio, profession, interests, coins FROM profile
			WHERE id = $1
		`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, storage.Unavailable(fmt.Errorf("failed to query: %w", err))
	}

	return &entities.Profile{
		ID:         p.ID,
		Name:       p.Name,
		Handle:     p.Handle,
		Email:      p.Email,
		Avatar:     p.Avatar,
		Bio:        p.Bio,
		Profession: p.Profession,
		Interests:  []string(p.Interests),
		Coins:      p.Coins,
	}, nil
}

func (s pg) SetProfile(ctx context.Context, p *entities.Profile) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}

	profile := profileDTO{
		ID:         p.ID,
		Name:       p.Name,
		Handle:     p.Handle,
		Email:      p.Email,
		Avatar:     p.Avatar,
		Bio:        p.Bio,
		Profession: p.Profession,
		Interests:  pq.StringArray(interests),
		Coins:      p.Coins,
	}

	// coins are a gamification counter, it never goes down
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO profile(id, name, handle, email, avatar, bio, profession, interests, coins)
			VALUES(:id, :name, :handle, :email, :avatar, :bio, :profession, :interests, :coins)
			ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, handle=excluded.handle, email=excluded.email, avatar=excluded.avatar, bio=excluded.bio,
			profession=excluded.profession, interests=excluded.interests, coins=GREATEST(profile.coins, excluded.coins)
		`, profile,
	); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to exec: %w", err))
	}

	return nil
}

func toPostDTO(p *entities.Post) (*postDTO, error) {
	images := p.Images
	if images == nil {
		images = []entities.Image{}
	}

	comments := p.Comments
	if comments == nil {
		comments = []entities.Comment{}
	}

	i, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}

	c, err := json.Marshal(comments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comments: %w", err)
	}

	var video string
	if p.Video != nil {
		video = p.Video.Src
	}

	return &postDTO{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Title:        p.Title,
		Body:         p.Body,
		AuthorName:   p.AuthorName,
		AuthorHandle: p.AuthorHandle,
		Location:     p.Location,
		City:         p.City,
		Year:         p.Year,
		Category:     p.Category,
		Priority:     string(p.Priority),
		Images:       types.JSONText(i),
		VideoSrc:     video,
		Likes:        p.Likes,
		Dislikes:     p.Dislikes,
		Comments:     types.JSONText(c),
		Shares:       p.Shares,
		Status:       string(p.Status),
		AdminNote:    p.AdminNote,
		CreatedAt:    p.CreatedAt.UTC(),
	}, nil
}

func toPost(p *postDTO) (*entities.Post, error) {
	out := entities.Post{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Title:        p.Title,
		Body:         p.Body,
		AuthorName:   p.AuthorName,
		AuthorHandle: p.AuthorHandle,
		Location:     p.Location,
		City:         p.City,
		Year:         p.Year,
		Category:     p.Category,
		Priority:     entities.Priority(p.Priority),
		Likes:        p.Likes,
		Dislikes:     p.Dislikes,
		Shares:       p.Shares,
		Status:       entities.Status(p.Status),
		AdminNote:    p.AdminNote,
		CreatedAt:    p.CreatedAt,
	}

	if err := p.Images.Unmarshal(&out.Images); err != nil {
		log.WithField("id", p.ID).WithError(err).Error("failed to unmarshal images")
		return nil, fmt.Errorf("failed to unmarshal images: %w", err)
	}

	if err := p.Comments.Unmarshal(&out.Comments); err != nil {
		log.WithField("id", p.ID).WithError(err).Error("failed to unmarshal comments")
		return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
	}

	if p.VideoSrc != "" {
		out.Video = &entities.Video{Src: p.VideoSrc}
	}

	return &out, nil
}
