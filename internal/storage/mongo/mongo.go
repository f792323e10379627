// Package mongo is implementation of storage interface on top of MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/storage"
)

const (
	postsCollection    = "posts"
	profilesCollection = "profiles"
)

type mg struct {
	posts    *mongo.Collection
	profiles *mongo.Collection
	timeout  time.Duration
}

type postDoc struct {
	ID           string             `bson:"_id"`
	AuthorID     string             `bson:"author_id"`
	Title        string             `bson:"title"`
	Body         string             `bson:"body"`
	AuthorName   string             `bson:"author_name"`
	AuthorHandle string             `bson:"author_handle"`
	Location     string             `bson:"location"`
	City         string             `bson:"city"`
	Year         int                `bson:"year"`
	Category     string             `bson:"category"`
	Priority     string             `bson:"priority"`
	Images       []entities.Image   `bson:"images"`
	VideoSrc     string             `bson:"video_src,omitempty"`
	Likes        uint32             `bson:"likes"`
	Dislikes     uint32             `bson:"dislikes"`
	Comments     []entities.Comment `bson:"comments"`
	Shares       uint32             `bson:"shares"`
	Status       string             `bson:"status"`
	AdminNote    string             `bson:"admin_note"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type profileDoc struct {
	ID         string   `bson:"_id"`
	Name       string   `bson:"name"`
	Handle     string   `bson:"handle"`
	Email      string   `bson:"email"`
	Avatar     string   `bson:"avatar"`
	Bio        string   `bson:"bio"`
	Profession string   `bson:"profession"`
	Interests  []string `bson:"interests"`
	Coins      int64    `bson:"coins"`
}

// New creates new instance of mongo storage over db. Every call is limited by timeout.
func New(db *mongo.Database, timeout time.Duration) storage.Storage {
	return mg{
		posts:    db.Collection(postsCollection),
		profiles: db.Collection(profilesCollection),
		timeout:  timeout,
	}
}

func (s mg) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.timeout)
}

func notDeleted() bson.M {
	return bson.M{"deleted_at": bson.M{"$exists": false}}
}

func (s mg) ListPosts(ctx context.Context) ([]*entities.Post, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := s.posts.Find(ctx, notDeleted(), opts)
	if err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to find: %w", err))
	}

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Unavailable(fmt.Errorf("failed to decode: %w", err))
	}

	out := make([]*entities.Post, len(docs))
	for i := range docs {
		out[i] = toPost(&docs[i])
	}

	return out, nil
}

func (s mg) GetPost(ctx context.Context, id string) (*entities.Post, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	filter["_id"] = id

	var doc postDoc
	if err := s.posts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}

		return nil, storage.Unavailable(fmt.Errorf("failed to find: %w", err))
	}

	return toPost(&doc), nil
}

func (s mg) UpsertPost(ctx context.Context, p *entities.Post) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d := toPostDoc(p)

	update := bson.M{
		"$set": bson.M{
			"title":       d.Title,
			"body":        d.Body,
			"author_name": d.AuthorName,
			"location":    d.Location,
			"city":        d.City,
			"year":        d.Year,
			"category":    d.Category,
			"priority":    d.Priority,
			"images":      d.Images,
			"video_src":   d.VideoSrc,
			"likes":       d.Likes,
			"dislikes":    d.Dislikes,
			"comments":    d.Comments,
			"shares":      d.Shares,
			"status":      d.Status,
			"admin_note":  d.AdminNote,
		},
		"$setOnInsert": bson.M{
			"author_id":     d.AuthorID,
			"author_handle": d.AuthorHandle,
			"created_at":    d.CreatedAt,
		},
	}

	if _, err := s.posts.UpdateOne(ctx, bson.M{"_id": d.ID}, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to update: %w", err))
	}

	return nil
}

func (s mg) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	filter["_id"] = id

	res, err := s.posts.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}})
	if err != nil {
		return storage.Unavailable(fmt.Errorf("failed to update: %w", err))
	}

	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s mg) GetProfile(ctx context.Context, id string) (*entities.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc profileDoc
	if err := s.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}

		return nil, storage.Unavailable(fmt.Errorf("failed to find: %w", err))
	}

	return &entities.Profile{
		ID:         doc.ID,
		Name:       doc.Name,
		Handle:     doc.Handle,
		Email:      doc.Email,
		Avatar:     doc.Avatar,
		Bio:        doc.Bio,
		Profession: doc.Profession,
		Interests:  append([]string{}, doc.Interests...),
		Coins:      uint64(doc.Coins),
	}, nil
}

func (s mg) SetProfile(ctx context.Context, p *entities.Profile) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}

	update := bson.M{
		"$set": bson.M{
			"name":       p.Name,
			"handle":     p.Handle,
			"email":      p.Email,
			"avatar":     p.Avatar,
			"bio":        p.Bio,
			"profession": p.Profession,
			"interests":  interests,
		},
		// coins never go down
		"$max": bson.M{"coins": int64(p.Coins)},
	}

	if _, err := s.profiles.UpdateOne(ctx, bson.M{"_id": p.ID}, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return storage.Unavailable(fmt.Errorf("failed to update: %w", err))
	}

	return nil
}

func toPostDoc(p *entities.Post) *postDoc {
	d := &postDoc{
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
		Images:       p.Images,
		Likes:        p.Likes,
		Dislikes:     p.Dislikes,
		Comments:     p.Comments,
		Shares:       p.Shares,
		Status:       string(p.Status),
		AdminNote:    p.AdminNote,
		CreatedAt:    p.CreatedAt.UTC(),
	}

	if d.Images == nil {
		d.Images = []entities.Image{}
	}
	if d.Comments == nil {
		d.Comments = []entities.Comment{}
	}
	if p.Video != nil {
		d.VideoSrc = p.Video.Src
	}

	return d
}

func toPost(d *postDoc) *entities.Post {
	p := &entities.Post{
		ID:           d.ID,
		AuthorID:     d.AuthorID,
		Title:        d.Title,
		Body:         d.Body,
		AuthorName:   d.AuthorName,
		AuthorHandle: d.AuthorHandle,
		Location:     d.Location,
		City:         d.City,
		Year:         d.Year,
		Category:     d.Category,
		Priority:     entities.Priority(d.Priority),
		Images:       append([]entities.Image{}, d.Images...),
		Likes:        d.Likes,
		Dislikes:     d.Dislikes,
		Comments:     append([]entities.Comment{}, d.Comments...),
		Shares:       d.Shares,
		Status:       entities.Status(d.Status),
		AdminNote:    d.AdminNote,
		CreatedAt:    d.CreatedAt,
	}

	if d.VideoSrc != "" {
		p.Video = &entities.Video{Src: d.VideoSrc}
	}

	return p
}
