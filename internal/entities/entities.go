// Package entities contains main entities of service.
package entities

import (
	"strings"
	"time"
)

// Status is a post's moderation state.
type Status string

const (
	// StatusPending ...
	StatusPending Status = "pending"
	// StatusInProgress ...
	StatusInProgress Status = "in_progress"
	// StatusResolved ...
	StatusResolved Status = "resolved"
	// StatusRejected ...
	StatusRejected Status = "rejected"
)

// Valid returns true if status is one of known statuses.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo returns true when post may move from s to next.
// Statuses only move forward; resolved and rejected are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}

	from, ok := statusRank[s]
	if !ok {
		return false
	}

	to, ok := statusRank[next]
	if !ok {
		return false
	}

	return to > from
}

// nolint:gochecknoglobals
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusResolved:   2,
	StatusRejected:   2,
}

// Priority ...
type Priority string

const (
	// PriorityLow ...
	PriorityLow Priority = "low"
	// PriorityMedium ...
	PriorityMedium Priority = "medium"
	// PriorityHigh ...
	PriorityHigh Priority = "high"
)

// Rank returns ordinal of priority, -1 for unknown values.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return -1
	}
}

// Image ...
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Video ...
type Video struct {
	Src string `json:"src"`
}

// Comment is appended to post and never edited.
type Comment struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Post is a civic issue report.
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	AuthorName   string    `json:"authorName"`
	AuthorHandle string    `json:"authorHandle"`
	Location     string    `json:"location"`
	City         string    `json:"city"`
	Year         int       `json:"year"`
	Category     string    `json:"category"`
	Priority     Priority  `json:"priority"`
	Images       []Image   `json:"images"`
	Video        *Video    `json:"video,omitempty"`
	Likes        uint32    `json:"likes"`
	Dislikes     uint32    `json:"dislikes"`
	Comments     []Comment `json:"comments"`
	Shares       uint32    `json:"shares"`
	Status       Status    `json:"status"`
	AdminNote    string    `json:"adminNote,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Clone returns deep copy of post.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}

	out := *p
	out.Images = append([]Image{}, p.Images...)
	out.Comments = append([]Comment{}, p.Comments...)
	if p.Video != nil {
		v := *p.Video
		out.Video = &v
	}

	return &out
}

// TimePrecision is the finest time precision every storage keeps (BSON dates hold milliseconds).
const TimePrecision = time.Millisecond

// Timestamp returns t in UTC rounded down to TimePrecision.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(TimePrecision)
}

// NormalizeTimes rounds creation time and comment timestamps down to TimePrecision.
func (p *Post) NormalizeTimes() {
	p.CreatedAt = Timestamp(p.CreatedAt)
	for i := range p.Comments {
		p.Comments[i].Timestamp = Timestamp(p.Comments[i].Timestamp)
	}
}

// ClonePosts returns deep copy of posts slice.
func ClonePosts(p []*Post) []*Post {
	out := make([]*Post, len(p))
	for i, v := range p {
		out[i] = v.Clone()
	}

	return out
}

// FilterByAuthor returns posts which were written by handle keeping their order.
func FilterByAuthor(p []*Post, handle string) []*Post {
	out := make([]*Post, 0)
	for _, v := range p {
		if v.AuthorHandle == handle {
			out = append(out, v)
		}
	}

	return out
}

// NewPostTemplate returns a post prefilled for identity.
func NewPostTemplate(id string, author Identity, now time.Time) *Post {
	now = Timestamp(now)

	return &Post{
		ID:           id,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorHandle: author.Handle,
		Year:         now.Year(),
		Priority:     PriorityMedium,
		Images:       []Image{},
		Comments:     []Comment{},
		Status:       StatusPending,
		CreatedAt:    now,
	}
}

// Profile ...
type Profile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Handle     string   `json:"handle"`
	Email      string   `json:"email"`
	Avatar     string   `json:"avatar"`
	Bio        string   `json:"bio"`
	Profession string   `json:"profession"`
	Interests  []string `json:"interests"`
	Coins      uint64   `json:"coins"`
}

// Clone returns deep copy of profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	out := *p
	out.Interests = append([]string{}, p.Interests...)

	return &out
}

// DefaultAvatar is used when profile has no avatar.
const DefaultAvatar = "/placeholder-user.jpg"

// AvatarOrDefault ...
func (p *Profile) AvatarOrDefault() string {
	if p.Avatar == "" {
		return DefaultAvatar
	}

	return p.Avatar
}

// Identity is an acting principal.
type Identity struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Guest  bool   `json:"guest"`
}

// GuestIdentity is used when there is no live session.
// nolint:gochecknoglobals
var GuestIdentity = Identity{
	ID:     "guest",
	Handle: "@guest",
	Name:   "Guest User",
	Guest:  true,
}

// GuestProfile returns profile shown for guest identity.
func GuestProfile() *Profile {
	return DefaultProfile(GuestIdentity)
}

// DefaultProfile synthesizes profile for identity which has no stored one.
func DefaultProfile(i Identity) *Profile {
	p := &Profile{
		ID:         i.ID,
		Name:       i.Name,
		Handle:     i.Handle,
		Email:      i.Email,
		Avatar:     i.Avatar,
		Bio:        "Welcome to CityPulse!",
		Profession: "Community Member",
		Interests:  []string{"Community", "Technology"},
	}

	if p.Name == "" {
		p.Name = "User"
	}
	if p.Handle == "" {
		p.Handle = HandleFromEmail(i.Email)
	}
	if p.Avatar == "" {
		p.Avatar = DefaultAvatar
	}

	return p
}

// HandleFromEmail builds handle from local part of email.
func HandleFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}

	if local == "" {
		return "@user"
	}

	return "@" + local
}
