package seed

import (
	"time"

	"github.com/Decentr-net/citypulse/internal/entities"
)

type author struct {
	name   string
	handle string
	email  string
	bio    string
	job    string
	tags   []string
	coins  uint64
}

// nolint:gochecknoglobals
var authors = []author{
	{
		name:   "Alex Johnson",
		handle: "@alexj",
		email:  "alexj@citypulse.app",
		bio:    "Cyclist and neighborhood watch volunteer.",
		job:    "Urban Planner",
		tags:   []string{"Roads", "Cycling", "Community"},
		coins:  120,
	},
	{
		name:   "Maria Garcia",
		handle: "@mariag",
		email:  "mariag@citypulse.app",
		bio:    "Keeping our parks green.",
		job:    "Librarian",
		tags:   []string{"Parks", "Environment"},
		coins:  80,
	},
	{
		name:   "Sam Lee",
		handle: "@samlee",
		email:  "samlee@citypulse.app",
		bio:    "Night shift nurse, early bird commuter.",
		job:    "Nurse",
		tags:   []string{"Safety", "Transit"},
		coins:  45,
	},
}

// Profiles returns demo authors.
func Profiles() []*entities.Profile {
	out := make([]*entities.Profile, len(authors))
	for i, v := range authors {
		out[i] = &entities.Profile{
			ID:         ID("profile/" + v.handle),
			Name:       v.name,
			Handle:     v.handle,
			Email:      v.email,
			Avatar:     entities.DefaultAvatar,
			Bio:        v.bio,
			Profession: v.job,
			Interests:  append([]string{}, v.tags...),
			Coins:      v.coins,
		}
	}

	return out
}

// Posts returns demo posts created relative to now, newest first.
func Posts(now time.Time) []*entities.Post {
	now = entities.Timestamp(now)
	alex, maria, sam := authors[0], authors[1], authors[2]

	post := func(key string, a author, age time.Duration) *entities.Post {
		created := now.Add(-age)
		p := entities.NewPostTemplate(ID("post/"+key), entities.Identity{
			ID:     ID("profile/" + a.handle),
			Handle: a.handle,
			Name:   a.name,
		}, created)
		return p
	}

	p1 := post("pothole-main-st", alex, 2*time.Hour)
	p1.Title = "Huge pothole on Main Street"
	p1.Body = "The pothole near the 5th Avenue crossing keeps growing. Two cyclists fell this week."
	p1.Location = "Main St & 5th Ave"
	p1.City = "Springfield"
	p1.Category = "Roads"
	p1.Priority = entities.PriorityHigh
	p1.Images = []entities.Image{{Src: "/placeholder.jpg", Alt: "Pothole on Main Street"}}
	p1.Likes = 24
	p1.Shares = 5
	p1.Comments = []entities.Comment{
		{User: "Maria Garcia", Text: "Almost hit it this morning!", Timestamp: now.Add(-90 * time.Minute)},
		{User: "Sam Lee", Text: "Reported it to the city hotline too.", Timestamp: now.Add(-1 * time.Hour)},
	}

	p2 := post("streetlight-oak-park", sam, 26*time.Hour)
	p2.Title = "Streetlight out near Oak Park"
	p2.Body = "The whole path along the east gate is dark after 8pm."
	p2.Location = "Oak Park, east gate"
	p2.City = "Springfield"
	p2.Category = "Safety"
	p2.Priority = entities.PriorityMedium
	p2.Likes = 11
	p2.Dislikes = 1
	p2.Status = entities.StatusInProgress

	p3 := post("overflowing-bins", maria, 3*24*time.Hour)
	p3.Title = "Overflowing bins at the river walk"
	p3.Body = "Bins were not collected for a week, trash is spreading to the water."
	p3.Location = "River Walk"
	p3.City = "Springfield"
	p3.Category = "Sanitation"
	p3.Priority = entities.PriorityMedium
	p3.Images = []entities.Image{{Src: "/placeholder.jpg", Alt: "Overflowing bins"}}
	p3.Likes = 17
	p3.Shares = 2
	p3.Status = entities.StatusResolved
	p3.Comments = []entities.Comment{
		{User: "Alex Johnson", Text: "Collected today, thanks everyone.", Timestamp: now.Add(-24 * time.Hour)},
	}

	p4 := post("graffiti-bridge", alex, 6*24*time.Hour)
	p4.Title = "Graffiti on the old bridge"
	p4.Body = "Is this street art or vandalism? Worth a discussion."
	p4.Location = "Old Mill Bridge"
	p4.City = "Springfield"
	p4.Category = "Public Spaces"
	p4.Priority = entities.PriorityLow
	p4.Likes = 3
	p4.Dislikes = 4
	p4.Status = entities.StatusRejected
	p4.AdminNote = "Registered mural, commissioned by the arts council."

	return []*entities.Post{p1, p2, p3, p4}
}
