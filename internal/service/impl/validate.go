package impl

import (
	"fmt"
	"strings"

	"github.com/Decentr-net/citypulse/internal/entities"
	"github.com/Decentr-net/citypulse/internal/service"
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func validatePost(p *entities.Post) error {
	switch {
	case p.ID == "":
		return invalid("id is required")
	case strings.TrimSpace(p.Title) == "":
		return invalid("title is required")
	case p.AuthorHandle == "":
		return invalid("author handle is required")
	case strings.TrimSpace(p.Category) == "":
		return invalid("category is required")
	case !p.Status.Valid():
		return invalid("unknown status %q", p.Status)
	case p.Priority.Rank() < 0:
		return invalid("unknown priority %q", p.Priority)
	case p.Status == entities.StatusRejected && strings.TrimSpace(p.AdminNote) == "":
		return invalid("admin note is required for rejected post")
	}

	return nil
}

// validatePostUpdate checks that next is a legal successor of prev.
func validatePostUpdate(prev, next *entities.Post) error {
	switch {
	case prev.ID != next.ID:
		return invalid("id can not be changed")
	case prev.AuthorID != next.AuthorID:
		return invalid("author can not be changed")
	case prev.AuthorHandle != next.AuthorHandle:
		return invalid("author handle can not be changed")
	case !prev.CreatedAt.Equal(next.CreatedAt):
		return invalid("creation time can not be changed")
	case !prev.Status.CanTransitionTo(next.Status):
		return invalid("status can not be changed from %s to %s", prev.Status, next.Status)
	}

	if len(next.Comments) < len(prev.Comments) {
		return invalid("comments can not be removed")
	}

	for i, v := range prev.Comments {
		c := next.Comments[i]
		if c.User != v.User || c.Text != v.Text || !c.Timestamp.Equal(v.Timestamp) {
			return invalid("comments can not be edited")
		}
	}

	return validatePost(next)
}

func validateProfile(prev, next *entities.Profile) error {
	switch {
	case next.ID == "":
		return invalid("id is required")
	case strings.TrimSpace(next.Name) == "":
		return invalid("name is required")
	case next.Handle == "":
		return invalid("handle is required")
	}

	if prev == nil {
		return nil
	}

	switch {
	case prev.Handle != next.Handle:
		return invalid("handle can not be changed")
	case next.Coins < prev.Coins:
		return invalid("coins can not be decreased")
	}

	return nil
}

// normalizeInterests trims tags and drops empty and duplicated ones keeping the first occurrence.
func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))

	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}

	return out
}
