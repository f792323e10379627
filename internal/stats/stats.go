// Package stats builds aggregate counts over posts.
package stats

import (
	"time"

	"github.com/Decentr-net/citypulse/internal/entities"
)

// Summary is a set of counts by category.
type Summary struct {
	TotalByCategory map[string]int `json:"totalByCategory"`
	TodayByCategory map[string]int `json:"todayByCategory"`
	TotalCount      int            `json:"totalCount"`
	TodayCount      int            `json:"todayCount"`
}

// Summarize counts posts by category. A post counts as today's when its creation date
// equals asOf's date, both taken in asOf's location.
func Summarize(posts []*entities.Post, asOf time.Time) Summary {
	s := Summary{
		TotalByCategory: map[string]int{},
		TodayByCategory: map[string]int{},
	}

	y, m, d := asOf.Date()
	loc := asOf.Location()

	for _, v := range posts {
		if v == nil {
			continue
		}

		s.TotalCount++
		s.TotalByCategory[v.Category]++

		if py, pm, pd := v.CreatedAt.In(loc).Date(); py == y && pm == m && pd == d {
			s.TodayCount++
			s.TodayByCategory[v.Category]++
		}
	}

	return s
}
