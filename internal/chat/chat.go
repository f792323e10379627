// Package chat builds analytics prompts and answers them with a text generation model.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Decentr-net/citypulse/internal/stats"
)

//go:generate mockgen -destination=./mock/chat.go -package=mock -source=chat.go

// Fallback is returned when model produced no answer.
const Fallback = "Sorry, I couldn't generate a response."

// Answerer generates text for prompt.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// Prompt renders user query with numeric context.
func Prompt(query string, s stats.Summary) string {
	return fmt.Sprintf(
		"User query: %s\n\nData summary:\nTotal issues: %d\nToday's issues: %d\n"+
			"Category breakdown: %s\nToday's category breakdown: %s\n\n"+
			"Please provide a helpful response based on this data.",
		query, s.TotalCount, s.TodayCount, counts(s.TotalByCategory), counts(s.TodayByCategory),
	)
}

func counts(m map[string]int) string {
	if m == nil {
		m = map[string]int{}
	}

	// map keys are sorted by encoding/json
	b, _ := json.Marshal(m) // nolint:errcheck

	return string(b)
}
