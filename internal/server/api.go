package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Decentr-net/citypulse/internal/entities"
)

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// CreatePostRequest ...
// swagger:model
type CreatePostRequest struct {
	Post  entities.Post `json:"post"`
	Media []Media       `json:"media"`
}

// Media is an uploaded asset. Data is base64 encoded in JSON.
// swagger:model
type Media struct {
	Filename string `json:"filename"`
	Alt      string `json:"alt"`
	Data     []byte `json:"data"`
}

// CommentRequest ...
// swagger:model
type CommentRequest struct {
	Text string `json:"text"`
}

// SaveProfileRequest ...
// swagger:model
type SaveProfileRequest struct {
	Profile entities.Profile `json:"profile"`
	Avatar  *Media           `json:"avatar,omitempty"`
}

// PostResponse ...
// swagger:model
type PostResponse struct {
	Post *entities.Post `json:"post"`
	// Warning is set when post was saved only partially, e.g. its media was not uploaded
	// or remote storage was unavailable and the post will be synced later.
	Warning string `json:"warning,omitempty"`
}

// ProfileResponse ...
// swagger:model
type ProfileResponse struct {
	Profile *entities.Profile `json:"profile"`
	Warning string            `json:"warning,omitempty"`
}

// ChatRequest ...
// swagger:model
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse ...
// swagger:model
type ChatResponse struct {
	Response string `json:"response"`
}

// EmptyResponse ...
// swagger:model
type EmptyResponse struct{}

func writeOK(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeOK(w, status, Error{Error: message})
}

func writeInternalErrorf(ctx context.Context, w http.ResponseWriter, format string, args ...interface{}) {
	logger(ctx).Errorf(format, args...)

	writeError(w, http.StatusInternalServerError, "internal error")
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	return nil
}
