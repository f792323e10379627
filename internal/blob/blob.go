// Package blob contains an object storage interface.
package blob

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

//go:generate mockgen -destination=./mock/blob.go -package=mock -source=blob.go

// Namespace is a top-level folder in object storage.
type Namespace string

const (
	// ProfilePhotos keeps avatars.
	ProfilePhotos Namespace = "profile_photos"
	// PostMedia keeps images and videos attached to posts.
	PostMedia Namespace = "post_media"
)

// ErrUploadFailed is returned when object can not be stored.
var ErrUploadFailed = errors.New("upload failed")

// ErrNotConfigured is returned by Disabled storage.
var ErrNotConfigured = fmt.Errorf("%w: object storage is not configured", ErrUploadFailed)

// Storage puts objects into remote object storage.
type Storage interface {
	// Upload stores data under ns/filename and returns public url of the object.
	Upload(ctx context.Context, ns Namespace, filename string, data []byte) (string, error)
}

// Disabled is used when no object storage is configured. Every upload fails.
type Disabled struct{}

// Upload ...
func (Disabled) Upload(_ context.Context, _ Namespace, _ string, _ []byte) (string, error) {
	return "", ErrNotConfigured
}

// Filename builds owner-scoped object name: <owner>_<unix millis><ext>.
func Filename(owner, original string, now time.Time) string {
	return fmt.Sprintf("%s_%d%s", owner, now.UnixNano()/int64(time.Millisecond), strings.ToLower(filepath.Ext(original)))
}

// nolint:gochecknoglobals
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".heic": "image/heic",
}

// ContentType returns mime type by filename extension.
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	if t, ok := mediaTypes[ext]; ok {
		return t
	}

	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}

	return "application/octet-stream"
}
