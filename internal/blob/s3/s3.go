// Package s3 is implementation of blob storage on top of S3 compatible object storage.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/blob"
)

var log = logrus.WithField("layer", "blob").WithField("package", "s3")

// Config ...
type Config struct {
	Region     string
	Bucket     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	DisableSSL bool
}

type storage struct {
	client s3iface.S3API
	bucket string

	endpoint   string
	region     string
	disableSSL bool
}

// New creates S3 session and returns blob.Storage over it.
// Non-empty endpoint switches client to path-style addressing (MinIO).
func New(cfg Config) (blob.Storage, error) {
	c := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	if cfg.AccessKey != "" {
		c.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	if cfg.Endpoint != "" {
		c.Endpoint = aws.String(cfg.Endpoint)
		c.S3ForcePathStyle = aws.Bool(true)
		c.DisableSSL = aws.Bool(cfg.DisableSSL)
	}

	sess, err := session.NewSession(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return NewWithClient(s3.New(sess), cfg), nil
}

// NewWithClient returns blob.Storage over already created client.
func NewWithClient(client s3iface.S3API, cfg Config) blob.Storage {
	return storage{
		client:     client,
		bucket:     cfg.Bucket,
		endpoint:   cfg.Endpoint,
		region:     cfg.Region,
		disableSSL: cfg.DisableSSL,
	}
}

func (s storage) Upload(ctx context.Context, ns blob.Namespace, filename string, data []byte) (string, error) {
	key := path.Join(string(ns), filename)

	if _, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(blob.ContentType(filename)),
	}); err != nil {
		log.WithError(err).WithField("key", key).Error("failed to put object")
		return "", fmt.Errorf("%w: %s", blob.ErrUploadFailed, err.Error())
	}

	return s.publicURL(key), nil
}

func (s storage) publicURL(key string) string {
	if s.endpoint != "" && !strings.Contains(s.endpoint, "amazonaws.com") {
		protocol := "https"
		if s.disableSSL {
			protocol = "http"
		}

		host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "http://"), "https://")

		return fmt.Sprintf("%s://%s/%s/%s", protocol, strings.TrimSuffix(host, "/"), s.bucket, key)
	}

	region := s.region
	if region == "" {
		region = "us-east-1"
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, region, key)
}
