package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// S3Config configures the incident photo bucket.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base the object URL is built from. Defaults to Endpoint.
	PublicURL string
}

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps incident photos in an S3 compatible bucket and hands out
// public URLs of the form {PublicURL}/{bucket}/{key}.
type S3Store struct {
	api       ObjectAPI
	bucket    string
	publicURL string
	log       zerolog.Logger
}

// NewS3 builds the S3 client from static credentials.
func NewS3(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}
	return NewS3Store(client, cfg.Bucket, publicURL, log), nil
}

// NewS3Store wraps an existing object API.
func NewS3Store(api ObjectAPI, bucket, publicURL string, log zerolog.Logger) *S3Store {
	return &S3Store{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With().Str("component", "blob_store").Str("bucket", bucket).Logger(),
	}
}

// Upload stores body under a fresh key derived from filename and returns
// its public URL.
func (s *S3Store) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := ObjectKey(filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return s.publicURL + "/" + s.bucket + "/" + key, nil
}

// Delete removes the object a public URL points at. URLs outside the bucket
// are skipped and storage errors are logged, not returned, so a missing
// photo never blocks deleting its incident.
func (s *S3Store) Delete(ctx context.Context, publicURL string) error {
	key, ok := KeyFromURL(publicURL, s.bucket)
	if !ok {
		s.log.Warn().Str("url", publicURL).Msg("photo url does not belong to bucket, skipping delete")
		return nil
	}

	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("delete photo failed")
	}
	return nil
}

// ObjectKey builds a unique key keeping the client's file name without
// whitespace.
func ObjectKey(filename string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' {
			return -1
		}
		return r
	}, filename)
	if name == "" {
		name = "photo"
	}
	return uuid.NewString() + "_" + name
}

// KeyFromURL returns the part of publicURL after "/{bucket}/".
func KeyFromURL(publicURL, bucket string) (string, bool) {
	_, key, found := strings.Cut(publicURL, "/"+bucket+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}
