package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectAPI is a mock implementation of ObjectAPI.
type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		url   string
		key   string
		found bool
	}{
		{url: "https://cdn.example.com/incidents/abc_photo.jpg", key: "abc_photo.jpg", found: true},
		{url: "https://x.supabase.co/storage/v1/object/public/incidents/dir/a.png", key: "dir/a.png", found: true},
		{url: "https://cdn.example.com/other/abc.jpg"},
		{url: "https://cdn.example.com/incidents/"},
		{url: ""},
	}

	for _, tt := range tests {
		key, found := KeyFromURL(tt.url, "incidents")
		assert.Equal(t, tt.found, found, tt.url)
		assert.Equal(t, tt.key, key, tt.url)
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("my street photo.jpg")
	assert.True(t, strings.HasSuffix(key, "_mystreetphoto.jpg"), key)
	assert.NotEqual(t, key, ObjectKey("my street photo.jpg"))

	assert.True(t, strings.HasSuffix(ObjectKey("  "), "_photo"))
	assert.NotContains(t, ObjectKey("../../etc/passwd"), "/")
}

func TestS3Store_UploadReturnsPublicURL(t *testing.T) {
	api := new(MockObjectAPI)
	store := NewS3Store(api, "incidents", "https://cdn.example.com/", zerolog.Nop())

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "incidents" &&
			aws.ToString(in.ContentType) == "image/jpeg" &&
			strings.HasSuffix(aws.ToString(in.Key), "_pothole.jpg") &&
			string(body) == "jpeg-bytes"
	})).Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Upload(context.Background(), "pothole.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/incidents/"), url)
	key, ok := KeyFromURL(url, "incidents")
	assert.True(t, ok)
	assert.True(t, strings.HasSuffix(key, "_pothole.jpg"))
	api.AssertExpectations(t)
}

func TestS3Store_UploadError(t *testing.T) {
	api := new(MockObjectAPI)
	store := NewS3Store(api, "incidents", "http://minio:9000", zerolog.Nop())
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("no such bucket"))

	_, err := store.Upload(context.Background(), "a.jpg", "", strings.NewReader("x"))

	assert.ErrorContains(t, err, "no such bucket")
}

func TestS3Store_Delete(t *testing.T) {
	api := new(MockObjectAPI)
	store := NewS3Store(api, "incidents", "http://minio:9000", zerolog.Nop())

	api.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "abc_a.jpg"
	})).Return(nil, errors.New("access denied")).Once()

	// storage failures are swallowed
	assert.NoError(t, store.Delete(context.Background(), "http://minio:9000/incidents/abc_a.jpg"))
	// foreign urls never reach the api
	assert.NoError(t, store.Delete(context.Background(), "http://elsewhere/bucket/abc_a.jpg"))

	api.AssertExpectations(t)
	api.AssertNumberOfCalls(t, "DeleteObject", 1)
}
