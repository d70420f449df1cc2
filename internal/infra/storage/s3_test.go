package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	put          *s3.PutObjectInput
	deleted      []string
	headErr      error
	createErr    error
	createCalled bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalled = true
	return &s3.CreateBucketOutput{}, f.createErr
}

type fakePresigner struct {
	get *s3.GetObjectInput
	put *s3.PutObjectInput
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.get = in
	return &v4.PresignedHTTPRequest{URL: "https://s3.local/get/" + *in.Key}, nil
}

func (f *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.put = in
	return &v4.PresignedHTTPRequest{URL: "https://s3.local/put/" + *in.Key}, nil
}

func newTestStorage(client *fakeS3, p *fakePresigner) *S3Storage {
	return &S3Storage{client: client, presign: p, bucket: "crm", presignExpiration: time.Minute, logger: zap.NewNop()}
}

func TestS3Storage_Upload(t *testing.T) {
	client := &fakeS3{}
	s := newTestStorage(client, &fakePresigner{})

	err := s.Upload(context.Background(), "documents/1/a.pdf", strings.NewReader("pdf"), 3, "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "crm", *client.put.Bucket)
	assert.Equal(t, "documents/1/a.pdf", *client.put.Key)
	assert.Equal(t, int64(3), *client.put.ContentLength)
	assert.Equal(t, "application/pdf", *client.put.ContentType)

	assert.Error(t, s.Upload(context.Background(), "", strings.NewReader(""), 0, "text/plain"))
}

func TestS3Storage_Delete(t *testing.T) {
	client := &fakeS3{}
	s := newTestStorage(client, &fakePresigner{})

	require.NoError(t, s.Delete(context.Background(), "k"))
	assert.Equal(t, []string{"k"}, client.deleted)
}

func TestS3Storage_Presign(t *testing.T) {
	p := &fakePresigner{}
	s := newTestStorage(&fakeS3{}, p)

	url, err := s.PresignGet(context.Background(), "documents/1/a.pdf", "contract final.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/get/documents/1/a.pdf", url)
	assert.Equal(t, `attachment; filename="contract final.pdf"`, *p.get.ResponseContentDisposition)

	url, err = s.PresignPut(context.Background(), "documents/2/b.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/put/documents/2/b.png", url)
	assert.Equal(t, "image/png", *p.put.ContentType)
}

func TestS3Storage_EnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		client := &fakeS3{}
		require.NoError(t, newTestStorage(client, nil).EnsureBucket(context.Background()))
		assert.False(t, client.createCalled)
	})

	t.Run("creates missing bucket", func(t *testing.T) {
		client := &fakeS3{headErr: &types.NotFound{}}
		require.NoError(t, newTestStorage(client, nil).EnsureBucket(context.Background()))
		assert.True(t, client.createCalled)
	})

	t.Run("tolerates concurrent creation", func(t *testing.T) {
		client := &fakeS3{headErr: &types.NoSuchBucket{}, createErr: &types.BucketAlreadyOwnedByYou{}}
		assert.NoError(t, newTestStorage(client, nil).EnsureBucket(context.Background()))
	})

	t.Run("other errors surface", func(t *testing.T) {
		client := &fakeS3{headErr: errors.New("access denied")}
		assert.ErrorContains(t, newTestStorage(client, nil).EnsureBucket(context.Background()), "access denied")
		assert.False(t, client.createCalled)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		ssl    bool
		expect string
	}{
		{"", false, ""},
		{"minio:9000", false, "http://minio:9000"},
		{"minio:9000", true, "https://minio:9000"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}
	for _, tt := range tests {
		got, err := normalizeEndpoint(tt.in, tt.ssl)
		require.NoError(t, err)
		assert.Equal(t, tt.expect, got)
	}
}
