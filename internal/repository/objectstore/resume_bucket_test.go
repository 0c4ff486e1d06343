package objectstore

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"applybrain-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(f.objects[key])),
		ContentType: aws.String(f.types[key]),
	}, nil
}

func TestResumeBucket_SaveAndOpen(t *testing.T) {
	fake := &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
	bucket := NewResumeBucket(fake, "resumes")
	ctx := context.Background()

	file := &domain.ResumeFile{
		Name:        "Priya CV.PDF",
		Size:        8,
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.7"),
		UploadedAt:  time.Now().UTC(),
	}

	ref, err := bucket.Save(ctx, "user-1", file)
	require.NoError(t, err)
	assert.Regexp(t, `^resumes/user-1/[0-9a-f-]{36}\.pdf$`, ref.Key)
	assert.Equal(t, "Priya CV.PDF", ref.Name)

	got, err := bucket.Open(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, file.Content, got.Content)
	assert.Equal(t, "application/pdf", got.ContentType)
}
