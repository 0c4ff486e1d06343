package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"applybrain-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectAPI is the part of the S3 client the bucket uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ResumeBucket stores submitted resumes as private objects under
// resumes/<user_id>/.
type ResumeBucket struct {
	client ObjectAPI
	bucket string
}

func NewResumeBucket(client ObjectAPI, bucket string) *ResumeBucket {
	return &ResumeBucket{client: client, bucket: bucket}
}

func (b *ResumeBucket) Save(ctx context.Context, userID string, file *domain.ResumeFile) (*domain.ResumeRef, error) {
	key := fmt.Sprintf("resumes/%s/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(file.Name)))

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(b.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(file.Content),
		ContentLength:      aws.Int64(file.Size),
		ContentType:        aws.String(file.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", file.Name)),
		Metadata:           map[string]string{"user-id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload resume: %w", err)
	}

	return &domain.ResumeRef{
		Key:         key,
		Name:        file.Name,
		ContentType: file.ContentType,
		Size:        file.Size,
		UpdatedAt:   file.UploadedAt,
	}, nil
}

func (b *ResumeBucket) Open(ctx context.Context, ref *domain.ResumeRef) (*domain.ResumeFile, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resume: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}

	return &domain.ResumeFile{
		Name:        ref.Name,
		Size:        int64(len(content)),
		ContentType: aws.ToString(out.ContentType),
		Content:     content,
		UploadedAt:  ref.UpdatedAt,
	}, nil
}
