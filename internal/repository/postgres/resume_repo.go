package postgres

import (
	"context"
	"errors"
	"fmt"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// resumeRepo stores resume bytes in Postgres. Used when no object bucket is
// configured.
type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeStore {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) Save(ctx context.Context, userID string, file *domain.ResumeFile) (*domain.ResumeRef, error) {
	key := fmt.Sprintf("resumes/%s/%s", userID, uuid.NewString())

	query := `INSERT INTO resume_files (key, user_id, name, content_type, size, content, uploaded_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, key, userID, file.Name, file.ContentType, file.Size, file.Content, file.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	return &domain.ResumeRef{
		Key:         key,
		Name:        file.Name,
		ContentType: file.ContentType,
		Size:        file.Size,
		UpdatedAt:   file.UploadedAt,
	}, nil
}

func (r *resumeRepo) Open(ctx context.Context, ref *domain.ResumeRef) (*domain.ResumeFile, error) {
	var f domain.ResumeFile
	err := r.db.QueryRow(ctx,
		`SELECT name, content_type, size, content, uploaded_at FROM resume_files WHERE key = $1`, ref.Key,
	).Scan(&f.Name, &f.ContentType, &f.Size, &f.Content, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Resume not found")
		}
		return nil, err
	}
	return &f, nil
}
