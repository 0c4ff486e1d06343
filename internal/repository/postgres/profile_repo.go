package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `user_id, first_name, last_name, email, phone, address, degree, course,
		university, graduated_year, role, locations, current_lpa, years_of_experience,
		experience_level, job_type, work_mode, skills, onboarding_completed,
		resume_url, resume_name, resume_key, resume_content_type, resume_size, resume_updated_at,
		created_at, updated_at`

// Upsert replaces the profile for user_id and mirrors onboarding_completed
// onto the users row.
func (r *profileRepo) Upsert(ctx context.Context, p *domain.UserProfile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, onboarding_completed, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET onboarding_completed = EXCLUDED.onboarding_completed, updated_at = NOW()`,
		p.UserID, p.AccountEmail, p.OnboardingCompleted)
	if err != nil {
		return fmt.Errorf("failed to update onboarding flag: %w", err)
	}

	var (
		resumeURL, resumeName, resumeKey, resumeType *string
		resumeSize                                   *int64
		resumeUpdated                                *time.Time
	)
	if p.Resume != nil {
		resumeURL, resumeName, resumeKey, resumeType = &p.Resume.URL, &p.Resume.Name, &p.Resume.Key, &p.Resume.ContentType
		resumeSize, resumeUpdated = &p.Resume.Size, &p.Resume.UpdatedAt
	}

	query := `
		INSERT INTO users_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
		        $20, $21, $22, $23, $24, $25, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			degree = EXCLUDED.degree,
			course = EXCLUDED.course,
			university = EXCLUDED.university,
			graduated_year = EXCLUDED.graduated_year,
			role = EXCLUDED.role,
			locations = EXCLUDED.locations,
			current_lpa = EXCLUDED.current_lpa,
			years_of_experience = EXCLUDED.years_of_experience,
			experience_level = EXCLUDED.experience_level,
			job_type = EXCLUDED.job_type,
			work_mode = EXCLUDED.work_mode,
			skills = EXCLUDED.skills,
			onboarding_completed = EXCLUDED.onboarding_completed,
			resume_url = COALESCE(EXCLUDED.resume_url, users_profiles.resume_url),
			resume_name = COALESCE(EXCLUDED.resume_name, users_profiles.resume_name),
			resume_key = COALESCE(EXCLUDED.resume_key, users_profiles.resume_key),
			resume_content_type = COALESCE(EXCLUDED.resume_content_type, users_profiles.resume_content_type),
			resume_size = COALESCE(EXCLUDED.resume_size, users_profiles.resume_size),
			resume_updated_at = COALESCE(EXCLUDED.resume_updated_at, users_profiles.resume_updated_at),
			updated_at = NOW()
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		p.UserID, p.FirstName, p.LastName, p.Email, p.Phone, p.Address, p.Degree, p.Course,
		p.University, p.GraduatedYear, p.Role, pq.Array(p.Locations), p.CurrentLPA, p.YearsOfExperience,
		pq.Array(p.ExperienceLevel), pq.Array(p.JobType), pq.Array(p.WorkMode), pq.Array(p.Skills),
		p.OnboardingCompleted,
		resumeURL, resumeName, resumeKey, resumeType, resumeSize, resumeUpdated,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM users_profiles WHERE user_id = $1`

	var (
		p                                            domain.UserProfile
		resumeURL, resumeName, resumeKey, resumeType *string
		resumeSize                                   *int64
		resumeUpdated                                *time.Time
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Address, &p.Degree, &p.Course,
		&p.University, &p.GraduatedYear, &p.Role, pq.Array(&p.Locations), &p.CurrentLPA, &p.YearsOfExperience,
		pq.Array(&p.ExperienceLevel), pq.Array(&p.JobType), pq.Array(&p.WorkMode), pq.Array(&p.Skills),
		&p.OnboardingCompleted,
		&resumeURL, &resumeName, &resumeKey, &resumeType, &resumeSize, &resumeUpdated,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, err
	}

	if resumeKey != nil {
		p.Resume = &domain.ResumeRef{Key: *resumeKey}
		if resumeURL != nil {
			p.Resume.URL = *resumeURL
		}
		if resumeName != nil {
			p.Resume.Name = *resumeName
		}
		if resumeType != nil {
			p.Resume.ContentType = *resumeType
		}
		if resumeSize != nil {
			p.Resume.Size = *resumeSize
		}
		if resumeUpdated != nil {
			p.Resume.UpdatedAt = *resumeUpdated
		}
	}
	return &p, nil
}
