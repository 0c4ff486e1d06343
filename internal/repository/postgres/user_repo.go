package postgres

import (
	"context"
	"errors"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, onboarding_completed, created_at, updated_at)
              VALUES ($1, $2, FALSE, $3, $4)
              ON CONFLICT (id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, onboarding_completed, created_at, updated_at FROM users WHERE id = $1`
	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.OnboardingCompleted, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetOnboardingFlag reports false for users without a row yet.
func (r *userRepo) GetOnboardingFlag(ctx context.Context, id string) (bool, error) {
	var completed bool
	err := r.db.QueryRow(ctx, `SELECT onboarding_completed FROM users WHERE id = $1`, id).Scan(&completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return completed, nil
}

func (r *userRepo) SetOnboardingFlag(ctx context.Context, id string, completed bool) error {
	query := `INSERT INTO users (id, email, onboarding_completed, created_at, updated_at)
              VALUES ($1, '', $2, NOW(), NOW())
              ON CONFLICT (id) DO UPDATE SET onboarding_completed = EXCLUDED.onboarding_completed, updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, id, completed)
	return err
}
