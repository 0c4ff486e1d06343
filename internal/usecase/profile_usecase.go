package usecase

import (
	"context"
	"errors"
	"net/http"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"
)

type profileUsecase struct {
	profiles domain.ProfileRepository
	resumes  domain.ResumeStore
}

func NewProfileUsecase(profiles domain.ProfileRepository, resumes domain.ResumeStore) domain.ProfileUsecase {
	return &profileUsecase{profiles: profiles, resumes: resumes}
}

func (u *profileUsecase) GetProfile(ctx context.Context, id domain.Identity) (*domain.UserProfile, error) {
	profile, err := u.profiles.GetByUserID(ctx, id.UserID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load profile", err)
	}
	return profile, nil
}

// OpenResume streams back the resume stored at submission.
func (u *profileUsecase) OpenResume(ctx context.Context, id domain.Identity) (*domain.ResumeFile, error) {
	profile, err := u.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Resume == nil || profile.Resume.Key == "" {
		return nil, apperror.NotFound("No resume on file")
	}
	file, err := u.resumes.Open(ctx, profile.Resume)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to open resume", err)
	}
	return file, nil
}
