package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/baseline"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

type ProfileRequest struct {
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
}

func ValidateProfileRequest(body *ProfileRequest) error {
	return validate.Struct(body)
}

func CreateProfile(ctx context.Context, repo storage.ProfileRepository, body *ProfileRequest, now time.Time) (*internal.BabyProfile, error) {
	// A birth date in the future is an input error, not a storage concern.
	if _, err := baseline.AgeMonths(body.BirthDate, now); err != nil {
		return nil, err
	}
	profile := &internal.BabyProfile{
		ID:        uuid.NewString(),
		Name:      body.Name,
		BirthDate: body.BirthDate,
		CreatedAt: now,
	}
	if err := repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// EditProfile is the only path that changes a profile after creation.
func EditProfile(ctx context.Context, repo storage.ProfileRepository, profileID string, body *ProfileRequest, now time.Time) (*internal.BabyProfile, error) {
	if _, err := baseline.AgeMonths(body.BirthDate, now); err != nil {
		return nil, err
	}
	profile, err := repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	profile.Name = body.Name
	profile.BirthDate = body.BirthDate
	if err := repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
