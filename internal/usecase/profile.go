package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// ProfileInput is a signup or profile update.
type ProfileInput struct {
	Role       gaushala.Role           `json:"role" validate:"required"`
	Name       string                  `json:"name" validate:"required,max=200"`
	ContactNo  string                  `json:"contactNo" validate:"required,max=20"`
	Address    string                  `json:"address" validate:"max=500"`
	ProfilePic string                  `json:"profilePic" validate:"omitempty,url"`
	Details    gaushala.ProfileDetails `json:"-"`
}

type ProfileUsecase struct {
	profiles ProfileRepository
	validate *validator.Validate
}

func NewProfileUsecase(profiles ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{
		profiles: profiles,
		validate: validator.New(),
	}
}

// Save stores the caller's profile. The role decides the collection and must
// match the shape of the details.
func (uc *ProfileUsecase) Save(ctx context.Context, id domain.Identity, input ProfileInput) (domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Profile.Save")
	defer span.End()

	if !id.Authenticated() {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	if err := uc.validate.Struct(input); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if _, ok := gaushala.ParseRole(string(input.Role)); !ok {
		return domain.Profile{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, input.Role)
	}
	details := input.Details
	if details == nil && input.Role == gaushala.RoleFarmer {
		details = gaushala.FarmerDetails{}
	}
	if details == nil || details.Role() != input.Role {
		return domain.Profile{}, fmt.Errorf("%w: details do not match role %q", domain.ErrInvalidInput, input.Role)
	}
	if id.Collection != "" && id.Collection != input.Role.Collection() {
		return domain.Profile{}, domain.ErrPermissionDenied
	}

	profile := domain.Profile{
		ID:         id.UserID,
		Collection: input.Role.Collection(),
		Role:       input.Role,
		Name:       strings.TrimSpace(input.Name),
		ContactNo:  strings.TrimSpace(input.ContactNo),
		Address:    strings.TrimSpace(input.Address),
		ProfilePic: input.ProfilePic,
		Details:    details,
	}
	if err := uc.profiles.Upsert(ctx, profile); err != nil {
		span.RecordError(err)
		return domain.Profile{}, err
	}
	return profile, nil
}

func (uc *ProfileUsecase) Get(ctx context.Context, id domain.Identity) (domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Profile.Get")
	defer span.End()

	if !id.Authenticated() {
		return domain.Profile{}, domain.ErrUnauthenticated
	}
	return uc.profiles.Get(ctx, id.UserID, id.Collection)
}
