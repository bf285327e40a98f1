package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// CreateWorkshopInput is a new workshop as sent by its owner.
type CreateWorkshopInput struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"required,max=10000"`
	DateFrom    time.Time           `json:"dateFrom" validate:"required"`
	DateTo      time.Time           `json:"dateTo" validate:"required,gtefield=DateFrom"`
	TimeFrom    string              `json:"timeFrom" validate:"required"`
	TimeTo      string              `json:"timeTo" validate:"required"`
	Mode        domain.WorkshopMode `json:"mode" validate:"required,oneof=online offline"`
	Location    string              `json:"location"`
	Link        string              `json:"link" validate:"omitempty,url"`
	Thumbnail   domain.MediaPayload `json:"thumbnail"`
	Tags        []string            `json:"filters"`
}

type WorkshopUsecase struct {
	workshops WorkshopRepository
	profiles  ProfileRepository
	storage   MediaStorage
	signal    Publisher
	validate  *validator.Validate
	location  *time.Location
	now       func() time.Time
}

func NewWorkshopUsecase(
	workshops WorkshopRepository,
	profiles ProfileRepository,
	storage MediaStorage,
	signal Publisher,
	location *time.Location,
) *WorkshopUsecase {
	if location == nil {
		location = time.Local
	}
	return &WorkshopUsecase{
		workshops: workshops,
		profiles:  profiles,
		storage:   storage,
		signal:    signal,
		validate:  validator.New(),
		location:  location,
		now:       time.Now,
	}
}

// Create resolves the owner profile and uploads the thumbnail first. Only when
// both succeed is the workshop committed together with its owner index entry.
func (uc *WorkshopUsecase) Create(ctx context.Context, id domain.Identity, input CreateWorkshopInput) (domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Workshop.Create")
	defer span.End()

	if !id.Authenticated() {
		return domain.Workshop{}, domain.ErrUnauthenticated
	}
	if id.Collection != gaushala.CollectionExperts {
		return domain.Workshop{}, domain.ErrPermissionDenied
	}

	location, link, err := uc.validateWorkshop(input)
	if err != nil {
		return domain.Workshop{}, err
	}

	var (
		profile   domain.Profile
		thumbnail string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := uc.storage.Upload(gctx, input.Thumbnail)
		if err != nil {
			return fmt.Errorf("thumbnail upload: %w: %v", domain.ErrPersistence, err)
		}
		thumbnail = url
		return nil
	})
	g.Go(func() error {
		p, err := uc.profiles.Get(gctx, id.UserID, gaushala.CollectionExperts)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return domain.Workshop{}, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	now := uc.now()
	workshop := domain.Workshop{
		ID:        uuid.NewString(),
		OwnerID:   id.UserID,
		OwnerRole: profile.Role,
		Owner: domain.ProfileSnapshot{
			Name:       strings.TrimSpace(profile.Name),
			ProfilePic: profile.ProfilePic,
		},
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		DateFrom:      input.DateFrom,
		DateTo:        input.DateTo,
		TimeFrom:      input.TimeFrom,
		TimeTo:        input.TimeTo,
		Mode:          input.Mode,
		Location:      location,
		Link:          link,
		Thumbnail:     thumbnail,
		Tags:          tags,
		Registrations: []domain.Registration{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.workshops.Create(ctx, workshop); err != nil {
		span.RecordError(err)
		return domain.Workshop{}, err
	}
	workshopsCreated.Inc()

	publishEvent(ctx, uc.signal, "workshop", gaushala.Event{
		Type:     gaushala.EventWorkshopCreated,
		ItemID:   workshop.ID,
		ActorID:  id.UserID,
		Resource: "workshops",
	})
	return workshop, nil
}

// validateWorkshop checks the input and returns the one of location or link
// that matches the mode.
func (uc *WorkshopUsecase) validateWorkshop(input CreateWorkshopInput) (*string, *string, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	for _, t := range []string{input.TimeFrom, input.TimeTo} {
		if _, err := time.Parse("15:04", t); err != nil {
			return nil, nil, fmt.Errorf("%w: time %q is not HH:MM", domain.ErrInvalidInput, t)
		}
	}
	if input.DateFrom.Equal(input.DateTo) && input.TimeTo < input.TimeFrom {
		return nil, nil, fmt.Errorf("%w: workshop ends before it starts", domain.ErrInvalidInput)
	}
	if len(input.Thumbnail.Data) == 0 {
		return nil, nil, fmt.Errorf("%w: thumbnail is required", domain.ErrInvalidInput)
	}

	switch input.Mode {
	case domain.ModeOffline:
		location := strings.TrimSpace(input.Location)
		if location == "" {
			return nil, nil, fmt.Errorf("%w: offline workshops need a location", domain.ErrInvalidInput)
		}
		return &location, nil, nil
	default:
		link := strings.TrimSpace(input.Link)
		if link == "" {
			return nil, nil, fmt.Errorf("%w: online workshops need a link", domain.ErrInvalidInput)
		}
		return nil, &link, nil
	}
}

// Get returns a workshop with CurrUserRegistered set for the caller. Only the
// owner sees the registrant list.
func (uc *WorkshopUsecase) Get(ctx context.Context, id domain.Identity, workshopID string) (domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Workshop.Get")
	defer span.End()

	if !id.Authenticated() {
		return domain.Workshop{}, domain.ErrUnauthenticated
	}

	w, err := uc.workshops.Get(ctx, workshopID)
	if err != nil {
		return domain.Workshop{}, err
	}
	return w.ViewFor(id.UserID), nil
}

// Upcoming lists workshops starting today or later, earliest first.
func (uc *WorkshopUsecase) Upcoming(ctx context.Context, id domain.Identity) ([]domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Workshop.Upcoming")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	list, err := uc.workshops.ListUpcoming(ctx, StartOfDay(uc.now(), uc.location))
	if err != nil {
		return nil, err
	}
	return markRegistered(list, id.UserID), nil
}

// Filter lists workshops having any of the tags and, if set, an owner of the role.
func (uc *WorkshopUsecase) Filter(ctx context.Context, id domain.Identity, filter domain.WorkshopFilter) ([]domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Workshop.Filter")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	list, err := uc.workshops.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return markRegistered(list, id.UserID), nil
}

// Mine reads the caller's owner index and returns those workshops, newest first.
func (uc *WorkshopUsecase) Mine(ctx context.Context, id domain.Identity) ([]domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Workshop.Mine")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	index, err := uc.profiles.OwnerIndex(ctx, id.UserID, domain.IndexKindWorkshop)
	if err != nil {
		return nil, err
	}

	ids := index.Items()
	out := make([]domain.Workshop, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		w, err := uc.workshops.Get(ctx, ids[i])
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, w.ViewFor(id.UserID))
	}
	return out, nil
}

// Delete removes an owned workshop, its owner index entry and every
// registrant index entry pointing at it.
func (uc *WorkshopUsecase) Delete(ctx context.Context, id domain.Identity, workshopID string) error {
	ctx, span := tracer.Start(ctx, "Usecase.Workshop.Delete")
	defer span.End()

	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}

	w, err := uc.workshops.Get(ctx, workshopID)
	if err != nil {
		return err
	}
	if w.OwnerID != id.UserID {
		return domain.ErrPermissionDenied
	}
	return uc.workshops.Delete(ctx, workshopID)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func markRegistered(list []domain.Workshop, userID string) []domain.Workshop {
	for i := range list {
		list[i] = list[i].ViewFor(userID)
	}
	return list
}
