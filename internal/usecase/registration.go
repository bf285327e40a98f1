package usecase

import (
	"context"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

type RegistrationUsecase struct {
	workshops WorkshopRepository
	profiles  ProfileRepository
	signal    Publisher
}

func NewRegistrationUsecase(workshops WorkshopRepository, profiles ProfileRepository, signal Publisher) *RegistrationUsecase {
	return &RegistrationUsecase{
		workshops: workshops,
		profiles:  profiles,
		signal:    signal,
	}
}

// Register adds the caller to a workshop's registrants. The profile, workshop
// and duplicate checks run inside the same commit as the writes.
func (uc *RegistrationUsecase) Register(ctx context.Context, id domain.Identity, workshopID string) (domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Registration.Register")
	defer span.End()

	if !id.Authenticated() {
		workshopRegistrations.WithLabelValues(domain.KindUnauthenticated.String()).Inc()
		return domain.Registration{}, domain.ErrUnauthenticated
	}

	reg, err := uc.workshops.Register(ctx, workshopID, id.UserID, id.Collection)
	workshopRegistrations.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return domain.Registration{}, err
	}

	publishEvent(ctx, uc.signal, "registration", gaushala.Event{
		Type:     gaushala.EventWorkshopRegistered,
		ItemID:   workshopID,
		ActorID:  id.UserID,
		Resource: "workshops",
	})
	return reg, nil
}

// MyRegistrations returns the workshops the caller registered for, in registration order.
// Index entries whose workshop is gone are skipped.
func (uc *RegistrationUsecase) MyRegistrations(ctx context.Context, id domain.Identity) ([]domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Registration.MyRegistrations")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	index, err := uc.profiles.RegistrantIndex(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Workshop, 0, index.Len())
	for _, wid := range index.Items() {
		w, err := uc.workshops.Get(ctx, wid)
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

// Details returns the registrant list of a workshop. Only its owner may read it.
func (uc *RegistrationUsecase) Details(ctx context.Context, id domain.Identity, workshopID string) ([]domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Registration.Details")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	w, err := uc.workshops.Get(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != id.UserID {
		return nil, domain.ErrPermissionDenied
	}
	return w.Registrations, nil
}
