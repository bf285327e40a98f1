package usecase

import (
	"context"
	"time"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// Classifier sends a prompt plus optional media to the external
// classification service and returns its raw text answer.
type Classifier interface {
	Generate(ctx context.Context, prompt string, media *domain.EncodedMedia) (string, error)
}

// MediaStorage uploads a file and returns its public URL.
type MediaStorage interface {
	Upload(ctx context.Context, file domain.MediaPayload) (string, error)
}

// RoleLookup is the read-only identity oracle.
type RoleLookup interface {
	RoleFor(ctx context.Context, userID string, collection gaushala.Collection) (gaushala.Role, bool, error)
}

// Publisher fans committed changes out to realtime listeners.
type Publisher interface {
	Publish(ctx context.Context, channel string, event gaushala.Event) error
}

// ProfileRepository defines lookup for profiles and their index fields.
type ProfileRepository interface {
	Get(ctx context.Context, userID string, collection gaushala.Collection) (domain.Profile, error)
	Upsert(ctx context.Context, profile domain.Profile) error
	OwnerIndex(ctx context.Context, ownerID, kind string) (*domain.IDSet, error)
	RegistrantIndex(ctx context.Context, userID string) (*domain.IDSet, error)
}

// PostRepository defines storage for posts and their attestation ledger.
type PostRepository interface {
	// Create commits the post, its tags and the owner index entry together.
	// created is false when the owner already has a post with the same content hash,
	// in which case the stored post is returned.
	Create(ctx context.Context, post domain.Post) (stored domain.Post, created bool, err error)
	FindByContentHash(ctx context.Context, ownerID, hash string) (domain.Post, error)
	Get(ctx context.Context, id string) (domain.Post, error)
	List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)
	UpdateContent(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, id string) error
	// Attest adds the attestation if the attester is not in the set yet and
	// returns the resulting set. added is false for a repeated attester.
	Attest(ctx context.Context, postID string, attestation domain.Attestation) (set []domain.Attestation, added bool, err error)
}

// WorkshopRepository defines storage for workshops and their registration ledger.
type WorkshopRepository interface {
	// Create commits the workshop, its tags and the owner index entry together.
	Create(ctx context.Context, workshop domain.Workshop) error
	Get(ctx context.Context, id string) (domain.Workshop, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]domain.Workshop, error)
	List(ctx context.Context, filter domain.WorkshopFilter) ([]domain.Workshop, error)
	// Register checks profile, workshop and duplicate registration, then adds the
	// registrant entry and the registrant index entry in one commit.
	Register(ctx context.Context, workshopID, userID string, collection gaushala.Collection) (domain.Registration, error)
	Delete(ctx context.Context, id string) error
}
