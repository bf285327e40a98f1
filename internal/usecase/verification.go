package usecase

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

const (
	LabelVerifiedByYou     = "Verified By You"
	LabelNotVerified       = "Not Verified"
	LabelVerified          = "Verified"
	LabelUnderVerification = "Under Verification"
)

// VerificationStatus is how a post's verification looks to one viewer.
type VerificationStatus struct {
	PostID    string                   `json:"postId"`
	State     domain.VerificationState `json:"state"`
	Label     string                   `json:"label"`
	Attesters int                      `json:"attesters"`
}

// Attester is one entry of the attester list shown on demand.
type Attester struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"name"`
	Role        gaushala.Role `json:"role"`
	ProfilePic  string        `json:"profilePic"`
}

type VerificationUsecase struct {
	posts    PostRepository
	profiles ProfileRepository
	roles    RoleLookup
	signal   Publisher
	now      func() time.Time
}

func NewVerificationUsecase(posts PostRepository, profiles ProfileRepository, roles RoleLookup, signal Publisher) *VerificationUsecase {
	return &VerificationUsecase{
		posts:    posts,
		profiles: profiles,
		roles:    roles,
		signal:   signal,
		now:      time.Now,
	}
}

// Attest records an attestation on a post. Attesters whose role cannot attest
// are refused before the post is read. A repeated attestation by the same
// attester leaves the set unchanged and returns it.
func (uc *VerificationUsecase) Attest(ctx context.Context, postID string, attestation domain.Attestation) ([]domain.Attestation, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Verification.Attest")
	defer span.End()

	set, err := uc.attest(ctx, postID, attestation)
	postAttestations.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("attestations", len(set)))
	return set, nil
}

func (uc *VerificationUsecase) attest(ctx context.Context, postID string, attestation domain.Attestation) ([]domain.Attestation, error) {
	if attestation.AttesterID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !attestation.AttesterRole.CanAttest() {
		return nil, domain.ErrPermissionDenied
	}
	if attestation.CreatedAt.IsZero() {
		attestation.CreatedAt = uc.now()
	}

	set, added, err := uc.posts.Attest(ctx, postID, attestation)
	if err != nil {
		return nil, err
	}
	if added {
		publishEvent(ctx, uc.signal, "verification", gaushala.Event{
			Type:     gaushala.EventPostAttested,
			ItemID:   postID,
			ActorID:  attestation.AttesterID,
			Resource: "posts",
		})
	}
	return set, nil
}

// AttestAs resolves the caller's role and profile snapshot and attests with them.
func (uc *VerificationUsecase) AttestAs(ctx context.Context, id domain.Identity, postID string) ([]domain.Attestation, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Verification.AttestAs")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	role, found, err := uc.roles.RoleFor(ctx, id.UserID, id.Collection)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !found || !role.CanAttest() {
		postAttestations.WithLabelValues(domain.KindPermissionDenied.String()).Inc()
		return nil, domain.ErrPermissionDenied
	}

	profile, err := uc.profiles.Get(ctx, id.UserID, id.Collection)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return uc.Attest(ctx, postID, domain.Attestation{
		AttesterID:   id.UserID,
		AttesterRole: role,
		Name:         strings.TrimSpace(profile.Name),
		ProfilePic:   profile.ProfilePic,
	})
}

// Status labels a post's verification for the viewer. Attesting roles see
// whether they attested themselves; everyone else sees the aggregate.
func (uc *VerificationUsecase) Status(ctx context.Context, id domain.Identity, postID string) (VerificationStatus, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Verification.Status")
	defer span.End()

	if !id.Authenticated() {
		return VerificationStatus{}, domain.ErrUnauthenticated
	}

	post, err := uc.posts.Get(ctx, postID)
	if err != nil {
		return VerificationStatus{}, err
	}

	role, _, err := uc.roles.RoleFor(ctx, id.UserID, id.Collection)
	if err != nil {
		return VerificationStatus{}, err
	}

	return VerificationStatus{
		PostID:    post.ID,
		State:     post.VerificationState,
		Label:     StatusLabel(post, id.UserID, role),
		Attesters: len(post.Attestations),
	}, nil
}

// StatusLabel is the label a viewer with the given role sees for post.
func StatusLabel(post domain.Post, viewerID string, role gaushala.Role) string {
	if role.CanAttest() {
		if post.HasAttestation(viewerID) {
			return LabelVerifiedByYou
		}
		return LabelNotVerified
	}
	if len(post.Attestations) > 0 {
		return LabelVerified
	}
	return LabelUnderVerification
}

// Attesters lists who attested a post, in attestation order.
func (uc *VerificationUsecase) Attesters(ctx context.Context, postID string) ([]Attester, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Verification.Attesters")
	defer span.End()

	post, err := uc.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	out := make([]Attester, 0, len(post.Attestations))
	for _, a := range post.Attestations {
		out = append(out, Attester{
			ID:          a.AttesterID,
			DisplayName: gaushala.DisplayName(a.Name, a.AttesterRole),
			Role:        a.AttesterRole,
			ProfilePic:  a.ProfilePic,
		})
	}
	return out, nil
}
