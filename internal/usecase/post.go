package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

// SubmitPostInput is a new post as sent by the submitter.
type SubmitPostInput struct {
	Body  string               `json:"content" validate:"max=10000"`
	Media *domain.MediaPayload `json:"media,omitempty"`
}

// EditPostInput replaces the body and attachment of a post.
// With KeepMedia set and no new Media the current attachment stays.
type EditPostInput struct {
	Body      string               `json:"content" validate:"max=10000"`
	Media     *domain.MediaPayload `json:"media,omitempty"`
	KeepMedia bool                 `json:"keepMedia"`
}

type PostUsecase struct {
	gate        *ContentGate
	categorizer *Categorizer
	posts       PostRepository
	profiles    ProfileRepository
	storage     MediaStorage
	signal      Publisher
	validate    *validator.Validate
	now         func() time.Time
}

func NewPostUsecase(
	gate *ContentGate,
	categorizer *Categorizer,
	posts PostRepository,
	profiles ProfileRepository,
	storage MediaStorage,
	signal Publisher,
) *PostUsecase {
	return &PostUsecase{
		gate:        gate,
		categorizer: categorizer,
		posts:       posts,
		profiles:    profiles,
		storage:     storage,
		signal:      signal,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// Submit runs a new post through the gate, the categorizer and the writer, in that order.
func (uc *PostUsecase) Submit(ctx context.Context, id domain.Identity, input SubmitPostInput) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Post.Submit")
	defer span.End()

	post, err := uc.submit(ctx, id, input)
	postSubmissions.WithLabelValues(outcomeLabel(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return domain.Post{}, err
	}
	span.SetAttributes(attribute.String("post", post.ID))
	return post, nil
}

func (uc *PostUsecase) submit(ctx context.Context, id domain.Identity, input SubmitPostInput) (domain.Post, error) {
	if !id.Authenticated() {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	if err := uc.validatePost(input.Body, input.Media, false); err != nil {
		return domain.Post{}, err
	}

	profile, err := uc.profiles.Get(ctx, id.UserID, id.Collection)
	if err != nil {
		return domain.Post{}, err
	}

	var mediaKind, digest string
	if input.Media != nil {
		mediaKind = string(input.Media.Kind)
		digest = mediaDigest(input.Media.Data)
	}
	hash := contentHash(id.UserID, input.Body, mediaKind, digest)

	existing, err := uc.posts.FindByContentHash(ctx, id.UserID, hash)
	if err == nil {
		slog.InfoContext(
			ctx, "duplicate submission resolved to existing post",
			slog.String("post", existing.ID),
			slog.String("module", "post"),
		)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Post{}, err
	}

	var encoded *domain.EncodedMedia
	if input.Media != nil {
		e := input.Media.Encode()
		encoded = &e
	}

	verdict := uc.gate.Evaluate(ctx, input.Body, encoded)
	switch verdict.Kind {
	case domain.VerdictUnavailable:
		return domain.Post{}, domain.ErrUpstreamUnavailable
	case domain.VerdictRejected:
		return domain.Post{}, domain.ErrValidationRejected
	}

	var image *domain.EncodedMedia
	if input.Media != nil && input.Media.Kind == domain.MediaImage {
		image = encoded
	}
	tags := uc.categorizer.Categorize(ctx, input.Body, image)

	var media *domain.Media
	if input.Media != nil {
		url, err := uc.storage.Upload(ctx, *input.Media)
		if err != nil {
			return domain.Post{}, fmt.Errorf("media upload: %w: %v", domain.ErrPersistence, err)
		}
		media = &domain.Media{Kind: input.Media.Kind, URL: url, Digest: digest}
	}

	now := uc.now()
	post := domain.Post{
		ID:        uuid.NewString(),
		OwnerID:   id.UserID,
		OwnerRole: profile.Role,
		Owner: domain.ProfileSnapshot{
			Name:       strings.TrimSpace(profile.Name),
			ProfilePic: profile.ProfilePic,
		},
		Body:              input.Body,
		Media:             media,
		Tags:              tags,
		VerificationState: domain.InitialVerificationState(verdict.NeedsReview),
		Attestations:      []domain.Attestation{},
		ContentHash:       hash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	stored, created, err := uc.posts.Create(ctx, post)
	if err != nil {
		return domain.Post{}, err
	}
	if created {
		publishEvent(ctx, uc.signal, "post", gaushala.Event{
			Type:     gaushala.EventPostCreated,
			ItemID:   stored.ID,
			ActorID:  id.UserID,
			Resource: "posts",
		})
	}
	return stored, nil
}

// Edit replaces body and media of an owned post. Tags and verification state are kept.
func (uc *PostUsecase) Edit(ctx context.Context, id domain.Identity, postID string, input EditPostInput) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Post.Edit")
	defer span.End()

	if !id.Authenticated() {
		return domain.Post{}, domain.ErrUnauthenticated
	}
	if err := uc.validatePost(input.Body, input.Media, input.KeepMedia); err != nil {
		return domain.Post{}, err
	}

	post, err := uc.posts.Get(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	if post.OwnerID != id.UserID {
		return domain.Post{}, domain.ErrPermissionDenied
	}

	var mediaKind, digest string
	switch {
	case input.Media != nil:
		url, err := uc.storage.Upload(ctx, *input.Media)
		if err != nil {
			span.RecordError(err)
			return domain.Post{}, fmt.Errorf("media upload: %w: %v", domain.ErrPersistence, err)
		}
		digest = mediaDigest(input.Media.Data)
		post.Media = &domain.Media{Kind: input.Media.Kind, URL: url, Digest: digest}
		mediaKind = string(input.Media.Kind)
	case input.KeepMedia && post.Media != nil:
		mediaKind, digest = string(post.Media.Kind), post.Media.Digest
	default:
		post.Media = nil
	}
	if strings.TrimSpace(input.Body) == "" && post.Media == nil {
		return domain.Post{}, fmt.Errorf("%w: post needs text or media", domain.ErrInvalidInput)
	}

	post.Body = input.Body
	post.ContentHash = contentHash(id.UserID, input.Body, mediaKind, digest)
	post.UpdatedAt = uc.now()

	if err := uc.posts.UpdateContent(ctx, post); err != nil {
		span.RecordError(err)
		return domain.Post{}, err
	}
	return post, nil
}

// Delete removes an owned post together with its owner index entry.
func (uc *PostUsecase) Delete(ctx context.Context, id domain.Identity, postID string) error {
	ctx, span := tracer.Start(ctx, "Usecase.Post.Delete")
	defer span.End()

	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}

	post, err := uc.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != id.UserID {
		return domain.ErrPermissionDenied
	}
	return uc.posts.Delete(ctx, postID)
}

func (uc *PostUsecase) Get(ctx context.Context, postID string) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Post.Get")
	defer span.End()

	return uc.posts.Get(ctx, postID)
}

// List returns posts newest first, narrowed by any-of tags and owner role.
func (uc *PostUsecase) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Post.List")
	defer span.End()

	return uc.posts.List(ctx, filter)
}

// ListOwn reads the caller's owner index and returns those posts, newest first.
func (uc *PostUsecase) ListOwn(ctx context.Context, id domain.Identity) ([]domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Post.ListOwn")
	defer span.End()

	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	index, err := uc.profiles.OwnerIndex(ctx, id.UserID, domain.IndexKindPost)
	if err != nil {
		return nil, err
	}

	ids := index.Items()
	out := make([]domain.Post, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		post, err := uc.posts.Get(ctx, ids[i])
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, post)
	}
	return out, nil
}

func (uc *PostUsecase) validatePost(body string, media *domain.MediaPayload, keepMedia bool) error {
	if err := uc.validate.Struct(SubmitPostInput{Body: body}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if media != nil {
		if !media.Kind.Valid() {
			return fmt.Errorf("%w: unknown media kind %q", domain.ErrInvalidInput, media.Kind)
		}
		if len(media.Data) == 0 {
			return fmt.Errorf("%w: empty media payload", domain.ErrInvalidInput)
		}
	}
	if strings.TrimSpace(body) == "" && media == nil && !keepMedia {
		return fmt.Errorf("%w: post needs text or media", domain.ErrInvalidInput)
	}
	return nil
}
