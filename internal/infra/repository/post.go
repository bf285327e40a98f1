package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/internal/infra/database/models"
)

type PostRepository struct {
	db     *gorm.DB
	writer *Writer
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db, writer: NewWriter(db)}
}

func withPostChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Attestations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

// Create commits the post row, its tags and the owner index entry together.
// A post with the same owner and content hash is returned instead of a new one.
func (r *PostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, bool, error) {
	ctx, span := tracer.Start(ctx, "Repository.Post.Create")
	defer span.End()

	var (
		stored  domain.Post
		created bool
	)
	err := r.writer.Commit(ctx, "post.create", func(tx *gorm.DB) error {
		var existing models.Post
		err := withPostChildren(tx).
			Where("owner_id = ? AND content_hash = ?", post.OwnerID, post.ContentHash).
			Take(&existing).Error
		if err == nil {
			stored = postFromModel(existing)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		m := postModel(post)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if tags := postTags(post.ID, post.Tags); len(tags) > 0 {
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
		}
		if _, err := addToSet(tx, &models.OwnerIndex{
			OwnerID:   post.OwnerID,
			Kind:      domain.IndexKindPost,
			ItemID:    post.ID,
			CreatedAt: m.CreatedAt,
		}); err != nil {
			return err
		}

		stored, created = post, true
		return nil
	})
	if err != nil {
		// A concurrent identical submission won the unique index.
		if domain.KindOf(err) == domain.KindDuplicate {
			existing, ferr := r.FindByContentHash(ctx, post.OwnerID, post.ContentHash)
			if ferr == nil {
				return existing, false, nil
			}
		}
		span.RecordError(err)
		return domain.Post{}, false, err
	}
	return stored, created, nil
}

func (r *PostRepository) FindByContentHash(ctx context.Context, ownerID, hash string) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Repository.Post.FindByContentHash")
	defer span.End()

	var m models.Post
	err := withPostChildren(r.db.WithContext(ctx)).
		Where("owner_id = ? AND content_hash = ?", ownerID, hash).
		Take(&m).Error
	if err != nil {
		return domain.Post{}, readError("post", err)
	}
	return postFromModel(m), nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Repository.Post.Get")
	defer span.End()

	var m models.Post
	err := withPostChildren(r.db.WithContext(ctx)).Where("id = ?", id).Take(&m).Error
	if err != nil {
		return domain.Post{}, readError("post", err)
	}
	return postFromModel(m), nil
}

// List returns posts newest first. Tags match if the post has any of them.
func (r *PostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Repository.Post.List")
	defer span.End()

	db := r.db.WithContext(ctx)
	q := withPostChildren(db).Model(&models.Post{})
	if len(filter.Tags) > 0 {
		q = q.Where("id IN (?)", db.Model(&models.PostTag{}).Select("post_id").Where("tag IN ?", filter.Tags))
	}
	if filter.OwnerRole != "" {
		q = q.Where("owner_role = ?", string(filter.OwnerRole))
	}

	var rows []models.Post
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "list posts")
	}

	out := make([]domain.Post, 0, len(rows))
	for _, m := range rows {
		out = append(out, postFromModel(m))
	}
	return out, nil
}

// UpdateContent replaces body, media and content hash. Tags and verification
// state are left alone.
func (r *PostRepository) UpdateContent(ctx context.Context, post domain.Post) error {
	ctx, span := tracer.Start(ctx, "Repository.Post.UpdateContent")
	defer span.End()

	m := postModel(post)
	return r.writer.Commit(ctx, "post.update", func(tx *gorm.DB) error {
		result := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
			"body":         m.Body,
			"media_kind":   m.MediaKind,
			"media_url":    m.MediaURL,
			"media_digest": m.MediaDigest,
			"content_hash": m.ContentHash,
			"updated_at":   m.UpdatedAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "post"}
		}
		return nil
	})
}

// Delete removes the post with its tags, attestations and owner index entry.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Repository.Post.Delete")
	defer span.End()

	return r.writer.Commit(ctx, "post.delete", func(tx *gorm.DB) error {
		var m models.Post
		if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
			return readError("post", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostAttestation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ? AND kind = ? AND item_id = ?", m.OwnerID, domain.IndexKindPost, id).
			Delete(&models.OwnerIndex{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
}

// Attest adds an attestation unless the attester is already in the set. The
// first attestation moves the post to Verified.
func (r *PostRepository) Attest(ctx context.Context, postID string, attestation domain.Attestation) ([]domain.Attestation, bool, error) {
	ctx, span := tracer.Start(ctx, "Repository.Post.Attest")
	defer span.End()

	var (
		set   []domain.Attestation
		added bool
	)
	err := r.writer.Commit(ctx, "post.attest", func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ?", postID).Take(&post).Error; err != nil {
			return readError("post", err)
		}

		createdAt := attestation.CreatedAt.UTC()
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		ok, err := addToSet(tx, &models.PostAttestation{
			PostID:       postID,
			AttesterID:   attestation.AttesterID,
			AttesterRole: string(attestation.AttesterRole),
			Name:         attestation.Name,
			ProfilePic:   attestation.ProfilePic,
			CreatedAt:    createdAt,
		})
		if err != nil {
			return err
		}
		if ok {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]any{
				"verification_state": string(domain.Verified),
				"updated_at":         createdAt,
			}).Error; err != nil {
				return err
			}
		}
		added = ok

		var rows []models.PostAttestation
		if err := tx.Where("post_id = ?", postID).Order("created_at ASC").Find(&rows).Error; err != nil {
			return err
		}
		set = attestationsFromModel(rows)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	return set, added, nil
}
