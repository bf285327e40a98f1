package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/internal/infra/database/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string, collection gaushala.Collection) (domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Repository.Profile.Get")
	defer span.End()

	return getProfile(r.db.WithContext(ctx), userID, collection)
}

func getProfile(db *gorm.DB, userID string, collection gaushala.Collection) (domain.Profile, error) {
	var m models.Profile
	err := db.Where("id = ? AND collection = ?", userID, string(collection)).Take(&m).Error
	if err != nil {
		return domain.Profile{}, readError("profile", err)
	}
	p, err := profileFromModel(m)
	if err != nil {
		return domain.Profile{}, errors.Wrap(err, "decode profile details")
	}
	return p, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.Profile) error {
	ctx, span := tracer.Start(ctx, "Repository.Profile.Upsert")
	defer span.End()

	m, err := profileModel(profile)
	if err != nil {
		return errors.Wrap(err, "encode profile details")
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}, {Name: "collection"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "name", "contact_no", "address", "profile_pic", "details", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		span.RecordError(err)
		return commitError("profile.upsert", err)
	}
	return nil
}

// OwnerIndex returns the ids of items of the given kind created by ownerID, oldest first.
func (r *ProfileRepository) OwnerIndex(ctx context.Context, ownerID, kind string) (*domain.IDSet, error) {
	ctx, span := tracer.Start(ctx, "Repository.Profile.OwnerIndex")
	defer span.End()

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.OwnerIndex{}).
		Where("owner_id = ? AND kind = ?", ownerID, kind).
		Order("created_at ASC").
		Pluck("item_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "read owner index")
	}
	return domain.NewIDSet(ids...), nil
}

// RegistrantIndex returns the workshops userID registered for, in registration order.
func (r *ProfileRepository) RegistrantIndex(ctx context.Context, userID string) (*domain.IDSet, error) {
	ctx, span := tracer.Start(ctx, "Repository.Profile.RegistrantIndex")
	defer span.End()

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.RegistrantIndex{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("workshop_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "read registrant index")
	}
	return domain.NewIDSet(ids...), nil
}
