package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/internal/infra/database/models"
)

type WorkshopRepository struct {
	db     *gorm.DB
	writer *Writer
}

func NewWorkshopRepository(db *gorm.DB) *WorkshopRepository {
	return &WorkshopRepository{db: db, writer: NewWriter(db)}
}

func withWorkshopChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

// Create commits the workshop, its tags and the owner index entry together.
func (r *WorkshopRepository) Create(ctx context.Context, workshop domain.Workshop) error {
	ctx, span := tracer.Start(ctx, "Repository.Workshop.Create")
	defer span.End()

	m := workshopModel(workshop)
	return r.writer.Commit(ctx, "workshop.create", func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if tags := workshopTags(workshop.ID, workshop.Tags); len(tags) > 0 {
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
		}
		_, err := addToSet(tx, &models.OwnerIndex{
			OwnerID:   workshop.OwnerID,
			Kind:      domain.IndexKindWorkshop,
			ItemID:    workshop.ID,
			CreatedAt: m.CreatedAt,
		})
		return err
	})
}

func (r *WorkshopRepository) Get(ctx context.Context, id string) (domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Repository.Workshop.Get")
	defer span.End()

	var m models.Workshop
	err := withWorkshopChildren(r.db.WithContext(ctx)).Where("id = ?", id).Take(&m).Error
	if err != nil {
		return domain.Workshop{}, readError("workshop", err)
	}
	return workshopFromModel(m), nil
}

// ListUpcoming returns workshops starting at or after from, earliest first.
func (r *WorkshopRepository) ListUpcoming(ctx context.Context, from time.Time) ([]domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Repository.Workshop.ListUpcoming")
	defer span.End()

	q := withWorkshopChildren(r.db.WithContext(ctx)).
		Where("date_from >= ?", from.UTC()).
		Order("date_from ASC").
		Order("created_at ASC")
	return r.find(q)
}

func (r *WorkshopRepository) List(ctx context.Context, filter domain.WorkshopFilter) ([]domain.Workshop, error) {
	ctx, span := tracer.Start(ctx, "Repository.Workshop.List")
	defer span.End()

	db := r.db.WithContext(ctx)
	q := withWorkshopChildren(db).Model(&models.Workshop{})
	if len(filter.Tags) > 0 {
		q = q.Where("id IN (?)", db.Model(&models.WorkshopTag{}).Select("workshop_id").Where("tag IN ?", filter.Tags))
	}
	if filter.OwnerRole != "" {
		q = q.Where("owner_role = ?", string(filter.OwnerRole))
	}
	return r.find(q.Order("date_from ASC"))
}

func (r *WorkshopRepository) find(q *gorm.DB) ([]domain.Workshop, error) {
	var rows []models.Workshop
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list workshops")
	}
	out := make([]domain.Workshop, 0, len(rows))
	for _, m := range rows {
		out = append(out, workshopFromModel(m))
	}
	return out, nil
}

// Register checks, in order, that the profile exists, that the workshop exists
// and that the user is not registered yet, then adds the registrant entry and
// the registrant index entry. Checks and writes share one transaction.
func (r *WorkshopRepository) Register(ctx context.Context, workshopID, userID string, collection gaushala.Collection) (domain.Registration, error) {
	ctx, span := tracer.Start(ctx, "Repository.Workshop.Register")
	defer span.End()

	var reg domain.Registration
	err := r.writer.Commit(ctx, "workshop.register", func(tx *gorm.DB) error {
		profile, err := getProfile(tx, userID, collection)
		if err != nil {
			return err
		}

		var workshop models.Workshop
		if err := tx.Where("id = ?", workshopID).Take(&workshop).Error; err != nil {
			return readError("workshop", err)
		}

		var count int64
		if err := tx.Model(&models.WorkshopRegistration{}).
			Where("workshop_id = ? AND user_id = ?", workshopID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrAlreadyRegistered
		}

		now := time.Now().UTC()
		added, err := addToSet(tx, &models.WorkshopRegistration{
			WorkshopID: workshopID,
			UserID:     userID,
			Name:       profile.Name,
			ContactNo:  profile.ContactNo,
			Role:       string(profile.Role),
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		if !added {
			return domain.ErrAlreadyRegistered
		}
		if _, err := addToSet(tx, &models.RegistrantIndex{
			UserID:     userID,
			WorkshopID: workshopID,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		if err := tx.Model(&models.Workshop{}).Where("id = ?", workshopID).Update("updated_at", now).Error; err != nil {
			return err
		}

		reg = domain.Registration{
			UserID:    userID,
			Name:      profile.Name,
			ContactNo: profile.ContactNo,
			Role:      profile.Role,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Registration{}, err
	}
	return reg, nil
}

// Delete removes the workshop with its tags and registrants, its owner index
// entry and every registrant index entry pointing at it.
func (r *WorkshopRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Repository.Workshop.Delete")
	defer span.End()

	return r.writer.Commit(ctx, "workshop.delete", func(tx *gorm.DB) error {
		var m models.Workshop
		if err := tx.Where("id = ?", id).Take(&m).Error; err != nil {
			return readError("workshop", err)
		}
		if err := tx.Where("workshop_id = ?", id).Delete(&models.WorkshopTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workshop_id = ?", id).Delete(&models.WorkshopRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workshop_id = ?", id).Delete(&models.RegistrantIndex{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ? AND kind = ? AND item_id = ?", m.OwnerID, domain.IndexKindWorkshop, id).
			Delete(&models.OwnerIndex{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Workshop{}).Error
	})
}
