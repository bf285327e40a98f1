package repository

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gaushala-net/gaushala/internal/domain"
)

// Writer runs read-check-write sequences as one all-or-nothing commit.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

// Commit runs fn in a transaction. Outcomes fn already classified as domain
// errors are returned as they are; anything else aborts the commit and is
// reported as a persistence failure.
func (w *Writer) Commit(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	ctx, span := tracer.Start(ctx, "Repository.Writer.Commit")
	defer span.End()

	err := w.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		span.RecordError(err)
		commitFailures.WithLabelValues(op).Inc()
	}
	return commitError(op, err)
}

func commitError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(fmt.Errorf("%w: %v", domain.ErrDuplicate, err), op)
	}
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return errors.Wrap(fmt.Errorf("%w: %v", domain.ErrPersistence, err), op)
}

// addToSet inserts row unless a row with the same key exists and reports
// whether it was added.
func addToSet(tx *gorm.DB, row any) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// readError maps a failed single row read.
func readError(resource string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource}
	}
	return errors.Wrap(err, "read "+resource)
}
