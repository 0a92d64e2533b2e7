package repositories

import (
	"context"
	"errors"

	"clinic/internal/database"
	"clinic/internal/logger"
	. "clinic/internal/models"
	"clinic/internal/services"

	"gorm.io/gorm"
)

// RecordRepository is the create/read surface shared by every entity kind.
type RecordRepository[T any] interface {
	Create(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id int) (*T, error)
	GetAll(ctx context.Context) ([]*T, error)
}

type recordRepository[T any] struct {
	db   database.DB
	kind string
	log  logger.Logger
}

// NewRecord builds the repository for T. kind names the entity in errors and
// logs, e.g. "Appointment".
func NewRecord[T any](db database.DB, kind string) RecordRepository[T] {
	return &recordRepository[T]{
		db:   db,
		kind: kind,
		log:  logger.New("recordRepository").With("kind", kind),
	}
}

func (r *recordRepository[T]) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, r.db)
}

func (r *recordRepository[T]) Create(ctx context.Context, record *T) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(record).Error; err != nil {
		classified := database.ClassifyError(err)
		if isConstraintError(classified) {
			log.Info("rejected by store constraint", "reason", classified.Error())
			return classified
		}
		return log.Err("failed to create record", err)
	}

	return nil
}

func (r *recordRepository[T]) GetByID(ctx context.Context, id int) (*T, error) {
	log := r.log.Function("GetByID")

	if id <= 0 {
		return nil, &NotFoundError{Kind: r.kind, ID: id}
	}

	var record T
	if err := r.getDB(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: r.kind, ID: id}
		}
		return nil, log.Err("failed to get record by id", err, "id", id)
	}

	return &record, nil
}

func (r *recordRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	log := r.log.Function("GetAll")

	records := []*T{}
	if err := r.getDB(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, log.Err("failed to get all records", err)
	}

	return records, nil
}

func isConstraintError(err error) bool {
	var unique *UniquenessViolation
	var missing *ReferenceNotFound
	return errors.As(err, &unique) || errors.As(err, &missing)
}

func getDB(ctx context.Context, db database.DB) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return db.SQLWithContext(ctx)
}
