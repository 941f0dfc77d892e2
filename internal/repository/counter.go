package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
)

// CounterRepository hands out correlative ids from per-kind counters
type CounterRepository interface {
	// Next atomically increments the counter for the kind and returns the
	// issued id. The counter row must already exist; a missing row yields
	// ErrCounterMissing.
	Next(ctx context.Context, kind model.CounterKind) (int64, error)
	// Seed creates the counter row for the kind if it does not exist yet
	Seed(ctx context.Context, kind model.CounterKind) error
	// Current returns the last issued id without incrementing
	Current(ctx context.Context, kind model.CounterKind) (int64, error)
}

// counterRepository implements CounterRepository
type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Next issues the following correlative id under a row lock. The
// read-increment-write runs inside one transaction so concurrent writers
// never receive the same id.
func (r *counterRepository) Next(ctx context.Context, kind model.CounterKind) (int64, error) {
	var issued int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("kind = ?", kind)
		if tx.Dialector.Name() == "postgres" {
			// SQLite serializes writing transactions on its own and
			// rejects the FOR UPDATE syntax
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var counter model.Counter
		err := query.First(&counter).Error
		if err != nil {
			if db.IsRecordNotFoundError(err) {
				return ErrCounterMissing
			}
			return err
		}

		issued = counter.LastID + 1
		return tx.Model(&model.Counter{}).
			Where("kind = ?", kind).
			Update("last_id", issued).Error
	})
	if err != nil {
		return 0, err
	}

	return issued, nil
}

// Seed creates the counter row starting at zero if absent
func (r *counterRepository) Seed(ctx context.Context, kind model.CounterKind) error {
	counter := model.Counter{Kind: kind}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&counter).Error
}

// Current returns the last issued id for the kind
func (r *counterRepository) Current(ctx context.Context, kind model.CounterKind) (int64, error) {
	var counter model.Counter
	err := r.db.WithContext(ctx).Where("kind = ?", kind).First(&counter).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return 0, ErrCounterMissing
		}
		return 0, err
	}
	return counter.LastID, nil
}
