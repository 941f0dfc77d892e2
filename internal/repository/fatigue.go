package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
)

// FatigueRepository defines the interface for fatigue declaration persistence
type FatigueRepository interface {
	// Create persists the declaration and its response rows in one transaction
	Create(ctx context.Context, declaration *model.FatigueDeclaration) (*model.FatigueDeclaration, error)
	GetByID(ctx context.Context, id string) (*model.FatigueDeclaration, error)
	List(ctx context.Context, filter ListFilter) ([]*model.FatigueDeclaration, int64, error)
	// SetReview transitions a pending declaration to a terminal status in place
	SetReview(ctx context.Context, id string, status model.Status, reviewer string) (*model.FatigueDeclaration, error)
	CountPending(ctx context.Context) (int64, error)
}

// fatigueRepository implements FatigueRepository
type fatigueRepository struct {
	db *gorm.DB
}

// NewFatigueRepository creates a new fatigue repository
func NewFatigueRepository(db *gorm.DB) FatigueRepository {
	return &fatigueRepository{db: db}
}

// Create persists a declaration together with its responses
func (r *fatigueRepository) Create(ctx context.Context, declaration *model.FatigueDeclaration) (*model.FatigueDeclaration, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(declaration).Error
	})
	if err != nil {
		return nil, err
	}
	return declaration, nil
}

// GetByID gets a declaration with its responses
func (r *fatigueRepository) GetByID(ctx context.Context, id string) (*model.FatigueDeclaration, error) {
	var declaration model.FatigueDeclaration
	err := r.db.WithContext(ctx).
		Preload("Responses").
		Where("uuid = ?", id).
		First(&declaration).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &declaration, nil
}

// List returns matching declarations ordered by descending correlative id
func (r *fatigueRepository) List(ctx context.Context, filter ListFilter) ([]*model.FatigueDeclaration, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.FatigueDeclaration{})

	if filter.Bucket == BucketAttended {
		query = query.Where("status <> ?", model.StatusPending)
	} else {
		query = query.Where("status = ?", model.StatusPending)
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"CAST(correlative_id AS TEXT) LIKE ? OR LOWER(driver) LIKE LOWER(?) OR LOWER(internal_number) LIKE LOWER(?)",
			like, like, like,
		)
	}

	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var declarations []*model.FatigueDeclaration
	err := query.Order("correlative_id DESC").Find(&declarations).Error
	if err != nil {
		return nil, 0, err
	}

	return declarations, total, nil
}

// SetReview transitions the declaration in place; repeated calls cannot
// decide it twice
func (r *fatigueRepository) SetReview(ctx context.Context, id string, status model.Status, reviewer string) (*model.FatigueDeclaration, error) {
	result := r.db.WithContext(ctx).Model(&model.FatigueDeclaration{}).
		Where("uuid = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewer,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var existing model.FatigueDeclaration
		err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&existing).Error
		if err != nil {
			if db.IsRecordNotFoundError(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return nil, ErrAlreadyReviewed
	}

	return r.GetByID(ctx, id)
}

// CountPending counts declarations awaiting review
func (r *fatigueRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FatigueDeclaration{}).
		Where("status = ?", model.StatusPending).
		Count(&count).Error
	return count, err
}
