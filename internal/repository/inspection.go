package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
)

// Bucket selects which review queue a listing reads from
type Bucket string

const (
	// BucketPending lists records awaiting review
	BucketPending Bucket = "pending"
	// BucketAttended lists records already decided
	BucketAttended Bucket = "attended"
)

// ListFilter narrows listing queries
type ListFilter struct {
	Bucket   Bucket
	Search   string // matches correlative id, driver or internal number
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// VehicleFindings is the aggregated defect count for one vehicle
type VehicleFindings struct {
	InternalNumber string `json:"internal_number"`
	Defects        int64  `json:"defects"`
}

// InspectionRepository defines the interface for inspection record persistence
type InspectionRepository interface {
	// Create persists the record and its answer rows in one transaction
	Create(ctx context.Context, record *model.InspectionRecord) (*model.InspectionRecord, error)
	GetByID(ctx context.Context, id string) (*model.InspectionRecord, error)
	List(ctx context.Context, filter ListFilter) ([]*model.InspectionRecord, int64, error)
	// SetReview transitions a pending record to a terminal status in place.
	// A record already decided yields ErrAlreadyReviewed.
	SetReview(ctx context.Context, id string, status model.Status, reviewer string) (*model.InspectionRecord, error)
	CountPending(ctx context.Context) (int64, error)
	// FindingsByVehicle aggregates defect answers per vehicle over attended records
	FindingsByVehicle(ctx context.Context, limit int) ([]VehicleFindings, error)
}

// inspectionRepository implements InspectionRepository
type inspectionRepository struct {
	db *gorm.DB
}

// NewInspectionRepository creates a new inspection repository
func NewInspectionRepository(db *gorm.DB) InspectionRepository {
	return &inspectionRepository{db: db}
}

// Create persists a record together with its answers. A failure anywhere
// rolls the whole submission back, so no orphaned detail rows survive.
func (r *inspectionRepository) Create(ctx context.Context, record *model.InspectionRecord) (*model.InspectionRecord, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetByID gets a record with its answers
func (r *inspectionRepository) GetByID(ctx context.Context, id string) (*model.InspectionRecord, error) {
	var record model.InspectionRecord
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("uuid = ?", id).
		First(&record).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
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

	return query
}

// List returns matching records ordered by descending correlative id,
// along with the total match count for pagination
func (r *inspectionRepository) List(ctx context.Context, filter ListFilter) ([]*model.InspectionRecord, int64, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&model.InspectionRecord{}), filter)

	if filter.DateFrom != "" {
		query = query.Where("inspection_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("inspection_date <= ?", filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var records []*model.InspectionRecord
	err := query.Order("correlative_id DESC").Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// SetReview transitions the record in place. The conditional update only
// matches pending rows, so a repeated call cannot decide a record twice.
func (r *inspectionRepository) SetReview(ctx context.Context, id string, status model.Status, reviewer string) (*model.InspectionRecord, error) {
	result := r.db.WithContext(ctx).Model(&model.InspectionRecord{}).
		Where("uuid = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewer,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing record from one already decided
		var existing model.InspectionRecord
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

// CountPending counts records awaiting review
func (r *inspectionRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.InspectionRecord{}).
		Where("status = ?", model.StatusPending).
		Count(&count).Error
	return count, err
}

// FindingsByVehicle aggregates defect answers per vehicle over attended records
func (r *inspectionRepository) FindingsByVehicle(ctx context.Context, limit int) ([]VehicleFindings, error) {
	var findings []VehicleFindings

	query := r.db.WithContext(ctx).
		Table("checklist_answers").
		Select("inspection_records.internal_number AS internal_number, COUNT(*) AS defects").
		Joins("JOIN inspection_records ON inspection_records.uuid = checklist_answers.record_id").
		Where("checklist_answers.result = ?", model.ResultDefect).
		Where("inspection_records.status <> ?", model.StatusPending).
		Group("inspection_records.internal_number").
		Order("defects DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&findings).Error; err != nil {
		return nil, err
	}
	return findings, nil
}
