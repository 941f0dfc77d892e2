package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
)

// VehicleRepository defines the interface for the vehicle registry
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	Update(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	FindByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error)
	ListAll(ctx context.Context) ([]*model.Vehicle, error)
}

// vehicleRepository implements VehicleRepository
type vehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

// Create creates a new vehicle
func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// Update updates a vehicle
func (r *vehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	if err := r.db.WithContext(ctx).Updates(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// Delete removes a vehicle from the registry
func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("uuid = ?", id).Delete(&model.Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID gets a vehicle by ID
func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&vehicle).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindByInternalNumber finds a vehicle by its fleet internal number
func (r *vehicleRepository) FindByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).Where("internal_number = ?", internalNumber).First(&vehicle).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// ListAll lists vehicles sorted numerically by internal number
func (r *vehicleRepository) ListAll(ctx context.Context) ([]*model.Vehicle, error) {
	var vehicles []*model.Vehicle
	err := r.db.WithContext(ctx).
		Order("CAST(internal_number AS INTEGER)").
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}
