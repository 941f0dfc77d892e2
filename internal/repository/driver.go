package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
)

// DriverRepository defines the interface for the driver registry
type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) (*model.Driver, error)
	Update(ctx context.Context, driver *model.Driver) (*model.Driver, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	FindByName(ctx context.Context, name string) (*model.Driver, error)
	ListAll(ctx context.Context) ([]*model.Driver, error)
}

// driverRepository implements DriverRepository
type driverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

// Create creates a new driver
func (r *driverRepository) Create(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	if err := r.db.WithContext(ctx).Create(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

// Update updates a driver
func (r *driverRepository) Update(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	if err := r.db.WithContext(ctx).Updates(driver).Error; err != nil {
		return nil, err
	}
	return driver, nil
}

// Delete removes a driver from the registry
func (r *driverRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("uuid = ?", id).Delete(&model.Driver{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID gets a driver by ID
func (r *driverRepository) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&driver).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// FindByName finds a driver by display name
func (r *driverRepository) FindByName(ctx context.Context, name string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&driver).Error
	if err != nil {
		if db.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// ListAll lists drivers sorted by name
func (r *driverRepository) ListAll(ctx context.Context) ([]*model.Driver, error) {
	var drivers []*model.Driver
	err := r.db.WithContext(ctx).Order("name").Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}
