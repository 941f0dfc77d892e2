package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/cache"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// CreateDriverRequest defines the request to register a driver
type CreateDriverRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateVehicleRequest defines the request to register a vehicle
type CreateVehicleRequest struct {
	InternalNumber string `json:"internal_number" validate:"required"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Plate          string `json:"plate"`
	Year           string `json:"year"`
	Color          string `json:"color"`
}

// RegistryService defines the interface for the driver and vehicle registries
type RegistryService interface {
	CreateDriver(ctx context.Context, req *CreateDriverRequest) (*model.Driver, error)
	UpdateDriver(ctx context.Context, id string, req *CreateDriverRequest) (*model.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	ListDrivers(ctx context.Context) ([]*model.Driver, error)

	CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*model.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	GetVehicleByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*model.Vehicle, error)
}

// registryService implements RegistryService
type registryService struct {
	driverRepo  repository.DriverRepository
	vehicleRepo repository.VehicleRepository
	cache       cache.CacheClient
}

// NewRegistryService creates a new registry service
func NewRegistryService(
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	cacheClient cache.CacheClient,
) RegistryService {
	return &registryService{
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		cache:       cacheClient,
	}
}

// CreateDriver registers a driver. Names are unique within the fleet.
func (s *registryService) CreateDriver(ctx context.Context, req *CreateDriverRequest) (*model.Driver, error) {
	existing, err := s.driverRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("driver %q %w", req.Name, repository.ErrAlreadyExists)
	}

	driver := &model.Driver{
		Base: model.Base{UUID: uuid.New().String()},
		Name: req.Name,
	}
	return s.driverRepo.Create(ctx, driver)
}

// UpdateDriver renames a driver. The new name must not collide with
// another registered driver.
func (s *registryService) UpdateDriver(ctx context.Context, id string, req *CreateDriverRequest) (*model.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.driverRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.UUID != driver.UUID {
		return nil, fmt.Errorf("driver %q %w", req.Name, repository.ErrAlreadyExists)
	}

	driver.Name = req.Name
	return s.driverRepo.Update(ctx, driver)
}

// DeleteDriver removes a driver from the registry
func (s *registryService) DeleteDriver(ctx context.Context, id string) error {
	return s.driverRepo.Delete(ctx, id)
}

// ListDrivers returns all registered drivers ordered by name
func (s *registryService) ListDrivers(ctx context.Context) ([]*model.Driver, error) {
	return s.driverRepo.ListAll(ctx)
}

// CreateVehicle registers a vehicle. Internal numbers are unique.
func (s *registryService) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*model.Vehicle, error) {
	existing, err := s.vehicleRepo.FindByInternalNumber(ctx, req.InternalNumber)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("vehicle %q %w", req.InternalNumber, repository.ErrAlreadyExists)
	}

	vehicle := &model.Vehicle{
		Base:           model.Base{UUID: uuid.New().String()},
		InternalNumber: req.InternalNumber,
		Make:           req.Make,
		Model:          req.Model,
		Plate:          req.Plate,
		Year:           req.Year,
		Color:          req.Color,
	}
	return s.vehicleRepo.Create(ctx, vehicle)
}

// UpdateVehicle updates a vehicle and refreshes its cache entry. A
// renumbered vehicle must also drop the entry under its old internal
// number, or submissions keep resolving the stale snapshot until the TTL
// expires.
func (s *registryService) UpdateVehicle(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	previous, err := s.vehicleRepo.GetByID(ctx, vehicle.UUID)
	if err != nil {
		return nil, err
	}

	vehicle, err = s.vehicleRepo.Update(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	if previous.InternalNumber != vehicle.InternalNumber {
		if err := s.cache.DeleteVehicleByInternalNumber(ctx, previous.InternalNumber); err != nil {
			logrus.WithError(err).Warn("Failed to evict renumbered vehicle from cache")
		}
	}

	if err := s.cache.SetVehicleByInternalNumber(ctx, vehicle); err != nil {
		logrus.WithError(err).Warn("Failed to update vehicle in cache")
	}

	return vehicle, nil
}

// DeleteVehicle removes a vehicle and drops its cache entry
func (s *registryService) DeleteVehicle(ctx context.Context, id string) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.DeleteVehicleByInternalNumber(ctx, vehicle.InternalNumber); err != nil {
		logrus.WithError(err).Warn("Failed to evict vehicle from cache")
	}

	return nil
}

// GetVehicleByInternalNumber resolves a registered vehicle
func (s *registryService) GetVehicleByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	return s.vehicleRepo.FindByInternalNumber(ctx, internalNumber)
}

// ListVehicles returns all registered vehicles ordered by internal number
func (s *registryService) ListVehicles(ctx context.Context) ([]*model.Vehicle, error) {
	return s.vehicleRepo.ListAll(ctx)
}
