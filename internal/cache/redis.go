package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/sipalaciosv/inspeccion-vehicular/config"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
)

// CacheClient defines the interface for cache operations. Records and
// declarations are refreshed in place on review, so only the vehicle
// lookup needs an eviction path.
type CacheClient interface {
	// Inspection record caching methods
	GetRecord(ctx context.Context, id string) (*model.InspectionRecord, error)
	SetRecord(ctx context.Context, record *model.InspectionRecord) error

	// Fatigue declaration caching methods
	GetDeclaration(ctx context.Context, id string) (*model.FatigueDeclaration, error)
	SetDeclaration(ctx context.Context, declaration *model.FatigueDeclaration) error

	// Vehicle lookup caching by internal number
	GetVehicleByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error)
	SetVehicleByInternalNumber(ctx context.Context, vehicle *model.Vehicle) error
	DeleteVehicleByInternalNumber(ctx context.Context, internalNumber string) error
}

// RedisClient implements CacheClient using Redis
type RedisClient struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.RedisConfig) (CacheClient, error) {
	if !cfg.Enabled {
		return &RedisClient{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client:  client,
		enabled: true,
		ttl:     time.Hour, // Default TTL
	}, nil
}

// Prefix keys to avoid collisions
func recordKey(id string) string {
	return fmt.Sprintf("inspection_record:%s", id)
}

func declarationKey(id string) string {
	return fmt.Sprintf("fatigue_declaration:%s", id)
}

func vehicleKey(internalNumber string) string {
	return fmt.Sprintf("vehicle:%s", internalNumber)
}

// GetRecord retrieves an inspection record from cache
func (c *RedisClient) GetRecord(ctx context.Context, id string) (*model.InspectionRecord, error) {
	if !c.enabled {
		return nil, redis.Nil
	}

	data, err := c.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		return nil, err
	}

	var record model.InspectionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// SetRecord caches an inspection record
func (c *RedisClient) SetRecord(ctx context.Context, record *model.InspectionRecord) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, recordKey(record.UUID), data, c.ttl).Err()
}

// GetDeclaration retrieves a fatigue declaration from cache
func (c *RedisClient) GetDeclaration(ctx context.Context, id string) (*model.FatigueDeclaration, error) {
	if !c.enabled {
		return nil, redis.Nil
	}

	data, err := c.client.Get(ctx, declarationKey(id)).Bytes()
	if err != nil {
		return nil, err
	}

	var declaration model.FatigueDeclaration
	if err := json.Unmarshal(data, &declaration); err != nil {
		return nil, err
	}

	return &declaration, nil
}

// SetDeclaration caches a fatigue declaration
func (c *RedisClient) SetDeclaration(ctx context.Context, declaration *model.FatigueDeclaration) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(declaration)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, declarationKey(declaration.UUID), data, c.ttl).Err()
}

// GetVehicleByInternalNumber retrieves a vehicle from cache
func (c *RedisClient) GetVehicleByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	if !c.enabled {
		return nil, redis.Nil
	}

	data, err := c.client.Get(ctx, vehicleKey(internalNumber)).Bytes()
	if err != nil {
		return nil, err
	}

	var vehicle model.Vehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}

	return &vehicle, nil
}

// SetVehicleByInternalNumber caches a vehicle keyed by internal number
func (c *RedisClient) SetVehicleByInternalNumber(ctx context.Context, vehicle *model.Vehicle) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, vehicleKey(vehicle.InternalNumber), data, c.ttl).Err()
}

// DeleteVehicleByInternalNumber removes a vehicle from cache
func (c *RedisClient) DeleteVehicleByInternalNumber(ctx context.Context, internalNumber string) error {
	if !c.enabled {
		return nil
	}

	return c.client.Del(ctx, vehicleKey(internalNumber)).Err()
}
