package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/mock"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// Mock repositories for testing

type MockInspectionRepository struct {
	mock.Mock
}

func (m *MockInspectionRepository) Create(ctx context.Context, record *model.InspectionRecord) (*model.InspectionRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InspectionRecord), args.Error(1)
}

func (m *MockInspectionRepository) GetByID(ctx context.Context, id string) (*model.InspectionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InspectionRecord), args.Error(1)
}

func (m *MockInspectionRepository) List(ctx context.Context, filter repository.ListFilter) ([]*model.InspectionRecord, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.InspectionRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockInspectionRepository) SetReview(ctx context.Context, id string, status model.Status, reviewer string) (*model.InspectionRecord, error) {
	args := m.Called(ctx, id, status, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InspectionRecord), args.Error(1)
}

func (m *MockInspectionRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInspectionRepository) FindingsByVehicle(ctx context.Context, limit int) ([]repository.VehicleFindings, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VehicleFindings), args.Error(1)
}

type MockFatigueRepository struct {
	mock.Mock
}

func (m *MockFatigueRepository) Create(ctx context.Context, declaration *model.FatigueDeclaration) (*model.FatigueDeclaration, error) {
	args := m.Called(ctx, declaration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FatigueDeclaration), args.Error(1)
}

func (m *MockFatigueRepository) GetByID(ctx context.Context, id string) (*model.FatigueDeclaration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FatigueDeclaration), args.Error(1)
}

func (m *MockFatigueRepository) List(ctx context.Context, filter repository.ListFilter) ([]*model.FatigueDeclaration, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.FatigueDeclaration), args.Get(1).(int64), args.Error(2)
}

func (m *MockFatigueRepository) SetReview(ctx context.Context, id string, status model.Status, reviewer string) (*model.FatigueDeclaration, error) {
	args := m.Called(ctx, id, status, reviewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FatigueDeclaration), args.Error(1)
}

func (m *MockFatigueRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCounterRepository struct {
	mock.Mock
}

func (m *MockCounterRepository) Next(ctx context.Context, kind model.CounterKind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounterRepository) Seed(ctx context.Context, kind model.CounterKind) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}

func (m *MockCounterRepository) Current(ctx context.Context, kind model.CounterKind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	args := m.Called(ctx, vehicle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) (*model.Vehicle, error) {
	args := m.Called(ctx, vehicle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) FindByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	args := m.Called(ctx, internalNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) ListAll(ctx context.Context) ([]*model.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Vehicle), args.Error(1)
}

type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	args := m.Called(ctx, driver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Driver), args.Error(1)
}

func (m *MockDriverRepository) Update(ctx context.Context, driver *model.Driver) (*model.Driver, error) {
	args := m.Called(ctx, driver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Driver), args.Error(1)
}

func (m *MockDriverRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Driver), args.Error(1)
}

func (m *MockDriverRepository) FindByName(ctx context.Context, name string) (*model.Driver, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Driver), args.Error(1)
}

func (m *MockDriverRepository) ListAll(ctx context.Context) ([]*model.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Driver), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

// MockMediaStore records uploads per folder
type MockMediaStore struct {
	mu      sync.Mutex
	uploads map[string]int
	fail    bool
}

func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{uploads: make(map[string]int)}
}

func (m *MockMediaStore) UploadImage(ctx context.Context, folder string, contentType string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", context.DeadlineExceeded
	}
	m.uploads[folder]++
	return "https://media.local/" + folder + "/image.png", nil
}

func (m *MockMediaStore) UploadCount(folder string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads[folder]
}

// stubCache behaves like a cold, healthy cache
type stubCache struct{}

func (stubCache) GetRecord(ctx context.Context, id string) (*model.InspectionRecord, error) {
	return nil, redis.Nil
}
func (stubCache) SetRecord(ctx context.Context, record *model.InspectionRecord) error { return nil }
func (stubCache) GetDeclaration(ctx context.Context, id string) (*model.FatigueDeclaration, error) {
	return nil, redis.Nil
}
func (stubCache) SetDeclaration(ctx context.Context, declaration *model.FatigueDeclaration) error {
	return nil
}
func (stubCache) GetVehicleByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	return nil, redis.Nil
}
func (stubCache) SetVehicleByInternalNumber(ctx context.Context, vehicle *model.Vehicle) error {
	return nil
}
func (stubCache) DeleteVehicleByInternalNumber(ctx context.Context, internalNumber string) error {
	return nil
}

// recordingCache keeps vehicle entries in memory so cache maintenance can
// be observed
type recordingCache struct {
	stubCache
	mu       sync.Mutex
	vehicles map[string]*model.Vehicle
}

func newRecordingCache() *recordingCache {
	return &recordingCache{vehicles: make(map[string]*model.Vehicle)}
}

func (c *recordingCache) GetVehicleByInternalNumber(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vehicle, ok := c.vehicles[internalNumber]
	if !ok {
		return nil, redis.Nil
	}
	return vehicle, nil
}

func (c *recordingCache) SetVehicleByInternalNumber(ctx context.Context, vehicle *model.Vehicle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles[vehicle.InternalNumber] = vehicle
	return nil
}

func (c *recordingCache) DeleteVehicleByInternalNumber(ctx context.Context, internalNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vehicles, internalNumber)
	return nil
}

// stubSearch drops indexing calls and records the last search query
type stubSearch struct {
	mu        sync.Mutex
	lastQuery interface{}
	results   []json.RawMessage
}

func (s *stubSearch) IndexDocument(ctx context.Context, id string, document []byte) error {
	return nil
}

func (s *stubSearch) SearchDocuments(ctx context.Context, query interface{}) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuery = query
	return s.results, nil
}

// stubBus records published decision messages
type stubBus struct {
	mu       sync.Mutex
	messages []interface{}
}

func (b *stubBus) PublishMessage(ctx context.Context, message interface{}, queueName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
	return nil
}

func (b *stubBus) Close(ctx context.Context) error { return nil }
