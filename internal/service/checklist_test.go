package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

const testDataURL = "data:image/png;base64,cG5n"

func testVehicle() *model.Vehicle {
	return &model.Vehicle{
		Base:           model.Base{UUID: "vehicle-1"},
		InternalNumber: "401",
		Make:           "Mercedes Benz",
		Model:          "O500",
		Plate:          "ABCD12",
		Year:           "2022",
		Color:          "green",
	}
}

// checklistRequest builds a valid submission with every item marked good
func checklistRequest() *SubmitChecklistRequest {
	answers := make(map[model.ItemID]ChecklistAnswerInput)
	for _, item := range model.CatalogItems() {
		answers[item] = ChecklistAnswerInput{Result: model.ResultGood}
	}
	return &SubmitChecklistRequest{
		InspectionDate: "2026-08-30",
		InspectionTime: "08:15",
		Driver:         "Juan Perez",
		InternalNumber: "401",
		Odometer:       123456,
		Answers:        answers,
		SignatureData:  testDataURL,
		CreatedBy:      "user-1",
	}
}

func newChecklistService(repo *MockInspectionRepository, vehicleRepo *MockVehicleRepository, counterRepo *MockCounterRepository, media *MockMediaStore) ChecklistService {
	return NewChecklistService(repo, vehicleRepo, counterRepo, stubCache{}, &stubSearch{}, media)
}

func TestSubmitChecklistMissingSignature(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	req := checklistRequest()
	req.SignatureData = ""

	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, model.ErrMissingSignature)

	// Nothing was persisted or counted
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	counterRepo.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestSubmitChecklistIncompleteForm(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	req := checklistRequest()
	delete(req.Answers, model.ItemServiceBrake)

	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, model.ErrIncompleteForm)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	counterRepo.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
	assert.Zero(t, media.UploadCount("signatures"))
}

func TestSubmitChecklistMalformedSignature(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(testVehicle(), nil)

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	req := checklistRequest()
	req.SignatureData = "https://not-a-data-url.example/sig.png"

	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, model.ErrInvalidSubmission)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	counterRepo.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
	assert.Zero(t, media.UploadCount("signatures"))
}

func TestSubmitChecklistUnknownVehicle(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(nil, repository.ErrNotFound)

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	_, err := svc.Submit(context.Background(), checklistRequest())
	require.ErrorIs(t, err, repository.ErrNotFound)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitChecklistAllGood(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(testVehicle(), nil)
	counterRepo.On("Next", mock.Anything, model.ChecklistCounter).Return(int64(42), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.InspectionRecord")).Return(&model.InspectionRecord{}, nil)
	repo.On("CountPending", mock.Anything).Return(int64(1), nil)

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	record, err := svc.Submit(context.Background(), checklistRequest())
	require.NoError(t, err)
	require.NotNil(t, record)

	// The created record carries the issued correlative id, vehicle
	// snapshot, pending status and one answer row per catalog item
	created := repo.Calls[0].Arguments.Get(1).(*model.InspectionRecord)
	assert.Equal(t, int64(42), created.CorrelativeID)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Nil(t, created.ReviewedBy)
	assert.Equal(t, "Mercedes Benz", created.VehicleMake)
	assert.Equal(t, "ABCD12", created.VehiclePlate)
	assert.Len(t, created.Answers, len(model.CatalogItems()))
	assert.NotEmpty(t, created.SignatureURL)

	assert.Equal(t, 1, media.UploadCount("signatures"))
	repo.AssertExpectations(t)
	counterRepo.AssertExpectations(t)
}

func TestSubmitChecklistCriticalDefectAutoRejects(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(testVehicle(), nil)
	counterRepo.On("Next", mock.Anything, model.ChecklistCounter).Return(int64(7), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.InspectionRecord")).Return(&model.InspectionRecord{}, nil)
	repo.On("CountPending", mock.Anything).Return(int64(0), nil)

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	req := checklistRequest()
	req.Answers[model.ItemServiceBrake] = ChecklistAnswerInput{
		Result:      model.ResultDefect,
		Observation: "brake pedal goes to the floor",
		PhotoData:   testDataURL,
	}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	created := repo.Calls[0].Arguments.Get(1).(*model.InspectionRecord)
	assert.Equal(t, model.StatusRejected, created.Status)
	require.NotNil(t, created.ReviewedBy)
	assert.Equal(t, model.ReviewerAutoReject, *created.ReviewedBy)

	// The defect photo was stored alongside the signature
	assert.Equal(t, 1, media.UploadCount("defects"))
	assert.Equal(t, 1, media.UploadCount("signatures"))
}

func TestSubmitChecklistNonCriticalDefectStaysPending(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(testVehicle(), nil)
	counterRepo.On("Next", mock.Anything, model.ChecklistCounter).Return(int64(8), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.InspectionRecord")).Return(&model.InspectionRecord{}, nil)
	repo.On("CountPending", mock.Anything).Return(int64(1), nil)

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	req := checklistRequest()
	req.Answers[model.ItemHorn] = ChecklistAnswerInput{
		Result:      model.ResultDefect,
		Observation: "horn does not sound",
	}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	created := repo.Calls[0].Arguments.Get(1).(*model.InspectionRecord)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Nil(t, created.ReviewedBy)
}

func TestSubmitChecklistCounterMissingAborts(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(testVehicle(), nil)
	counterRepo.On("Next", mock.Anything, model.ChecklistCounter).Return(int64(0), repository.ErrCounterMissing)

	svc := newChecklistService(repo, vehicleRepo, counterRepo, media)

	_, err := svc.Submit(context.Background(), checklistRequest())
	require.ErrorIs(t, err, repository.ErrCounterMissing)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// fakeCounter issues ids under a lock, mimicking the transactional counter
type fakeCounter struct {
	mu   sync.Mutex
	last int64
}

func (f *fakeCounter) Next(ctx context.Context, kind model.CounterKind) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last++
	return f.last, nil
}

func (f *fakeCounter) Seed(ctx context.Context, kind model.CounterKind) error { return nil }

func (f *fakeCounter) Current(ctx context.Context, kind model.CounterKind) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, nil
}

// fakeInspectionRepo captures created records
type fakeInspectionRepo struct {
	MockInspectionRepository
	mu      sync.Mutex
	records []*model.InspectionRecord
}

func (f *fakeInspectionRepo) Create(ctx context.Context, record *model.InspectionRecord) (*model.InspectionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeInspectionRepo) CountPending(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func TestSubmitChecklistConcurrentCorrelativeIDs(t *testing.T) {
	repo := &fakeInspectionRepo{}
	vehicleRepo := new(MockVehicleRepository)
	media := NewMockMediaStore()

	vehicleRepo.On("FindByInternalNumber", mock.Anything, "401").Return(testVehicle(), nil)

	svc := NewChecklistService(repo, vehicleRepo, &fakeCounter{}, stubCache{}, &stubSearch{}, media)

	const submissions = 16
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), checklistRequest())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, repo.records, submissions)

	seen := make(map[int64]bool)
	for _, record := range repo.records {
		assert.False(t, seen[record.CorrelativeID], "correlative id %d issued twice", record.CorrelativeID)
		seen[record.CorrelativeID] = true
	}
}

func TestSearchChecklistsQueriesIndex(t *testing.T) {
	repo := new(MockInspectionRepository)
	vehicleRepo := new(MockVehicleRepository)
	media := NewMockMediaStore()
	search := &stubSearch{results: []json.RawMessage{json.RawMessage(`{"driver":"Juan Perez"}`)}}

	svc := NewChecklistService(repo, vehicleRepo, new(MockCounterRepository), stubCache{}, search, media)

	docs, err := svc.Search(context.Background(), "Juan", 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	query, ok := search.lastQuery.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 5, query["size"])

	match := query["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "Juan", match["query"])
}
