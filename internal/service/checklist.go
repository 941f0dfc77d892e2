package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/cache"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/elasticsearch"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/media"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/metrics"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// ChecklistAnswerInput is the submitted answer for one catalog item
type ChecklistAnswerInput struct {
	Result      model.ResultCode `json:"result" validate:"required"`
	Observation string           `json:"observation"`
	PhotoData   string           `json:"photo_data"`
}

// SubmitChecklistRequest defines the request to submit a pre-use checklist
type SubmitChecklistRequest struct {
	InspectionDate string                                `json:"inspection_date" validate:"required"`
	InspectionTime string                                `json:"inspection_time" validate:"required"`
	Driver         string                                `json:"driver" validate:"required"`
	InternalNumber string                                `json:"internal_number" validate:"required"`
	Odometer       int64                                 `json:"odometer"`
	Notes          string                                `json:"notes"`
	Answers        map[model.ItemID]ChecklistAnswerInput `json:"answers" validate:"required"`
	SignatureData  string                                `json:"signature_data" validate:"required"`
	DamageSketch   string                                `json:"damage_sketch_data"`
	CreatedBy      string                                `json:"-"`
}

// ChecklistService defines the interface for checklist submissions and queries
type ChecklistService interface {
	Submit(ctx context.Context, req *SubmitChecklistRequest) (*model.InspectionRecord, error)
	GetByID(ctx context.Context, id string) (*model.InspectionRecord, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*model.InspectionRecord, int64, error)
	Search(ctx context.Context, text string, limit int) ([]json.RawMessage, error)
	FindingsByVehicle(ctx context.Context, limit int) ([]repository.VehicleFindings, error)
	PendingCount(ctx context.Context) (int64, error)
}

// checklistService implements ChecklistService
type checklistService struct {
	repo        repository.InspectionRepository
	vehicleRepo repository.VehicleRepository
	counterRepo repository.CounterRepository
	cache       cache.CacheClient
	search      elasticsearch.Client
	media       media.Store
}

// NewChecklistService creates a new checklist service
func NewChecklistService(
	repo repository.InspectionRepository,
	vehicleRepo repository.VehicleRepository,
	counterRepo repository.CounterRepository,
	cacheClient cache.CacheClient,
	search elasticsearch.Client,
	mediaStore media.Store,
) ChecklistService {
	return &checklistService{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		counterRepo: counterRepo,
		cache:       cacheClient,
		search:      search,
		media:       mediaStore,
	}
}

// Submit validates, adjudicates and persists a checklist submission.
// Nothing is persisted when validation fails, and a failed correlative id
// fetch aborts the submission outright.
func (s *checklistService) Submit(ctx context.Context, req *SubmitChecklistRequest) (*model.InspectionRecord, error) {
	startTime := time.Now()
	collector := metrics.GetMetricsCollector()

	if req.SignatureData == "" {
		collector.RecordError(metrics.ErrorTypeValidation)
		return nil, model.ErrMissingSignature
	}

	inputs := make(map[model.ItemID]model.ChecklistInput, len(req.Answers))
	for item, answer := range req.Answers {
		inputs[item] = model.ChecklistInput{
			Result:      answer.Result,
			Observation: answer.Observation,
		}
	}

	if err := model.ValidateChecklist(inputs); err != nil {
		collector.RecordError(metrics.ErrorTypeValidation)
		return nil, err
	}

	vehicle, err := s.findVehicle(ctx, req.InternalNumber)
	if err != nil {
		return nil, fmt.Errorf("vehicle %s is not registered: %w", req.InternalNumber, err)
	}

	signatureURL, err := s.uploadDataURL(ctx, "signatures", req.SignatureData)
	if err != nil {
		collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
		return nil, fmt.Errorf("failed to store signature: %w", err)
	}

	sketchURL := ""
	if req.DamageSketch != "" {
		sketchURL, err = s.uploadDataURL(ctx, "sketches", req.DamageSketch)
		if err != nil {
			collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
			return nil, fmt.Errorf("failed to store damage sketch: %w", err)
		}
	}

	photoURLs := make(map[model.ItemID]string)
	for item, answer := range req.Answers {
		if answer.PhotoData == "" {
			continue
		}
		url, err := s.uploadDataURL(ctx, "defects", answer.PhotoData)
		if err != nil {
			collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
			return nil, fmt.Errorf("failed to store photo for item %s: %w", item, err)
		}
		photoURLs[item] = url
	}

	correlativeID, err := s.counterRepo.Next(ctx, model.ChecklistCounter)
	if err != nil {
		collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
		collector.RecordError(metrics.ErrorTypeDatabase)
		return nil, fmt.Errorf("failed to issue correlative id: %w", err)
	}

	status, reviewer := model.Adjudicate(inputs)

	record := &model.InspectionRecord{
		Base: model.Base{
			UUID: uuid.New().String(),
		},
		CorrelativeID:  correlativeID,
		InspectionDate: req.InspectionDate,
		InspectionTime: req.InspectionTime,
		Driver:         req.Driver,
		InternalNumber: req.InternalNumber,
		Odometer:       req.Odometer,
		Notes:          req.Notes,

		VehicleMake:  vehicle.Make,
		VehicleModel: vehicle.Model,
		VehiclePlate: vehicle.Plate,
		VehicleYear:  vehicle.Year,
		VehicleColor: vehicle.Color,

		SignatureURL:    signatureURL,
		DamageSketchURL: sketchURL,

		Status:     status,
		CreatedBy:  req.CreatedBy,
		ReviewedBy: reviewer,
	}

	for _, item := range model.CatalogItems() {
		answer := req.Answers[item]
		record.Answers = append(record.Answers, model.ChecklistAnswer{
			Base:        model.Base{UUID: uuid.New().String()},
			RecordID:    record.UUID,
			Item:        item,
			Result:      answer.Result,
			Observation: answer.Observation,
			PhotoURL:    photoURLs[item],
		})
	}

	record, err = s.repo.Create(ctx, record)
	if err != nil {
		collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
		collector.RecordError(metrics.ErrorTypeDatabase)
		return nil, err
	}

	// Cache the result
	if err := s.cache.SetRecord(ctx, record); err != nil {
		logrus.WithError(err).Warn("Failed to cache inspection record")
	}

	s.indexRecord(ctx, record)

	if status == model.StatusRejected {
		collector.RecordSubmission(metrics.SubmissionTypeAutoReject, time.Since(startTime))
	} else {
		collector.RecordSubmission(metrics.SubmissionTypeChecklist, time.Since(startTime))
	}

	// Update pending gauge
	if count, err := s.repo.CountPending(ctx); err == nil {
		collector.SetPendingChecklists(int(count))
	}

	return record, nil
}

// GetByID gets an inspection record by ID
func (s *checklistService) GetByID(ctx context.Context, id string) (*model.InspectionRecord, error) {
	// Try to get from cache first
	record, err := s.cache.GetRecord(ctx, id)
	if err == nil {
		return record, nil
	}
	if err != redis.Nil {
		logrus.WithError(err).Warn("Failed to get inspection record from cache")
	}

	record, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRecord(ctx, record); err != nil {
		logrus.WithError(err).Warn("Failed to cache inspection record")
	}

	return record, nil
}

// List returns inspection records matching the filter plus the total count
func (s *checklistService) List(ctx context.Context, filter repository.ListFilter) ([]*model.InspectionRecord, int64, error) {
	return s.repo.List(ctx, filter)
}

// Search runs a free-text query against the search index. Results come
// from the index, not the database, so unindexed records do not appear.
func (s *checklistService) Search(ctx context.Context, text string, limit int) ([]json.RawMessage, error) {
	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"driver", "internal_number", "notes"},
			},
		},
		"sort": []map[string]interface{}{
			{"correlative_id": map[string]interface{}{"order": "desc"}},
		},
	}
	return s.search.SearchDocuments(ctx, query)
}

// FindingsByVehicle aggregates reviewed defect counts per vehicle
func (s *checklistService) FindingsByVehicle(ctx context.Context, limit int) ([]repository.VehicleFindings, error) {
	return s.repo.FindingsByVehicle(ctx, limit)
}

// PendingCount returns the number of checklists awaiting review
func (s *checklistService) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}

// findVehicle resolves a vehicle by internal number, cache first
func (s *checklistService) findVehicle(ctx context.Context, internalNumber string) (*model.Vehicle, error) {
	vehicle, err := s.cache.GetVehicleByInternalNumber(ctx, internalNumber)
	if err == nil {
		return vehicle, nil
	}
	if err != redis.Nil {
		logrus.WithError(err).Warn("Failed to get vehicle from cache")
	}

	vehicle, err = s.vehicleRepo.FindByInternalNumber(ctx, internalNumber)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetVehicleByInternalNumber(ctx, vehicle); err != nil {
		logrus.WithError(err).Warn("Failed to cache vehicle")
	}

	return vehicle, nil
}

// uploadDataURL decodes a submitted data URL and stores it as an image
func (s *checklistService) uploadDataURL(ctx context.Context, folder, dataURL string) (string, error) {
	contentType, content, err := media.ParseDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidSubmission, err)
	}
	return s.media.UploadImage(ctx, folder, contentType, content)
}

// indexRecord mirrors the record into the search index. Failures are
// logged and swallowed; the database remains the source of truth.
func (s *checklistService) indexRecord(ctx context.Context, record *model.InspectionRecord) {
	document, err := json.Marshal(record)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal inspection record for indexing")
		return
	}
	if err := s.search.IndexDocument(ctx, record.UUID, document); err != nil {
		logrus.WithError(err).Warn("Failed to index inspection record")
	}
}
