package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/cache"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/media"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/metrics"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// FatigueResponseInput is the submitted answer for one fatigue question
type FatigueResponseInput struct {
	Answer model.FatigueAnswer `json:"answer" validate:"required"`
	Remark string              `json:"remark"`
}

// SubmitFatigueRequest defines the request to submit a fatigue declaration
type SubmitFatigueRequest struct {
	Driver         string                       `json:"driver" validate:"required"`
	VehicleType    string                       `json:"vehicle_type"`
	InternalNumber string                       `json:"internal_number" validate:"required"`
	Destination    string                       `json:"destination"`
	DepartureTime  string                       `json:"departure_time"`
	Date           string                       `json:"date" validate:"required"`
	Responses      map[int]FatigueResponseInput `json:"responses" validate:"required"`
	SignatureData  string                       `json:"signature_data" validate:"required"`
	CreatedBy      string                       `json:"-"`
}

// FatigueService defines the interface for fatigue declarations
type FatigueService interface {
	Submit(ctx context.Context, req *SubmitFatigueRequest) (*model.FatigueDeclaration, error)
	GetByID(ctx context.Context, id string) (*model.FatigueDeclaration, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*model.FatigueDeclaration, int64, error)
	PendingCount(ctx context.Context) (int64, error)
}

// fatigueService implements FatigueService
type fatigueService struct {
	repo        repository.FatigueRepository
	counterRepo repository.CounterRepository
	cache       cache.CacheClient
	media       media.Store
}

// NewFatigueService creates a new fatigue service
func NewFatigueService(
	repo repository.FatigueRepository,
	counterRepo repository.CounterRepository,
	cacheClient cache.CacheClient,
	mediaStore media.Store,
) FatigueService {
	return &fatigueService{
		repo:        repo,
		counterRepo: counterRepo,
		cache:       cacheClient,
		media:       mediaStore,
	}
}

// Submit validates and persists a fatigue declaration. The error count is
// derived server side from the answers; declarations always enter the
// pending queue regardless of it.
func (s *fatigueService) Submit(ctx context.Context, req *SubmitFatigueRequest) (*model.FatigueDeclaration, error) {
	startTime := time.Now()
	collector := metrics.GetMetricsCollector()

	if req.SignatureData == "" {
		collector.RecordError(metrics.ErrorTypeValidation)
		return nil, model.ErrMissingSignature
	}

	inputs := make(map[int]model.FatigueInput, len(req.Responses))
	for index, response := range req.Responses {
		inputs[index] = model.FatigueInput{
			Answer: response.Answer,
			Remark: response.Remark,
		}
	}

	if err := model.ValidateFatigue(inputs); err != nil {
		collector.RecordError(metrics.ErrorTypeValidation)
		return nil, err
	}

	contentType, content, err := media.ParseDataURL(req.SignatureData)
	if err != nil {
		collector.RecordError(metrics.ErrorTypeValidation)
		return nil, fmt.Errorf("%w: invalid signature image: %v", model.ErrInvalidSubmission, err)
	}
	signatureURL, err := s.media.UploadImage(ctx, "signatures", contentType, content)
	if err != nil {
		collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
		return nil, fmt.Errorf("failed to store signature: %w", err)
	}

	correlativeID, err := s.counterRepo.Next(ctx, model.FatigueCounter)
	if err != nil {
		collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
		collector.RecordError(metrics.ErrorTypeDatabase)
		return nil, fmt.Errorf("failed to issue correlative id: %w", err)
	}

	declaration := &model.FatigueDeclaration{
		Base: model.Base{
			UUID: uuid.New().String(),
		},
		CorrelativeID:  correlativeID,
		Driver:         req.Driver,
		VehicleType:    req.VehicleType,
		InternalNumber: req.InternalNumber,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		Date:           req.Date,
		ErrorCount:     model.CountFatigueErrors(inputs),
		SignatureURL:   signatureURL,
		Status:         model.StatusPending,
		CreatedBy:      req.CreatedBy,
	}

	for index := 0; index < model.FatigueQuestionCount; index++ {
		response := req.Responses[index]
		declaration.Responses = append(declaration.Responses, model.FatigueResponse{
			Base:          model.Base{UUID: uuid.New().String()},
			DeclarationID: declaration.UUID,
			QuestionIndex: index,
			Answer:        response.Answer,
			Remark:        response.Remark,
		})
	}

	declaration, err = s.repo.Create(ctx, declaration)
	if err != nil {
		collector.RecordSubmission(metrics.SubmissionTypeFailed, time.Since(startTime))
		collector.RecordError(metrics.ErrorTypeDatabase)
		return nil, err
	}

	// Cache the result
	if err := s.cache.SetDeclaration(ctx, declaration); err != nil {
		logrus.WithError(err).Warn("Failed to cache fatigue declaration")
	}

	collector.RecordSubmission(metrics.SubmissionTypeFatigue, time.Since(startTime))

	// Update pending gauge
	if count, err := s.repo.CountPending(ctx); err == nil {
		collector.SetPendingFatigue(int(count))
	}

	return declaration, nil
}

// GetByID gets a fatigue declaration by ID
func (s *fatigueService) GetByID(ctx context.Context, id string) (*model.FatigueDeclaration, error) {
	// Try to get from cache first
	declaration, err := s.cache.GetDeclaration(ctx, id)
	if err == nil {
		return declaration, nil
	}
	if err != redis.Nil {
		logrus.WithError(err).Warn("Failed to get fatigue declaration from cache")
	}

	declaration, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDeclaration(ctx, declaration); err != nil {
		logrus.WithError(err).Warn("Failed to cache fatigue declaration")
	}

	return declaration, nil
}

// List returns fatigue declarations matching the filter plus the total count
func (s *fatigueService) List(ctx context.Context, filter repository.ListFilter) ([]*model.FatigueDeclaration, int64, error) {
	return s.repo.List(ctx, filter)
}

// PendingCount returns the number of declarations awaiting review
func (s *fatigueService) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}
