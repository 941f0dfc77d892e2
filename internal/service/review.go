package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/cache"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/messagebus"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/metrics"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// DecisionMessage is the event published when a submission reaches a
// terminal status, consumed by the fleet ERP
type DecisionMessage struct {
	Kind           string       `json:"kind"`
	ID             string       `json:"id"`
	CorrelativeID  int64        `json:"correlative_id"`
	InternalNumber string       `json:"internal_number"`
	Driver         string       `json:"driver"`
	Status         model.Status `json:"status"`
	ReviewedBy     string       `json:"reviewed_by"`
	DecidedAt      time.Time    `json:"decided_at"`
}

// ReviewService defines the interface for adjudicating pending submissions
type ReviewService interface {
	ReviewChecklist(ctx context.Context, id string, approve bool, reviewerID string) (*model.InspectionRecord, error)
	ReviewFatigue(ctx context.Context, id string, approve bool, reviewerID string) (*model.FatigueDeclaration, error)
}

// reviewService implements ReviewService
type reviewService struct {
	inspectionRepo repository.InspectionRepository
	fatigueRepo    repository.FatigueRepository
	userRepo       repository.UserRepository
	cache          cache.CacheClient
	messageBus     messagebus.Client
	erpQueue       string
}

// NewReviewService creates a new review service
func NewReviewService(
	inspectionRepo repository.InspectionRepository,
	fatigueRepo repository.FatigueRepository,
	userRepo repository.UserRepository,
	cacheClient cache.CacheClient,
	messageBus messagebus.Client,
	erpQueue string,
) ReviewService {
	return &reviewService{
		inspectionRepo: inspectionRepo,
		fatigueRepo:    fatigueRepo,
		userRepo:       userRepo,
		cache:          cacheClient,
		messageBus:     messageBus,
		erpQueue:       erpQueue,
	}
}

// ReviewChecklist moves a pending inspection record to approved or rejected.
// A record already in a terminal status yields repository.ErrAlreadyReviewed
// and is left untouched.
func (s *reviewService) ReviewChecklist(ctx context.Context, id string, approve bool, reviewerID string) (*model.InspectionRecord, error) {
	startTime := time.Now()
	collector := metrics.GetMetricsCollector()

	status := model.StatusRejected
	submissionType := metrics.SubmissionTypeReject
	if approve {
		status = model.StatusApproved
		submissionType = metrics.SubmissionTypeApprove
	}

	reviewer := s.resolveReviewer(ctx, reviewerID)

	record, err := s.inspectionRepo.SetReview(ctx, id, status, reviewer)
	if err != nil {
		if err != repository.ErrAlreadyReviewed && err != repository.ErrNotFound {
			collector.RecordError(metrics.ErrorTypeDatabase)
		}
		return nil, err
	}

	// Refresh the cache with the terminal state
	if err := s.cache.SetRecord(ctx, record); err != nil {
		logrus.WithError(err).Warn("Failed to cache reviewed inspection record")
	}

	s.publishDecision(&DecisionMessage{
		Kind:           "checklist",
		ID:             record.UUID,
		CorrelativeID:  record.CorrelativeID,
		InternalNumber: record.InternalNumber,
		Driver:         record.Driver,
		Status:         record.Status,
		ReviewedBy:     reviewer,
		DecidedAt:      time.Now().UTC(),
	})

	collector.RecordSubmission(submissionType, time.Since(startTime))

	if count, err := s.inspectionRepo.CountPending(ctx); err == nil {
		collector.SetPendingChecklists(int(count))
	}

	return record, nil
}

// ReviewFatigue moves a pending fatigue declaration to approved or rejected
func (s *reviewService) ReviewFatigue(ctx context.Context, id string, approve bool, reviewerID string) (*model.FatigueDeclaration, error) {
	startTime := time.Now()
	collector := metrics.GetMetricsCollector()

	status := model.StatusRejected
	submissionType := metrics.SubmissionTypeReject
	if approve {
		status = model.StatusApproved
		submissionType = metrics.SubmissionTypeApprove
	}

	reviewer := s.resolveReviewer(ctx, reviewerID)

	declaration, err := s.fatigueRepo.SetReview(ctx, id, status, reviewer)
	if err != nil {
		if err != repository.ErrAlreadyReviewed && err != repository.ErrNotFound {
			collector.RecordError(metrics.ErrorTypeDatabase)
		}
		return nil, err
	}

	if err := s.cache.SetDeclaration(ctx, declaration); err != nil {
		logrus.WithError(err).Warn("Failed to cache reviewed fatigue declaration")
	}

	s.publishDecision(&DecisionMessage{
		Kind:           "fatigue",
		ID:             declaration.UUID,
		CorrelativeID:  declaration.CorrelativeID,
		InternalNumber: declaration.InternalNumber,
		Driver:         declaration.Driver,
		Status:         declaration.Status,
		ReviewedBy:     reviewer,
		DecidedAt:      time.Now().UTC(),
	})

	collector.RecordSubmission(submissionType, time.Since(startTime))

	if count, err := s.fatigueRepo.CountPending(ctx); err == nil {
		collector.SetPendingFatigue(int(count))
	}

	return declaration, nil
}

// resolveReviewer looks up the reviewer display name. A failed lookup
// never blocks the review; the sentinel name is recorded instead.
func (s *reviewService) resolveReviewer(ctx context.Context, reviewerID string) string {
	user, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		logrus.WithError(err).WithField("reviewer_id", reviewerID).Warn("Failed to resolve reviewer profile")
		return model.ReviewerUnknown
	}
	if user.Name == "" {
		return model.ReviewerUnknown
	}
	return user.Name
}

// publishDecision sends the decision event to the ERP queue in the
// background, with retry on transient disconnections
func (s *reviewService) publishDecision(message *DecisionMessage) {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := messagebus.RetryWithBackoff(pubCtx, func() error {
			return s.messageBus.PublishMessage(pubCtx, message, s.erpQueue)
		}, 3)
		if err != nil {
			logrus.WithError(err).Error("Failed to publish decision to ERP")
		}
	}()
}
