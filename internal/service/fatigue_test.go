package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// fatigueRequest builds a submission with every expected safe answer
func fatigueRequest() *SubmitFatigueRequest {
	responses := make(map[int]FatigueResponseInput)
	for index := 0; index < model.FatigueQuestionCount; index++ {
		answer := model.AnswerYes
		if index == 5 || index == 7 || index == 8 {
			answer = model.AnswerNo
		}
		responses[index] = FatigueResponseInput{Answer: answer}
	}
	return &SubmitFatigueRequest{
		Driver:         "Juan Perez",
		VehicleType:    "bus",
		InternalNumber: "401",
		Destination:    "Mina Sur",
		DepartureTime:  "07:30",
		Date:           "2026-08-30",
		Responses:      responses,
		SignatureData:  testDataURL,
		CreatedBy:      "user-1",
	}
}

func TestSubmitFatigueMissingSignature(t *testing.T) {
	repo := new(MockFatigueRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	svc := NewFatigueService(repo, counterRepo, stubCache{}, media)

	req := fatigueRequest()
	req.SignatureData = ""

	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, model.ErrMissingSignature)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	counterRepo.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestSubmitFatigueMalformedSignature(t *testing.T) {
	repo := new(MockFatigueRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	svc := NewFatigueService(repo, counterRepo, stubCache{}, media)

	req := fatigueRequest()
	req.SignatureData = "just some text"

	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, model.ErrInvalidSubmission)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	counterRepo.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
	assert.Zero(t, media.UploadCount("signatures"))
}

func TestSubmitFatigueIncomplete(t *testing.T) {
	repo := new(MockFatigueRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	svc := NewFatigueService(repo, counterRepo, stubCache{}, media)

	req := fatigueRequest()
	delete(req.Responses, 4)

	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, model.ErrIncompleteForm)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitFatigueSafeAnswers(t *testing.T) {
	repo := new(MockFatigueRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	counterRepo.On("Next", mock.Anything, model.FatigueCounter).Return(int64(3), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.FatigueDeclaration")).Return(&model.FatigueDeclaration{}, nil)
	repo.On("CountPending", mock.Anything).Return(int64(1), nil)

	svc := NewFatigueService(repo, counterRepo, stubCache{}, media)

	_, err := svc.Submit(context.Background(), fatigueRequest())
	require.NoError(t, err)

	created := repo.Calls[0].Arguments.Get(1).(*model.FatigueDeclaration)
	assert.Equal(t, int64(3), created.CorrelativeID)
	assert.Equal(t, 0, created.ErrorCount)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Nil(t, created.ReviewedBy)
	assert.Len(t, created.Responses, model.FatigueQuestionCount)
	assert.Equal(t, 1, media.UploadCount("signatures"))
}

func TestSubmitFatigueAllYesCountsThreeErrors(t *testing.T) {
	repo := new(MockFatigueRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	counterRepo.On("Next", mock.Anything, model.FatigueCounter).Return(int64(4), nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.FatigueDeclaration")).Return(&model.FatigueDeclaration{}, nil)
	repo.On("CountPending", mock.Anything).Return(int64(1), nil)

	svc := NewFatigueService(repo, counterRepo, stubCache{}, media)

	req := fatigueRequest()
	for index := range req.Responses {
		req.Responses[index] = FatigueResponseInput{Answer: model.AnswerYes}
	}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	created := repo.Calls[0].Arguments.Get(1).(*model.FatigueDeclaration)
	assert.Equal(t, 3, created.ErrorCount)
	// A nonzero error count still lands in the pending queue
	assert.Equal(t, model.StatusPending, created.Status)
}

func TestSubmitFatigueCounterMissingAborts(t *testing.T) {
	repo := new(MockFatigueRepository)
	counterRepo := new(MockCounterRepository)
	media := NewMockMediaStore()

	counterRepo.On("Next", mock.Anything, model.FatigueCounter).Return(int64(0), repository.ErrCounterMissing)

	svc := NewFatigueService(repo, counterRepo, stubCache{}, media)

	_, err := svc.Submit(context.Background(), fatigueRequest())
	require.ErrorIs(t, err, repository.ErrCounterMissing)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
