package results

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type mockResultRepository struct {
	mock.Mock
}

func (m *mockResultRepository) Upsert(ctx context.Context, record *models.AnswerResultRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *mockResultRepository) GetBySession(ctx context.Context, sessionID string) ([]*models.AnswerResultRecord, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]*models.AnswerResultRecord), args.Error(1)
}

func (m *mockResultRepository) GetByUser(ctx context.Context, userID string) ([]*models.AnswerResultRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.AnswerResultRecord), args.Error(1)
}

type mockWalletRepository struct {
	mock.Mock
}

func (m *mockWalletRepository) Get(ctx context.Context, userID string) (*models.UserWallet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*models.UserWallet), args.Error(1)
}

func (m *mockWalletRepository) ApplyDeltas(ctx context.Context, userID string, pointsDelta, currencyDelta int) (*models.UserWallet, error) {
	args := m.Called(ctx, userID, pointsDelta, currencyDelta)
	if wallet := args.Get(0); wallet != nil {
		return wallet.(*models.UserWallet), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRepository struct {
	result *mockResultRepository
	wallet *mockWalletRepository
}

func (m *mockRepository) Question() repositories.QuestionRepository       { return nil }
func (m *mockRepository) Result() repositories.ResultRepository           { return m.result }
func (m *mockRepository) Achievement() repositories.AchievementRepository { return nil }
func (m *mockRepository) Wallet() repositories.WalletRepository           { return m.wallet }
func (m *mockRepository) Hint() repositories.HintRepository               { return nil }

func newSinkFixtures() (*mockRepository, Sink) {
	repo := &mockRepository{
		result: &mockResultRepository{},
		wallet: &mockWalletRepository{},
	}
	sink := NewPostgresSink(repo, utils.NewDevelopmentLogger())
	return repo, sink
}

func TestPostgresSink_AppliesDeltasOnFirstRecord(t *testing.T) {
	repo, sink := newSinkFixtures()

	repo.result.On("Upsert", mock.Anything, mock.MatchedBy(func(record *models.AnswerResultRecord) bool {
		return record.SessionID == "sess-1" && record.QuestionID == "q1" && record.AttemptNumber == 1
	})).Return(true, nil)
	repo.wallet.On("ApplyDeltas", mock.Anything, "user-1", 25, 12).
		Return(&models.UserWallet{UserID: "user-1", Points: 25, Currency: 12}, nil)

	receipt, err := sink.Record(context.Background(), RecordRequest{
		SessionID:     "sess-1",
		QuestionID:    "q1",
		UserID:        "user-1",
		AttemptNumber: 1,
		IsCorrect:     true,
		PointsDelta:   25,
		CurrencyDelta: 12,
	})

	require.NoError(t, err)
	assert.True(t, receipt.Applied)
	require.NotNil(t, receipt.NewPointsTotal)
	assert.Equal(t, 25, *receipt.NewPointsTotal)
	repo.result.AssertExpectations(t)
	repo.wallet.AssertExpectations(t)
}

func TestPostgresSink_ReplayIsIdempotent(t *testing.T) {
	repo, sink := newSinkFixtures()

	// The unique key already holds this record; no deltas may be applied.
	repo.result.On("Upsert", mock.Anything, mock.Anything).Return(false, nil)

	receipt, err := sink.Record(context.Background(), RecordRequest{
		SessionID:     "sess-1",
		QuestionID:    "q1",
		UserID:        "user-1",
		AttemptNumber: 1,
		PointsDelta:   25,
	})

	require.NoError(t, err)
	assert.False(t, receipt.Applied)
	repo.wallet.AssertNotCalled(t, "ApplyDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPostgresSink_PropagatesStorageError(t *testing.T) {
	repo, sink := newSinkFixtures()

	repo.result.On("Upsert", mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	receipt, err := sink.Record(context.Background(), RecordRequest{
		SessionID:     "sess-1",
		QuestionID:    "q1",
		AttemptNumber: 1,
	})

	assert.Error(t, err)
	assert.Nil(t, receipt)
}
