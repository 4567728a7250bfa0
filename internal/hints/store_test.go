package hints

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/codewithmorais/quiz-session-service/internal/cache"
	"github.com/codewithmorais/quiz-session-service/internal/models"
	"github.com/codewithmorais/quiz-session-service/internal/repositories"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByQuiz(ctx context.Context, quizID string) ([]*models.QuestionRecord, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).([]*models.QuestionRecord), args.Error(1)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.QuestionRecord, error) {
	args := m.Called(ctx, id)
	if record := args.Get(0); record != nil {
		return record.(*models.QuestionRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, records []*models.QuestionRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Get(ctx context.Context, userID string) (*models.UserWallet, error) {
	args := m.Called(ctx, userID)
	if wallet := args.Get(0); wallet != nil {
		return wallet.(*models.UserWallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) ApplyDeltas(ctx context.Context, userID string, pointsDelta, currencyDelta int) (*models.UserWallet, error) {
	args := m.Called(ctx, userID, pointsDelta, currencyDelta)
	if wallet := args.Get(0); wallet != nil {
		return wallet.(*models.UserWallet), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockHintRepository struct {
	mock.Mock
}

func (m *MockHintRepository) LogPurchase(ctx context.Context, record *models.HintPurchaseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHintRepository) CountForQuestion(ctx context.Context, userID, sessionID, questionID string) (int, error) {
	args := m.Called(ctx, userID, sessionID, questionID)
	return args.Int(0), args.Error(1)
}

type MockRepository struct {
	question *MockQuestionRepository
	wallet   *MockWalletRepository
	hint     *MockHintRepository
}

func (m *MockRepository) Question() repositories.QuestionRepository       { return m.question }
func (m *MockRepository) Result() repositories.ResultRepository           { return nil }
func (m *MockRepository) Achievement() repositories.AchievementRepository { return nil }
func (m *MockRepository) Wallet() repositories.WalletRepository           { return m.wallet }
func (m *MockRepository) Hint() repositories.HintRepository               { return m.hint }

func newStoreFixture(t *testing.T) (*MockRepository, Store) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := utils.NewDevelopmentLogger()
	repo := &MockRepository{
		question: &MockQuestionRepository{},
		wallet:   &MockWalletRepository{},
		hint:     &MockHintRepository{},
	}
	return repo, NewStore(repo, cache.NewRedisCache(client, logger), logger)
}

func hintedQuestion() *models.QuestionRecord {
	return &models.QuestionRecord{
		ID:           "q1",
		QuizID:       "quiz-1",
		Kind:         models.SingleChoice,
		Prompt:       "Pick one",
		Difficulty:   1,
		TargetTimeMs: 30000,
		HintCost:     10,
		Hints:        datatypes.JSON(`["first hint","second hint"]`),
		Payload:      datatypes.JSON(`{"options":["a","b"],"correct_index":0}`),
	}
}

func TestPurchaseHint_RevealsNextHint(t *testing.T) {
	repo, store := newStoreFixture(t)

	repo.question.On("GetByID", mock.Anything, "q1").Return(hintedQuestion(), nil).Once()
	repo.hint.On("CountForQuestion", mock.Anything, "user-1", "sess-1", "q1").Return(0, nil).Once()
	repo.wallet.On("Get", mock.Anything, "user-1").
		Return(&models.UserWallet{UserID: "user-1", Currency: 100}, nil).Once()
	repo.wallet.On("ApplyDeltas", mock.Anything, "user-1", 0, -10).
		Return(&models.UserWallet{UserID: "user-1", Currency: 90}, nil).Once()
	repo.hint.On("LogPurchase", mock.Anything, mock.MatchedBy(func(record *models.HintPurchaseRecord) bool {
		return record.HintIndex == 0 && record.Cost == 10
	})).Return(nil).Once()

	response, err := store.PurchaseHint(context.Background(), PurchaseRequest{
		UserID:     "user-1",
		SessionID:  "sess-1",
		QuestionID: "q1",
	})

	require.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, "first hint", response.HintText)
	assert.Equal(t, 0, response.HintIndex)
	assert.Equal(t, 90, response.NewCurrencyTotal)
	repo.wallet.AssertExpectations(t)
	repo.hint.AssertExpectations(t)
}

func TestPurchaseHint_SecondPurchaseUsesCache(t *testing.T) {
	repo, store := newStoreFixture(t)

	// The question is loaded once; the second purchase hits the hint cache.
	repo.question.On("GetByID", mock.Anything, "q1").Return(hintedQuestion(), nil).Once()
	repo.hint.On("CountForQuestion", mock.Anything, "user-1", "sess-1", "q1").Return(0, nil).Once()
	repo.hint.On("CountForQuestion", mock.Anything, "user-1", "sess-1", "q1").Return(1, nil).Once()
	repo.wallet.On("Get", mock.Anything, "user-1").
		Return(&models.UserWallet{UserID: "user-1", Currency: 100}, nil)
	repo.wallet.On("ApplyDeltas", mock.Anything, "user-1", 0, -10).
		Return(&models.UserWallet{UserID: "user-1", Currency: 90}, nil)
	repo.hint.On("LogPurchase", mock.Anything, mock.Anything).Return(nil)

	first, err := store.PurchaseHint(context.Background(), PurchaseRequest{
		UserID: "user-1", SessionID: "sess-1", QuestionID: "q1",
	})
	require.NoError(t, err)
	assert.Equal(t, "first hint", first.HintText)

	second, err := store.PurchaseHint(context.Background(), PurchaseRequest{
		UserID: "user-1", SessionID: "sess-1", QuestionID: "q1",
	})
	require.NoError(t, err)
	assert.Equal(t, "second hint", second.HintText)
	assert.Equal(t, 1, second.HintIndex)

	repo.question.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestPurchaseHint_NoMoreHints(t *testing.T) {
	repo, store := newStoreFixture(t)

	repo.question.On("GetByID", mock.Anything, "q1").Return(hintedQuestion(), nil).Once()
	repo.hint.On("CountForQuestion", mock.Anything, "user-1", "sess-1", "q1").Return(2, nil).Once()

	_, err := store.PurchaseHint(context.Background(), PurchaseRequest{
		UserID: "user-1", SessionID: "sess-1", QuestionID: "q1",
	})
	assert.ErrorIs(t, err, ErrNoMoreHints)
}

func TestPurchaseHint_InsufficientCurrency(t *testing.T) {
	repo, store := newStoreFixture(t)

	repo.question.On("GetByID", mock.Anything, "q1").Return(hintedQuestion(), nil).Once()
	repo.hint.On("CountForQuestion", mock.Anything, "user-1", "sess-1", "q1").Return(0, nil).Once()
	repo.wallet.On("Get", mock.Anything, "user-1").
		Return(&models.UserWallet{UserID: "user-1", Currency: 5}, nil).Once()

	_, err := store.PurchaseHint(context.Background(), PurchaseRequest{
		UserID: "user-1", SessionID: "sess-1", QuestionID: "q1",
	})
	assert.ErrorIs(t, err, ErrInsufficientCurrency)
	repo.wallet.AssertNotCalled(t, "ApplyDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseHint_MissingWalletTreatedAsBroke(t *testing.T) {
	repo, store := newStoreFixture(t)

	repo.question.On("GetByID", mock.Anything, "q1").Return(hintedQuestion(), nil).Once()
	repo.hint.On("CountForQuestion", mock.Anything, "user-1", "sess-1", "q1").Return(0, nil).Once()
	repo.wallet.On("Get", mock.Anything, "user-1").Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := store.PurchaseHint(context.Background(), PurchaseRequest{
		UserID: "user-1", SessionID: "sess-1", QuestionID: "q1",
	})
	assert.ErrorIs(t, err, ErrInsufficientCurrency)
}
