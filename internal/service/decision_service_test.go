package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// ============================================================================
// Моки для тестирования DecisionService
// ============================================================================

// MockDecisionRepoForDecisionService реализует repository.DecisionRepository
type MockDecisionRepoForDecisionService struct {
	mock.Mock
}

func (m *MockDecisionRepoForDecisionService) GetByUserAndPick(userID, pickID uint) (*entity.UserDecision, error) {
	args := m.Called(userID, pickID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserDecision), args.Error(1)
}

func (m *MockDecisionRepoForDecisionService) ListByUser(userID uint, limit, offset int) ([]entity.UserDecision, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.UserDecision), args.Get(1).(int64), args.Error(2)
}

func (m *MockDecisionRepoForDecisionService) ListByPick(pickID uint) ([]entity.UserDecision, error) {
	args := m.Called(pickID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserDecision), args.Error(1)
}

func (m *MockDecisionRepoForDecisionService) ListProcessedOrdered() ([]entity.UserDecision, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserDecision), args.Error(1)
}

func (m *MockDecisionRepoForDecisionService) ListPendingWithResults(limit int) ([]repository.PendingDecision, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PendingDecision), args.Error(1)
}

func (m *MockDecisionRepoForDecisionService) GetByUserAndPickForUpdate(tx *gorm.DB, userID, pickID uint) (*entity.UserDecision, error) {
	args := m.Called(tx, userID, pickID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserDecision), args.Error(1)
}

func (m *MockDecisionRepoForDecisionService) CreateTx(tx *gorm.DB, decision *entity.UserDecision) error {
	args := m.Called(tx, decision)
	return args.Error(0)
}

func (m *MockDecisionRepoForDecisionService) UpdateDecisionTypeTx(tx *gorm.DB, decisionID uint, decisionType string) error {
	args := m.Called(tx, decisionID, decisionType)
	return args.Error(0)
}

func (m *MockDecisionRepoForDecisionService) MarkProcessedTx(tx *gorm.DB, decisionID uint, result string) (bool, error) {
	args := m.Called(tx, decisionID, result)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Тесты для DecisionService
// ============================================================================
// Обертка db.Transaction требует реальной БД и покрывается интеграционно.
// Транзакционный шаг записи тестируется напрямую через recordDecisionTx.

func TestDecisionService_RecordDecision_InvalidType(t *testing.T) {
	decisionService := NewDecisionService(nil, nil, nil, nil)

	_, err := decisionService.RecordDecision(1, 1, "hedge")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDecisionService_RecordDecision_GradedPickRejected(t *testing.T) {
	// Arrange
	mockPickRepo := new(MockPickRepoForPickService)
	gradedPick := &entity.Pick{ID: 9, Matchup: "Lakers @ Celtics", Status: entity.PickStatusGraded}
	mockPickRepo.On("GetByID", uint(9)).Return(gradedPick, nil)

	decisionService := NewDecisionService(new(MockDecisionRepoForDecisionService), mockPickRepo, nil, nil)

	// Act
	_, err := decisionService.RecordDecision(1, 9, entity.DecisionRide)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Решение по сверенному пику должно отклоняться")
	mockPickRepo.AssertExpectations(t)
}

func TestDecisionService_RecordDecision_PickNotFound(t *testing.T) {
	mockPickRepo := new(MockPickRepoForPickService)
	mockPickRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

	decisionService := NewDecisionService(new(MockDecisionRepoForDecisionService), mockPickRepo, nil, nil)

	_, err := decisionService.RecordDecision(1, 99, entity.DecisionFade)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	mockPickRepo.AssertExpectations(t)
}

func TestDecisionService_GetDecision(t *testing.T) {
	mockDecisionRepo := new(MockDecisionRepoForDecisionService)
	decision := &entity.UserDecision{ID: 3, UserID: 1, PickID: 2, DecisionType: entity.DecisionRide}
	mockDecisionRepo.On("GetByUserAndPick", uint(1), uint(2)).Return(decision, nil)

	decisionService := NewDecisionService(mockDecisionRepo, nil, nil, nil)

	got, err := decisionService.GetDecision(1, 2)

	require.NoError(t, err)
	assert.Equal(t, uint(3), got.ID)
	mockDecisionRepo.AssertExpectations(t)
}

func TestDecisionService_RecordDecisionTx_FirstDecisionCountsOnce(t *testing.T) {
	// Arrange: решения по этому пику у пользователя еще нет
	mockDecisionRepo := new(MockDecisionRepoForDecisionService)
	mockStatsRepo := new(MockStatsRepository)

	mockDecisionRepo.On("GetByUserAndPickForUpdate", mock.Anything, uint(7), uint(3)).Return(nil, apperrors.ErrNotFound)
	mockDecisionRepo.On("CreateTx", mock.Anything, mock.AnythingOfType("*entity.UserDecision")).Return(nil)
	mockStatsRepo.On("EnsureRowTx", mock.Anything, uint(7)).Return(nil)
	mockStatsRepo.On("AdjustCountsTx", mock.Anything, uint(7), int64(1), int64(1), int64(0)).Return(nil)

	decisionService := NewDecisionService(mockDecisionRepo, nil, mockStatsRepo, nil)

	// Act
	decision, err := decisionService.recordDecisionTx(nil, 7, 3, entity.DecisionRide)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.DecisionRide, decision.DecisionType)
	assert.False(t, decision.Processed)
	mockDecisionRepo.AssertExpectations(t)
	mockStatsRepo.AssertExpectations(t)
}

func TestDecisionService_RecordDecisionTx_SwitchMovesCounters(t *testing.T) {
	// Arrange: у пользователя уже есть необработанное решение ride
	mockDecisionRepo := new(MockDecisionRepoForDecisionService)
	mockStatsRepo := new(MockStatsRepository)

	existing := &entity.UserDecision{ID: 21, UserID: 7, PickID: 3, DecisionType: entity.DecisionRide, Processed: false}
	mockDecisionRepo.On("GetByUserAndPickForUpdate", mock.Anything, uint(7), uint(3)).Return(existing, nil)
	mockDecisionRepo.On("UpdateDecisionTypeTx", mock.Anything, uint(21), entity.DecisionFade).Return(nil)
	// total не меняется: единица перетекает из ride в fade
	mockStatsRepo.On("AdjustCountsTx", mock.Anything, uint(7), int64(0), int64(-1), int64(1)).Return(nil)

	decisionService := NewDecisionService(mockDecisionRepo, nil, mockStatsRepo, nil)

	// Act: смена мнения ride -> fade
	decision, err := decisionService.recordDecisionTx(nil, 7, 3, entity.DecisionFade)

	// Assert: строка одна и та же, вторая не создается
	require.NoError(t, err)
	assert.Equal(t, uint(21), decision.ID)
	assert.Equal(t, entity.DecisionFade, decision.DecisionType)
	mockDecisionRepo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
	mockStatsRepo.AssertNotCalled(t, "EnsureRowTx", mock.Anything, mock.Anything)
	mockDecisionRepo.AssertExpectations(t)
	mockStatsRepo.AssertExpectations(t)
}

func TestDecisionService_RecordDecisionTx_SameKindIsNoop(t *testing.T) {
	// Arrange
	mockDecisionRepo := new(MockDecisionRepoForDecisionService)
	mockStatsRepo := new(MockStatsRepository)

	existing := &entity.UserDecision{ID: 21, UserID: 7, PickID: 3, DecisionType: entity.DecisionFade, Processed: false}
	mockDecisionRepo.On("GetByUserAndPickForUpdate", mock.Anything, uint(7), uint(3)).Return(existing, nil)

	decisionService := NewDecisionService(mockDecisionRepo, nil, mockStatsRepo, nil)

	// Act: повторная отправка того же решения
	decision, err := decisionService.recordDecisionTx(nil, 7, 3, entity.DecisionFade)

	// Assert: ни записи, ни движения счетчиков
	require.NoError(t, err)
	assert.Equal(t, uint(21), decision.ID)
	mockDecisionRepo.AssertNotCalled(t, "UpdateDecisionTypeTx", mock.Anything, mock.Anything, mock.Anything)
	mockStatsRepo.AssertNotCalled(t, "AdjustCountsTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDecisionRepo.AssertExpectations(t)
}

func TestDecisionService_RecordDecisionTx_ProcessedDecisionRejected(t *testing.T) {
	// Arrange: решение уже сверено
	mockDecisionRepo := new(MockDecisionRepoForDecisionService)

	result := entity.OutcomeWin
	existing := &entity.UserDecision{ID: 21, UserID: 7, PickID: 3, DecisionType: entity.DecisionRide, Processed: true, Result: &result}
	mockDecisionRepo.On("GetByUserAndPickForUpdate", mock.Anything, uint(7), uint(3)).Return(existing, nil)

	decisionService := NewDecisionService(mockDecisionRepo, nil, nil, nil)

	// Act
	_, err := decisionService.recordDecisionTx(nil, 7, 3, entity.DecisionFade)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Сверенное решение нельзя переписать")
	mockDecisionRepo.AssertExpectations(t)
}

func TestCountDeltas(t *testing.T) {
	deltaRide, deltaFade := countDeltas(entity.DecisionRide)
	assert.Equal(t, int64(1), deltaRide)
	assert.Equal(t, int64(0), deltaFade)

	deltaRide, deltaFade = countDeltas(entity.DecisionFade)
	assert.Equal(t, int64(0), deltaRide)
	assert.Equal(t, int64(1), deltaFade)
}
