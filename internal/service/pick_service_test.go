package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// ============================================================================
// Моки для тестирования PickService
// ============================================================================

// MockPickRepoForPickService реализует repository.PickRepository
type MockPickRepoForPickService struct {
	mock.Mock
}

func (m *MockPickRepoForPickService) Create(pick *entity.Pick) error {
	args := m.Called(pick)
	return args.Error(0)
}

func (m *MockPickRepoForPickService) GetByID(id uint) (*entity.Pick, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Pick), args.Error(1)
}

func (m *MockPickRepoForPickService) GetByExternalID(externalID string) (*entity.Pick, error) {
	args := m.Called(externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Pick), args.Error(1)
}

func (m *MockPickRepoForPickService) ListByDay(day time.Time) ([]entity.Pick, error) {
	args := m.Called(day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Pick), args.Error(1)
}

func (m *MockPickRepoForPickService) List(limit, offset int) ([]entity.Pick, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Pick), args.Get(1).(int64), args.Error(2)
}

func (m *MockPickRepoForPickService) ListPendingStartedBefore(cutoff time.Time) ([]entity.Pick, error) {
	args := m.Called(cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Pick), args.Error(1)
}

func (m *MockPickRepoForPickService) MarkGraded(tx *gorm.DB, pickID uint) error {
	args := m.Called(tx, pickID)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Тесты для PickService
// ============================================================================

func TestPickService_CreatePick_Success(t *testing.T) {
	// Arrange
	mockPickRepo := new(MockPickRepoForPickService)
	mockCache := new(MockCacheRepository)

	mockPickRepo.On("Create", mock.AnythingOfType("*entity.Pick")).Return(nil)
	mockCache.On("Delete", "picks:today").Return(nil)

	pickService := NewPickService(mockPickRepo, mockCache)

	// Act
	pick, err := pickService.CreatePick(&entity.Pick{
		Sport:    "NBA",
		Matchup:  "Lakers @ Celtics",
		PickTeam: "Celtics",
		GameTime: time.Now().Add(6 * time.Hour),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.PickStatusPending, pick.Status, "Новый пик всегда pending")
	mockPickRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPickService_CreatePick_MissingFields(t *testing.T) {
	pickService := NewPickService(new(MockPickRepoForPickService), new(MockCacheRepository))

	_, err := pickService.CreatePick(&entity.Pick{Sport: "NBA", GameTime: time.Now()})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPickService_CreatePick_MissingGameTime(t *testing.T) {
	pickService := NewPickService(new(MockPickRepoForPickService), new(MockCacheRepository))

	_, err := pickService.CreatePick(&entity.Pick{Matchup: "Lakers @ Celtics", PickTeam: "Celtics"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPickService_GetTodaysPicks_CacheMiss(t *testing.T) {
	// Arrange
	mockPickRepo := new(MockPickRepoForPickService)
	mockCache := new(MockCacheRepository)

	picks := []entity.Pick{{ID: 1, Matchup: "Lakers @ Celtics"}}
	mockCache.On("GetJSON", "picks:today", mock.Anything).Return(apperrors.ErrNotFound)
	mockPickRepo.On("ListByDay", mock.AnythingOfType("time.Time")).Return(picks, nil)
	mockCache.On("SetJSON", "picks:today", picks, 2*time.Minute).Return(nil)

	pickService := NewPickService(mockPickRepo, mockCache)

	// Act
	got, err := pickService.GetTodaysPicks()

	// Assert
	require.NoError(t, err)
	assert.Len(t, got, 1)
	mockPickRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestPickService_GetTodaysPicks_CacheHit(t *testing.T) {
	// Arrange
	mockPickRepo := new(MockPickRepoForPickService)
	mockCache := new(MockCacheRepository)

	mockCache.On("GetJSON", "picks:today", mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(1).(*[]entity.Pick)
		*dest = []entity.Pick{{ID: 2, Matchup: "Nets @ Knicks"}}
	}).Return(nil)

	pickService := NewPickService(mockPickRepo, mockCache)

	// Act
	got, err := pickService.GetTodaysPicks()

	// Assert
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
	// Репозиторий не должен вызываться при попадании в кеш
	mockPickRepo.AssertNotCalled(t, "ListByDay", mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestPickService_ListPicks_ClampsPagination(t *testing.T) {
	mockPickRepo := new(MockPickRepoForPickService)
	mockPickRepo.On("List", 100, 0).Return([]entity.Pick{}, int64(0), nil)

	pickService := NewPickService(mockPickRepo, new(MockCacheRepository))

	_, _, err := pickService.ListPicks(0, 500)

	require.NoError(t, err)
	mockPickRepo.AssertExpectations(t)
}
