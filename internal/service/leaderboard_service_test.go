package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	"github.com/garyai/picks-api/internal/handler/dto"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// ============================================================================
// Моки для тестирования LeaderboardService
// ============================================================================

// MockStatsRepository реализует repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetByUserID(userID uint) (*entity.UserStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserStats), args.Error(1)
}

func (m *MockStatsRepository) EnsureRowTx(tx *gorm.DB, userID uint) error {
	args := m.Called(tx, userID)
	return args.Error(0)
}

func (m *MockStatsRepository) AdjustCountsTx(tx *gorm.DB, userID uint, deltaTotal, deltaRide, deltaFade int64) error {
	args := m.Called(tx, userID, deltaTotal, deltaRide, deltaFade)
	return args.Error(0)
}

func (m *MockStatsRepository) ApplyOutcomeTx(tx *gorm.DB, userID uint, isWin bool) (*entity.UserStats, error) {
	args := m.Called(tx, userID, isWin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserStats), args.Error(1)
}

func (m *MockStatsRepository) GetLeaderboard(limit, offset int) ([]repository.LeaderboardEntry, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]repository.LeaderboardEntry), args.Get(1).(int64), args.Error(2)
}

// ============================================================================
// Тесты для LeaderboardService
// ============================================================================

func TestLeaderboardService_GetLeaderboard_RanksFollowOffset(t *testing.T) {
	// Arrange
	mockStatsRepo := new(MockStatsRepository)
	mockCache := new(MockCacheRepository)

	entries := []repository.LeaderboardEntry{
		{UserID: 11, Username: "alpha", TotalPicks: 20, WinCount: 15, LossCount: 5, WinRate: 0.75},
		{UserID: 12, Username: "beta", TotalPicks: 10, WinCount: 6, LossCount: 4, WinRate: 0.6},
	}

	mockCache.On("GetJSON", "leaderboard:page:3:10", mock.Anything).Return(apperrors.ErrNotFound)
	mockStatsRepo.On("GetLeaderboard", 10, 20).Return(entries, int64(42), nil)
	mockCache.On("SetJSON", "leaderboard:page:3:10", mock.Anything, 30*time.Second).Return(nil)

	leaderboardService := NewLeaderboardService(mockStatsRepo, mockCache)

	// Act
	response, err := leaderboardService.GetLeaderboard(3, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, response.Users, 2)
	assert.Equal(t, 21, response.Users[0].Rank, "Ранг должен продолжать нумерацию предыдущих страниц")
	assert.Equal(t, 22, response.Users[1].Rank)
	assert.Equal(t, int64(42), response.Total)
	assert.Equal(t, 3, response.Page)
	mockStatsRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestLeaderboardService_GetLeaderboard_CacheHit(t *testing.T) {
	// Arrange
	mockStatsRepo := new(MockStatsRepository)
	mockCache := new(MockCacheRepository)

	mockCache.On("GetJSON", "leaderboard:page:1:10", mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(1).(*dto.PaginatedLeaderboardResponse)
		dest.Total = 7
		dest.Page = 1
		dest.PerPage = 10
	}).Return(nil)

	leaderboardService := NewLeaderboardService(mockStatsRepo, mockCache)

	// Act
	response, err := leaderboardService.GetLeaderboard(1, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), response.Total)
	mockStatsRepo.AssertNotCalled(t, "GetLeaderboard", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestLeaderboardService_GetLeaderboard_ClampsPagination(t *testing.T) {
	mockStatsRepo := new(MockStatsRepository)
	mockCache := new(MockCacheRepository)

	mockCache.On("GetJSON", "leaderboard:page:1:100", mock.Anything).Return(apperrors.ErrNotFound)
	mockStatsRepo.On("GetLeaderboard", 100, 0).Return([]repository.LeaderboardEntry{}, int64(0), nil)
	mockCache.On("SetJSON", "leaderboard:page:1:100", mock.Anything, 30*time.Second).Return(nil)

	leaderboardService := NewLeaderboardService(mockStatsRepo, mockCache)

	_, err := leaderboardService.GetLeaderboard(-5, 1000)

	require.NoError(t, err)
	mockStatsRepo.AssertExpectations(t)
}
