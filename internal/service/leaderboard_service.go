package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/garyai/picks-api/internal/domain/repository"
	"github.com/garyai/picks-api/internal/handler/dto"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

const (
	leaderboardCacheKeyPrefix = "leaderboard:page:"
	leaderboardCacheTTL       = 30 * time.Second
)

// LeaderboardService строит таблицу лидеров по статистике решений
type LeaderboardService struct {
	statsRepo repository.StatsRepository
	cacheRepo repository.CacheRepository
}

// NewLeaderboardService создает новый сервис лидерборда
func NewLeaderboardService(statsRepo repository.StatsRepository, cacheRepo repository.CacheRepository) *LeaderboardService {
	return &LeaderboardService{
		statsRepo: statsRepo,
		cacheRepo: cacheRepo,
	}
}

// GetLeaderboard возвращает пагинированную таблицу лидеров.
// Первые страницы горячие, поэтому кешируются с коротким TTL:
// устаревание на полминуты после сверки допустимо.
func (s *LeaderboardService) GetLeaderboard(page, pageSize int) (*dto.PaginatedLeaderboardResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}

	cacheKey := fmt.Sprintf("%s%d:%d", leaderboardCacheKeyPrefix, page, pageSize)
	var cached dto.PaginatedLeaderboardResponse
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[LeaderboardService] Ошибка чтения кеша лидерборда: %v", err)
	}

	offset := (page - 1) * pageSize
	entries, total, err := s.statsRepo.GetLeaderboard(pageSize, offset)
	if err != nil {
		log.Printf("[LeaderboardService] Ошибка при получении лидерборда из репозитория: %v", err)
		return nil, err
	}

	userDTOs := make([]*dto.LeaderboardUserDTO, len(entries))
	for i, entry := range entries {
		userDTOs[i] = &dto.LeaderboardUserDTO{
			Rank:           offset + i + 1,
			UserID:         entry.UserID,
			Username:       entry.Username,
			ProfilePicture: entry.ProfilePicture,
			TotalPicks:     entry.TotalPicks,
			WinCount:       entry.WinCount,
			LossCount:      entry.LossCount,
			CurrentStreak:  entry.CurrentStreak,
			WinRate:        entry.WinRate,
		}
	}

	response := &dto.PaginatedLeaderboardResponse{
		Users:   userDTOs,
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	}

	if err := s.cacheRepo.SetJSON(cacheKey, response, leaderboardCacheTTL); err != nil {
		log.Printf("[LeaderboardService] Ошибка записи кеша лидерборда: %v", err)
	}

	return response, nil
}
