package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

const (
	todaysPicksCacheKey = "picks:today"
	todaysPicksCacheTTL = 2 * time.Minute
)

// PickService предоставляет методы для работы с пиками
type PickService struct {
	pickRepo  repository.PickRepository
	cacheRepo repository.CacheRepository
}

// NewPickService создает новый сервис пиков
func NewPickService(pickRepo repository.PickRepository, cacheRepo repository.CacheRepository) *PickService {
	return &PickService{
		pickRepo:  pickRepo,
		cacheRepo: cacheRepo,
	}
}

// CreatePick создает новый пик
func (s *PickService) CreatePick(pick *entity.Pick) (*entity.Pick, error) {
	if pick.Matchup == "" || pick.PickTeam == "" {
		return nil, fmt.Errorf("matchup and pick_team are required: %w", apperrors.ErrValidation)
	}
	if pick.GameTime.IsZero() {
		return nil, fmt.Errorf("game_time is required: %w", apperrors.ErrValidation)
	}

	pick.Status = entity.PickStatusPending

	if err := s.pickRepo.Create(pick); err != nil {
		return nil, fmt.Errorf("failed to create pick: %w", err)
	}

	s.invalidateTodayCache()
	return pick, nil
}

// GetPickByID возвращает пик по ID
func (s *PickService) GetPickByID(pickID uint) (*entity.Pick, error) {
	return s.pickRepo.GetByID(pickID)
}

// GetTodaysPicks возвращает пики на сегодня (UTC). Результат кешируется
// в Redis: это самый горячий запрос приложения.
func (s *PickService) GetTodaysPicks() ([]entity.Pick, error) {
	var cached []entity.Pick
	err := s.cacheRepo.GetJSON(todaysPicksCacheKey, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[PickService] Ошибка чтения кеша пиков: %v", err)
	}

	picks, err := s.pickRepo.ListByDay(time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(todaysPicksCacheKey, picks, todaysPicksCacheTTL); err != nil {
		log.Printf("[PickService] Ошибка записи кеша пиков: %v", err)
	}
	return picks, nil
}

// ListPicks возвращает пики с пагинацией
func (s *PickService) ListPicks(page, pageSize int) ([]entity.Pick, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.pickRepo.List(pageSize, offset)
}

func (s *PickService) invalidateTodayCache() {
	if err := s.cacheRepo.Delete(todaysPicksCacheKey); err != nil {
		log.Printf("[PickService] Ошибка инвалидации кеша пиков: %v", err)
	}
}
