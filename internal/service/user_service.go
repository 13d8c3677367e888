package service

import (
	"errors"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo     repository.UserRepository
	statsRepo    repository.StatsRepository
	decisionRepo repository.DecisionRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	decisionRepo repository.DecisionRepository,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		decisionRepo: decisionRepo,
	}
}

// GetUserByID возвращает пользователя по ID
func (s *UserService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет профиль пользователя
func (s *UserService) UpdateProfile(userID uint, username, profilePicture string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		// Имя должно остаться уникальным
		if _, err := s.userRepo.GetByUsername(username); err == nil {
			return nil, apperrors.ErrConflict
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		user.Username = username
	}
	if profilePicture != "" {
		user.ProfilePicture = profilePicture
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetStats возвращает статистику пользователя. Пользователь без единого
// обработанного решения получает нулевую статистику, а не ошибку.
func (s *UserService) GetStats(userID uint) (*entity.UserStats, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &entity.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return stats, nil
}

// ListDecisions возвращает решения пользователя с пагинацией
func (s *UserService) ListDecisions(userID uint, page, pageSize int) ([]entity.UserDecision, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.decisionRepo.ListByUser(userID, pageSize, offset)
}
