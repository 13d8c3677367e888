package service

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// DecisionService записывает решения пользователей (ride/fade) по пикам
type DecisionService struct {
	decisionRepo repository.DecisionRepository
	pickRepo     repository.PickRepository
	statsRepo    repository.StatsRepository
	db           *gorm.DB
}

// NewDecisionService создает новый сервис решений
func NewDecisionService(
	decisionRepo repository.DecisionRepository,
	pickRepo repository.PickRepository,
	statsRepo repository.StatsRepository,
	db *gorm.DB,
) *DecisionService {
	return &DecisionService{
		decisionRepo: decisionRepo,
		pickRepo:     pickRepo,
		statsRepo:    statsRepo,
		db:           db,
	}
}

// RecordDecision записывает или меняет решение пользователя по пику.
// Повторная запись того же типа — no-op. Смена ride <-> fade допустима,
// пока решение не обработано: счетчики ride/fade перемещаются так, что
// ride_count + fade_count == total_picks сохраняется. Решение по уже
// сверенному пику или по обработанному решению отклоняется.
func (s *DecisionService) RecordDecision(userID, pickID uint, decisionType string) (*entity.UserDecision, error) {
	if !entity.IsValidDecisionType(decisionType) {
		return nil, fmt.Errorf("decision type must be %q or %q: %w",
			entity.DecisionRide, entity.DecisionFade, apperrors.ErrValidation)
	}

	pick, err := s.pickRepo.GetByID(pickID)
	if err != nil {
		return nil, err
	}
	if pick.IsGraded() {
		return nil, fmt.Errorf("pick %d is already graded: %w", pickID, apperrors.ErrConflict)
	}

	var decision *entity.UserDecision
	err = s.db.Transaction(func(tx *gorm.DB) error {
		d, txErr := s.recordDecisionTx(tx, userID, pickID, decisionType)
		if txErr != nil {
			return txErr
		}
		decision = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[DecisionService] Пользователь ID=%d записал решение %s по пику ID=%d", userID, decisionType, pickID)
	return decision, nil
}

// recordDecisionTx — транзакционный шаг записи решения: вставка нового или
// смена типа существующего плюс согласованное смещение счетчиков
func (s *DecisionService) recordDecisionTx(tx *gorm.DB, userID, pickID uint, decisionType string) (*entity.UserDecision, error) {
	existing, err := s.decisionRepo.GetByUserAndPickForUpdate(tx, userID, pickID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		newDecision := &entity.UserDecision{
			UserID:       userID,
			PickID:       pickID,
			DecisionType: decisionType,
		}
		if err := s.decisionRepo.CreateTx(tx, newDecision); err != nil {
			// Конкурентная вставка того же (user_id, pick_id) упирается
			// в уникальный индекс
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrConflict
			}
			return nil, fmt.Errorf("failed to create decision: %w", err)
		}

		if err := s.statsRepo.EnsureRowTx(tx, userID); err != nil {
			return nil, fmt.Errorf("failed to ensure stats row: %w", err)
		}
		deltaRide, deltaFade := countDeltas(decisionType)
		if err := s.statsRepo.AdjustCountsTx(tx, userID, 1, deltaRide, deltaFade); err != nil {
			return nil, fmt.Errorf("failed to adjust decision counts: %w", err)
		}

		return newDecision, nil
	}

	if existing.Processed {
		return nil, fmt.Errorf("decision %d is already processed: %w", existing.ID, apperrors.ErrConflict)
	}

	if existing.DecisionType == decisionType {
		// Повторная отправка того же решения
		return existing, nil
	}

	if err := s.decisionRepo.UpdateDecisionTypeTx(tx, existing.ID, decisionType); err != nil {
		return nil, fmt.Errorf("failed to update decision type: %w", err)
	}
	// Старый тип теряет единицу, новый получает; total не меняется
	var deltaRide, deltaFade int64 = -1, 1
	if decisionType == entity.DecisionRide {
		deltaRide, deltaFade = 1, -1
	}
	if err := s.statsRepo.AdjustCountsTx(tx, userID, 0, deltaRide, deltaFade); err != nil {
		return nil, fmt.Errorf("failed to adjust decision counts: %w", err)
	}

	existing.DecisionType = decisionType
	return existing, nil
}

// GetDecision возвращает решение пользователя по пику
func (s *DecisionService) GetDecision(userID, pickID uint) (*entity.UserDecision, error) {
	return s.decisionRepo.GetByUserAndPick(userID, pickID)
}

// countDeltas возвращает приращения ride/fade для нового решения данного типа
func countDeltas(decisionType string) (deltaRide, deltaFade int64) {
	if decisionType == entity.DecisionRide {
		return 1, 0
	}
	return 0, 1
}
