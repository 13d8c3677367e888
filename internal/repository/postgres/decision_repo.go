package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/domain/repository"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// DecisionRepo реализует repository.DecisionRepository
type DecisionRepo struct {
	db *gorm.DB
}

// NewDecisionRepo создает новый репозиторий решений
func NewDecisionRepo(db *gorm.DB) *DecisionRepo {
	return &DecisionRepo{db: db}
}

// GetByUserAndPick возвращает решение пользователя по конкретному пику
func (r *DecisionRepo) GetByUserAndPick(userID, pickID uint) (*entity.UserDecision, error) {
	var decision entity.UserDecision
	err := r.db.
		Where("user_id = ? AND pick_id = ?", userID, pickID).
		First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &decision, nil
}

// GetByUserAndPickForUpdate то же, но с блокировкой строки (FOR UPDATE)
// внутри переданной транзакции. Сериализует конкурентные записи решения.
func (r *DecisionRepo) GetByUserAndPickForUpdate(tx *gorm.DB, userID, pickID uint) (*entity.UserDecision, error) {
	var decision entity.UserDecision
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND pick_id = ?", userID, pickID).
		First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &decision, nil
}

// ListByUser возвращает решения пользователя, новые первыми
func (r *DecisionRepo) ListByUser(userID uint, limit, offset int) ([]entity.UserDecision, int64, error) {
	var decisions []entity.UserDecision
	var total int64

	if err := r.db.Model(&entity.UserDecision{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&decisions).Error
	if err != nil {
		return nil, 0, err
	}

	return decisions, total, nil
}

// ListByPick возвращает все решения по пику
func (r *DecisionRepo) ListByPick(pickID uint) ([]entity.UserDecision, error) {
	var decisions []entity.UserDecision
	err := r.db.
		Where("pick_id = ?", pickID).
		Order("created_at ASC, id ASC").
		Find(&decisions).Error
	return decisions, err
}

// ListProcessedOrdered возвращает все обработанные решения в хронологическом
// порядке обработки. Используется пересчетом статистики.
func (r *DecisionRepo) ListProcessedOrdered() ([]entity.UserDecision, error) {
	var decisions []entity.UserDecision
	err := r.db.
		Where("processed = true").
		Order("updated_at ASC, id ASC").
		Find(&decisions).Error
	return decisions, err
}

// ListPendingWithResults возвращает необработанные решения, для чьих пиков
// уже записан результат игры. Это рабочая очередь сверки.
func (r *DecisionRepo) ListPendingWithResults(limit int) ([]repository.PendingDecision, error) {
	var decisions []entity.UserDecision
	err := r.db.
		Joins("JOIN game_results ON game_results.pick_id = user_decisions.pick_id").
		Where("user_decisions.processed = false").
		Order("user_decisions.id ASC").
		Limit(limit).
		Find(&decisions).Error
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return nil, nil
	}

	pickIDs := make([]uint, 0, len(decisions))
	for _, d := range decisions {
		pickIDs = append(pickIDs, d.PickID)
	}

	var results []entity.GameResult
	if err := r.db.Where("pick_id IN ?", pickIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	resultByPick := make(map[uint]entity.GameResult, len(results))
	for _, res := range results {
		resultByPick[res.PickID] = res
	}

	pending := make([]repository.PendingDecision, 0, len(decisions))
	for _, d := range decisions {
		res, ok := resultByPick[d.PickID]
		if !ok {
			continue
		}
		pending = append(pending, repository.PendingDecision{Decision: d, Result: res})
	}
	return pending, nil
}

// CreateTx создает решение внутри транзакции
func (r *DecisionRepo) CreateTx(tx *gorm.DB, decision *entity.UserDecision) error {
	return tx.Create(decision).Error
}

// UpdateDecisionTypeTx перезаписывает тип решения (ride <-> fade)
// и сбрасывает processed
func (r *DecisionRepo) UpdateDecisionTypeTx(tx *gorm.DB, decisionID uint, decisionType string) error {
	return tx.Model(&entity.UserDecision{}).
		Where("id = ?", decisionID).
		Updates(map[string]interface{}{
			"decision_type": decisionType,
			"processed":     false,
		}).
		Error
}

// MarkProcessedTx помечает решение обработанным и записывает результат.
// Условие processed = false делает операцию идемпотентной: повторная
// сверка того же решения вернет false и не тронет статистику.
func (r *DecisionRepo) MarkProcessedTx(tx *gorm.DB, decisionID uint, result string) (bool, error) {
	res := tx.Model(&entity.UserDecision{}).
		Where("id = ? AND processed = false", decisionID).
		Updates(map[string]interface{}{
			"processed": true,
			"result":    result,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
