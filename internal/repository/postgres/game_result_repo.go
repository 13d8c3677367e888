package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/garyai/picks-api/internal/domain/entity"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// GameResultRepo реализует repository.GameResultRepository
type GameResultRepo struct {
	db *gorm.DB
}

// NewGameResultRepo создает новый репозиторий результатов игр
func NewGameResultRepo(db *gorm.DB) *GameResultRepo {
	return &GameResultRepo{db: db}
}

// Insert записывает результат игры. При повторной записи для того же пика
// срабатывает ON CONFLICT DO NOTHING: возвращается false, первый результат
// остается неизменным.
func (r *GameResultRepo) Insert(result *entity.GameResult) (bool, error) {
	res := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pick_id"}},
			DoNothing: true,
		}).
		Create(result)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetByPickID возвращает результат игры по ID пика
func (r *GameResultRepo) GetByPickID(pickID uint) (*entity.GameResult, error) {
	var result entity.GameResult
	err := r.db.Where("pick_id = ?", pickID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// List возвращает результаты с пагинацией, новые первыми
func (r *GameResultRepo) List(limit, offset int) ([]entity.GameResult, int64, error) {
	var results []entity.GameResult
	var total int64

	if err := r.db.Model(&entity.GameResult{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}
