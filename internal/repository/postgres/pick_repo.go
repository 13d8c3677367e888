package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// PickRepo реализует repository.PickRepository
type PickRepo struct {
	db *gorm.DB
}

// NewPickRepo создает новый репозиторий пиков
func NewPickRepo(db *gorm.DB) *PickRepo {
	return &PickRepo{db: db}
}

// Create создает новый пик
func (r *PickRepo) Create(pick *entity.Pick) error {
	return r.db.Create(pick).Error
}

// GetByID возвращает пик по ID
func (r *PickRepo) GetByID(id uint) (*entity.Pick, error) {
	var pick entity.Pick
	err := r.db.First(&pick, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pick, nil
}

// GetByExternalID возвращает пик по ID события во внешнем фиде
func (r *PickRepo) GetByExternalID(externalID string) (*entity.Pick, error) {
	var pick entity.Pick
	err := r.db.Where("external_id = ?", externalID).First(&pick).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pick, nil
}

// ListByDay возвращает пики с началом игры в указанные сутки (UTC)
func (r *PickRepo) ListByDay(day time.Time) ([]entity.Pick, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var picks []entity.Pick
	err := r.db.
		Where("game_time >= ? AND game_time < ?", dayStart, dayEnd).
		Order("game_time ASC, id ASC").
		Find(&picks).Error
	return picks, err
}

// List возвращает пики с пагинацией и общим количеством, новые первыми
func (r *PickRepo) List(limit, offset int) ([]entity.Pick, int64, error) {
	var picks []entity.Pick
	var total int64

	if err := r.db.Model(&entity.Pick{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Order("game_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&picks).Error
	if err != nil {
		return nil, 0, err
	}

	return picks, total, nil
}

// ListPendingStartedBefore возвращает несверенные пики, чьи игры начались до cutoff
func (r *PickRepo) ListPendingStartedBefore(cutoff time.Time) ([]entity.Pick, error) {
	var picks []entity.Pick
	err := r.db.
		Where("status = ? AND game_time < ?", entity.PickStatusPending, cutoff).
		Order("game_time ASC").
		Find(&picks).Error
	return picks, err
}

// MarkGraded переводит пик в статус graded внутри транзакции
func (r *PickRepo) MarkGraded(tx *gorm.DB, pickID uint) error {
	return tx.Model(&entity.Pick{}).
		Where("id = ?", pickID).
		Update("status", entity.PickStatusGraded).
		Error
}
