package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
)

// PickRepository определяет методы для работы с пиками платформы
type PickRepository interface {
	Create(pick *entity.Pick) error
	GetByID(id uint) (*entity.Pick, error)
	GetByExternalID(externalID string) (*entity.Pick, error)
	// ListByDay возвращает пики, чьи игры начинаются в указанные сутки (UTC)
	ListByDay(day time.Time) ([]entity.Pick, error)
	List(limit, offset int) ([]entity.Pick, int64, error)
	// ListPendingStartedBefore возвращает несверенные пики, чьи игры уже
	// должны были завершиться - кандидаты на опрос фида результатов
	ListPendingStartedBefore(cutoff time.Time) ([]entity.Pick, error)
	// MarkGraded переводит пик в статус graded внутри переданной транзакции
	MarkGraded(tx *gorm.DB, pickID uint) error
}
