package repository

import (
	"github.com/garyai/picks-api/internal/domain/entity"
)

// GameResultRepository определяет методы для работы с результатами игр.
// Результаты неизменяемы: повторная запись для того же пика игнорируется.
type GameResultRepository interface {
	// Insert сохраняет результат. Возвращает false без ошибки, если для
	// этого пика результат уже записан (ON CONFLICT DO NOTHING).
	Insert(result *entity.GameResult) (bool, error)
	GetByPickID(pickID uint) (*entity.GameResult, error)
	List(limit, offset int) ([]entity.GameResult, int64, error)
}
