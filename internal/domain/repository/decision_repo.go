package repository

import (
	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
)

// PendingDecision объединяет несверенное решение с уже доступным результатом игры
type PendingDecision struct {
	Decision entity.UserDecision
	Result   entity.GameResult
}

// DecisionRepository определяет методы для работы с решениями пользователей.
// Методы с суффиксом Tx выполняются внутри переданной транзакции: рекордер и
// сверка объединяют запись решения и обновление счетчиков в одну единицу работы.
type DecisionRepository interface {
	GetByUserAndPick(userID, pickID uint) (*entity.UserDecision, error)
	ListByUser(userID uint, limit, offset int) ([]entity.UserDecision, int64, error)
	ListByPick(pickID uint) ([]entity.UserDecision, error)
	// ListProcessedOrdered возвращает все сверенные решения в порядке сверки
	// (для пересборки статистики)
	ListProcessedOrdered() ([]entity.UserDecision, error)
	// ListPendingWithResults возвращает несверенные решения, для которых уже
	// есть результат игры. Решения без результата в выборку не попадают и
	// будут повторно рассмотрены при следующем проходе.
	ListPendingWithResults(limit int) ([]PendingDecision, error)

	// GetByUserAndPickForUpdate читает решение с блокировкой строки
	GetByUserAndPickForUpdate(tx *gorm.DB, userID, pickID uint) (*entity.UserDecision, error)
	CreateTx(tx *gorm.DB, decision *entity.UserDecision) error
	// UpdateDecisionTypeTx перезаписывает тип решения и сбрасывает processed
	UpdateDecisionTypeTx(tx *gorm.DB, decisionID uint, decisionType string) error
	// MarkProcessedTx помечает решение сверенным с заданным исходом.
	// Условие processed=false входит в сам UPDATE: возвращает false, если
	// решение уже было сверено кем-то другим (защита идемпотентности).
	MarkProcessedTx(tx *gorm.DB, decisionID uint, result string) (bool, error)
}
