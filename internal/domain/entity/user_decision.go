package entity

import (
	"time"
)

// Типы решений пользователя по пику
const (
	// DecisionRide - ставка вместе с пиком платформы
	DecisionRide = "ride"

	// DecisionFade - ставка против пика платформы
	DecisionFade = "fade"
)

// Исходы с точки зрения пользователя (и результаты игр с точки зрения пика)
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomePush = "push"
)

// UserDecision представляет решение пользователя по конкретному пику.
// На пару (user_id, pick_id) существует не более одной записи: повторное
// решение до сверки перезаписывает прежнее, а не создает дубликат.
type UserDecision struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"not null;uniqueIndex:idx_user_decisions_user_pick" json:"user_id"`
	PickID       uint    `gorm:"not null;uniqueIndex:idx_user_decisions_user_pick;index" json:"pick_id"`
	DecisionType string  `gorm:"size:10;not null" json:"decision_type"` // "ride" или "fade"
	Processed    bool    `gorm:"not null;default:false;index" json:"processed"`
	Result       *string `gorm:"size:10" json:"result"` // "win" | "loss" | "push", NULL пока не сверено

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserDecision) TableName() string {
	return "user_decisions"
}

// IsValidDecisionType проверяет, что тип решения входит в допустимое множество
func IsValidDecisionType(decisionType string) bool {
	return decisionType == DecisionRide || decisionType == DecisionFade
}

// IsValidGameResult проверяет значение результата игры
func IsValidGameResult(result string) bool {
	return result == OutcomeWin || result == OutcomeLoss || result == OutcomePush
}
