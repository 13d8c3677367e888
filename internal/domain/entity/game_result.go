package entity

import (
	"time"
)

// GameResult представляет итог игры с точки зрения рекомендованного пика.
// Записи поступают из внешнего фида (или от администратора) и после
// сохранения не изменяются.
type GameResult struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PickID     uint   `gorm:"not null;uniqueIndex" json:"pick_id"`
	Result     string `gorm:"size:10;not null" json:"result"` // "win" | "loss" | "push" - для команды пика
	Matchup    string `gorm:"size:200;not null;default:''" json:"matchup"`
	FinalScore string `gorm:"size:50;not null;default:''" json:"final_score"` // "110-104"

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (GameResult) TableName() string {
	return "game_results"
}
