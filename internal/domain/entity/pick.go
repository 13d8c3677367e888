package entity

import (
	"time"
)

// Статусы пика
const (
	// PickStatusPending - результат игры еще не известен
	PickStatusPending = "pending"

	// PickStatusGraded - результат получен, решения по пику сверены
	PickStatusGraded = "graded"
)

// Pick представляет ежедневный рекомендованный пик платформы,
// на который пользователи делают ride/fade решения
type Pick struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Sport      string    `gorm:"size:30;not null;index" json:"sport"` // "NBA", "MLB", "NFL" и т.д.
	League     string    `gorm:"size:50;not null;default:''" json:"league"`
	Matchup    string    `gorm:"size:200;not null" json:"matchup"` // "Lakers @ Celtics"
	PickTeam   string    `gorm:"size:100;not null" json:"pick_team"`
	Odds       string    `gorm:"size:20;not null;default:''" json:"odds"` // американский формат, например "-110"
	Confidence float64   `gorm:"not null;default:0" json:"confidence"`    // 0..1, уверенность модели
	Analysis   string    `gorm:"type:text;not null;default:''" json:"analysis"`
	GameTime   time.Time `gorm:"not null;index" json:"game_time"`
	Status     string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ExternalID string    `gorm:"size:64;not null;default:'';index" json:"external_id"` // ID события во внешнем фиде результатов

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Pick) TableName() string {
	return "picks"
}

// IsGraded возвращает true, если по пику уже получен результат
func (p *Pick) IsGraded() bool {
	return p.Status == PickStatusGraded
}
