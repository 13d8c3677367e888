package repository

import (
	"gorm.io/gorm"

	"github.com/garyai/picks-api/internal/domain/entity"
)

// LeaderboardEntry представляет строку лидерборда (users LEFT JOIN user_stats)
type LeaderboardEntry struct {
	UserID         uint    `json:"user_id"`
	Username       string  `json:"username"`
	ProfilePicture string  `json:"profile_picture"`
	TotalPicks     int64   `json:"total_picks"`
	WinCount       int64   `json:"win_count"`
	LossCount      int64   `json:"loss_count"`
	CurrentStreak  int     `json:"current_streak"`
	WinRate        float64 `json:"win_rate"`
}

// StatsRepository определяет методы для работы с накопительной статистикой.
// Все мутации счетчиков одного пользователя сериализуются: либо одиночным
// относительным UPDATE, либо транзакцией с блокировкой строки.
type StatsRepository interface {
	GetByUserID(userID uint) (*entity.UserStats, error)

	// EnsureRowTx создает нулевую строку статистики, если ее еще нет
	EnsureRowTx(tx *gorm.DB, userID uint) error
	// AdjustCountsTx атомарно сдвигает счетчики решений относительными
	// дельтами (total_picks, ride_count, fade_count)
	AdjustCountsTx(tx *gorm.DB, userID uint, deltaTotal, deltaRide, deltaFade int64) error
	// ApplyOutcomeTx применяет сверенный исход по правилу серий из
	// entity.UserStats.ApplyOutcome под блокировкой строки (FOR UPDATE).
	// Возвращает обновленную статистику.
	ApplyOutcomeTx(tx *gorm.DB, userID uint, isWin bool) (*entity.UserStats, error)

	// GetLeaderboard возвращает страницу лидерборда и общее число пользователей.
	// Сортировка: win rate по убыванию (0 при отсутствии сверенных решений),
	// затем total_picks по убыванию, затем user_id для стабильности.
	GetLeaderboard(limit, offset int) ([]LeaderboardEntry, int64, error)
}
