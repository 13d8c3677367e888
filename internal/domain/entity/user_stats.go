package entity

import (
	"time"

	"github.com/lib/pq"
)

// RecentResultsLimit ограничивает длину списка последних исходов
const RecentResultsLimit = 6

// UserStats хранит накопительные счетчики решений пользователя.
// Строка создается лениво при первом решении и далее только мутируется.
type UserStats struct {
	UserID     uint  `gorm:"primaryKey" json:"user_id"`
	TotalPicks int64 `gorm:"not null;default:0" json:"total_picks"`
	RideCount  int64 `gorm:"not null;default:0" json:"ride_count"`
	FadeCount  int64 `gorm:"not null;default:0" json:"fade_count"`
	WinCount   int64 `gorm:"not null;default:0" json:"win_count"`
	LossCount  int64 `gorm:"not null;default:0" json:"loss_count"`

	// CurrentStreak - знаковая серия: положительная = подряд побед,
	// отрицательная = подряд поражений, модуль = длина серии
	CurrentStreak int `gorm:"not null;default:0" json:"current_streak"`

	// LongestStreak считается только по победным сериям
	LongestStreak int `gorm:"not null;default:0" json:"longest_streak"`

	LastResult string `gorm:"size:10;not null;default:''" json:"last_result"` // "win" | "loss" | ""

	// RecentResults - последние исходы, новые в начале, максимум 6 элементов
	RecentResults pq.StringArray `gorm:"type:text[]" json:"recent_results"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserStats) TableName() string {
	return "user_stats"
}

// ApplyOutcome применяет один сверенный исход к счетчикам.
// Правило серий: победа продолжает победную серию или начинает новую (+1),
// поражение продолжает серию поражений или начинает новую (-1).
// LongestStreak обновляется только победами.
// Вызывающий обязан сериализовать вызовы по пользователю
// (репозиторий делает это транзакцией с блокировкой строки).
func (s *UserStats) ApplyOutcome(isWin bool) {
	if isWin {
		s.WinCount++
		if s.LastResult == OutcomeWin {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.LastResult = OutcomeWin
		s.pushRecent("W")
	} else {
		s.LossCount++
		if s.LastResult == OutcomeLoss {
			s.CurrentStreak--
		} else {
			s.CurrentStreak = -1
		}
		s.LastResult = OutcomeLoss
		s.pushRecent("L")
	}
}

// pushRecent добавляет отметку исхода в начало списка и обрезает его до лимита
func (s *UserStats) pushRecent(mark string) {
	recent := make(pq.StringArray, 0, len(s.RecentResults)+1)
	recent = append(recent, mark)
	recent = append(recent, s.RecentResults...)
	if len(recent) > RecentResultsLimit {
		recent = recent[:RecentResultsLimit]
	}
	s.RecentResults = recent
}

// WinRate возвращает долю побед среди сверенных решений (0 при их отсутствии)
func (s *UserStats) WinRate() float64 {
	graded := s.WinCount + s.LossCount
	if graded == 0 {
		return 0
	}
	return float64(s.WinCount) / float64(graded)
}
