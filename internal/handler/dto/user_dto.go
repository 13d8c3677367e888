package dto

import "time"

// LeaderboardUserDTO представляет одного пользователя в лидерборде
type LeaderboardUserDTO struct {
	Rank           int     `json:"rank"`            // Место пользователя в рейтинге
	UserID         uint    `json:"user_id"`         // ID пользователя
	Username       string  `json:"username"`        // Имя пользователя
	ProfilePicture string  `json:"profile_picture"` // Аватар пользователя
	TotalPicks     int64   `json:"total_picks"`     // Всего записанных решений
	WinCount       int64   `json:"win_count"`       // Выигранные решения
	LossCount      int64   `json:"loss_count"`      // Проигранные решения
	CurrentStreak  int     `json:"current_streak"`  // Текущая серия (знак = направление)
	WinRate        float64 `json:"win_rate"`        // Доля побед среди win+loss
}

// PaginatedLeaderboardResponse представляет пагинированный ответ для лидерборда
type PaginatedLeaderboardResponse struct {
	Users   []*LeaderboardUserDTO `json:"users"`    // Список пользователей на странице
	Total   int64                 `json:"total"`    // Общее количество пользователей в лидерборде
	Page    int                   `json:"page"`     // Текущая страница
	PerPage int                   `json:"per_page"` // Количество пользователей на странице
}

// UserStatsResponse представляет статистику пользователя
type UserStatsResponse struct {
	UserID        uint     `json:"user_id"`
	TotalPicks    int64    `json:"total_picks"`
	RideCount     int64    `json:"ride_count"`
	FadeCount     int64    `json:"fade_count"`
	WinCount      int64    `json:"win_count"`
	LossCount     int64    `json:"loss_count"`
	WinRate       float64  `json:"win_rate"`
	CurrentStreak int      `json:"current_streak"`
	LongestStreak int      `json:"longest_streak"`
	LastResult    string   `json:"last_result,omitempty"`
	RecentResults []string `json:"recent_results"`
}

// DecisionDTO представляет решение пользователя в ответах API
type DecisionDTO struct {
	ID           uint      `json:"id"`
	PickID       uint      `json:"pick_id"`
	DecisionType string    `json:"decision_type"`
	Processed    bool      `json:"processed"`
	Result       string    `json:"result,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaginatedDecisionsResponse представляет пагинированный список решений
type PaginatedDecisionsResponse struct {
	Decisions []*DecisionDTO `json:"decisions"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PerPage   int            `json:"per_page"`
}
