package dto

import "time"

// PickDTO представляет пик в ответах API
type PickDTO struct {
	ID         uint      `json:"id"`
	Sport      string    `json:"sport"`
	League     string    `json:"league"`
	Matchup    string    `json:"matchup"`
	PickTeam   string    `json:"pick_team"`
	Odds       string    `json:"odds,omitempty"`
	Confidence float64   `json:"confidence"`
	Analysis   string    `json:"analysis,omitempty"`
	GameTime   time.Time `json:"game_time"`
	Status     string    `json:"status"`
}

// PaginatedPicksResponse представляет пагинированный список пиков
type PaginatedPicksResponse struct {
	Picks   []*PickDTO `json:"picks"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}
