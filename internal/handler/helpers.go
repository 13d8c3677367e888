package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyai/picks-api/internal/domain/entity"
	"github.com/garyai/picks-api/internal/handler/dto"
	apperrors "github.com/garyai/picks-api/internal/pkg/errors"
)

// handleServiceError транслирует ошибки сервисного слоя в HTTP-ответы
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID возвращает ID аутентифицированного пользователя из контекста
func currentUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

// toPickDTO преобразует пик в DTO
func toPickDTO(pick *entity.Pick) *dto.PickDTO {
	return &dto.PickDTO{
		ID:         pick.ID,
		Sport:      pick.Sport,
		League:     pick.League,
		Matchup:    pick.Matchup,
		PickTeam:   pick.PickTeam,
		Odds:       pick.Odds,
		Confidence: pick.Confidence,
		Analysis:   pick.Analysis,
		GameTime:   pick.GameTime,
		Status:     pick.Status,
	}
}

// toDecisionDTO преобразует решение в DTO
func toDecisionDTO(decision *entity.UserDecision) *dto.DecisionDTO {
	d := &dto.DecisionDTO{
		ID:           decision.ID,
		PickID:       decision.PickID,
		DecisionType: decision.DecisionType,
		Processed:    decision.Processed,
		CreatedAt:    decision.CreatedAt,
	}
	if decision.Result != nil {
		d.Result = *decision.Result
	}
	return d
}

// toStatsResponse преобразует статистику в DTO
func toStatsResponse(stats *entity.UserStats) *dto.UserStatsResponse {
	recent := make([]string, len(stats.RecentResults))
	copy(recent, stats.RecentResults)
	return &dto.UserStatsResponse{
		UserID:        stats.UserID,
		TotalPicks:    stats.TotalPicks,
		RideCount:     stats.RideCount,
		FadeCount:     stats.FadeCount,
		WinCount:      stats.WinCount,
		LossCount:     stats.LossCount,
		WinRate:       stats.WinRate(),
		CurrentStreak: stats.CurrentStreak,
		LongestStreak: stats.LongestStreak,
		LastResult:    stats.LastResult,
		RecentResults: recent,
	}
}
