package grader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyai/picks-api/internal/domain/entity"
)

func TestDecisionOutcome_Table(t *testing.T) {
	tests := []struct {
		name         string
		decisionType string
		gameResult   string
		want         string
	}{
		{"ride с выигравшим пиком", entity.DecisionRide, entity.OutcomeWin, entity.OutcomeWin},
		{"ride с проигравшим пиком", entity.DecisionRide, entity.OutcomeLoss, entity.OutcomeLoss},
		{"fade против выигравшего пика", entity.DecisionFade, entity.OutcomeWin, entity.OutcomeLoss},
		{"fade против проигравшего пика", entity.DecisionFade, entity.OutcomeLoss, entity.OutcomeWin},
		{"ride при push", entity.DecisionRide, entity.OutcomePush, entity.OutcomePush},
		{"fade при push", entity.DecisionFade, entity.OutcomePush, entity.OutcomePush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecisionOutcome(tt.decisionType, tt.gameResult)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecisionOutcome_InvalidDecisionType(t *testing.T) {
	_, err := DecisionOutcome("hedge", entity.OutcomeWin)
	assert.Error(t, err, "Неизвестный тип решения должен возвращать ошибку")
}

func TestDecisionOutcome_InvalidGameResult(t *testing.T) {
	_, err := DecisionOutcome(entity.DecisionRide, "draw")
	assert.Error(t, err, "Неизвестный результат игры должен возвращать ошибку")
}
