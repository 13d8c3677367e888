package grader

import (
	"fmt"

	"github.com/garyai/picks-api/internal/domain/entity"
)

// DecisionOutcome вычисляет исход решения по результату игры.
// Пользователь, поехавший с пиком (ride), выигрывает вместе с пиком;
// пользователь, поставивший против (fade), выигрывает, когда пик проиграл.
// Push нейтрален: решение закрывается без влияния на статистику.
//
//	ride + win  -> win     fade + win  -> loss
//	ride + loss -> loss    fade + loss -> win
//	ride/fade + push -> push
func DecisionOutcome(decisionType, gameResult string) (string, error) {
	if !entity.IsValidDecisionType(decisionType) {
		return "", fmt.Errorf("unknown decision type %q", decisionType)
	}

	switch gameResult {
	case entity.OutcomePush:
		return entity.OutcomePush, nil
	case entity.OutcomeWin:
		if decisionType == entity.DecisionRide {
			return entity.OutcomeWin, nil
		}
		return entity.OutcomeLoss, nil
	case entity.OutcomeLoss:
		if decisionType == entity.DecisionRide {
			return entity.OutcomeLoss, nil
		}
		return entity.OutcomeWin, nil
	default:
		return "", fmt.Errorf("unknown game result %q", gameResult)
	}
}
