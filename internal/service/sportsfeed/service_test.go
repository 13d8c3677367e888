package sportsfeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyai/picks-api/internal/domain/entity"
)

func TestGameResultForPick_Table(t *testing.T) {
	game := Game{
		HomeTeam:  "Celtics",
		AwayTeam:  "Lakers",
		HomeScore: 110,
		AwayScore: 104,
	}

	tests := []struct {
		name     string
		pickTeam string
		want     string
	}{
		{"пик на победившую домашнюю команду", "Celtics", entity.OutcomeWin},
		{"пик на проигравшую гостевую команду", "Lakers", entity.OutcomeLoss},
		{"регистр и пробелы не влияют на сопоставление", "  lakers ", entity.OutcomeLoss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pick := &entity.Pick{PickTeam: tt.pickTeam}
			got, err := gameResultForPick(pick, game)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGameResultForPick_TieGivesPush(t *testing.T) {
	game := Game{HomeTeam: "Chiefs", AwayTeam: "Bills", HomeScore: 24, AwayScore: 24}
	pick := &entity.Pick{PickTeam: "Chiefs"}

	got, err := gameResultForPick(pick, game)

	require.NoError(t, err)
	assert.Equal(t, entity.OutcomePush, got, "Равный счет должен давать push")
}

func TestGameResultForPick_UnknownTeam(t *testing.T) {
	game := Game{HomeTeam: "Celtics", AwayTeam: "Lakers", HomeScore: 100, AwayScore: 90}
	pick := &entity.Pick{PickTeam: "Warriors"}

	_, err := gameResultForPick(pick, game)

	assert.Error(t, err, "Команда пика, не участвующая в игре, должна давать ошибку")
}
