package repositories

import (
	"encoding/json"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-runner/models"
)

func TestNormalizeArrays_EmptyTextArrayKeepsEmptySlice(t *testing.T) {
	saved := &models.TournamentState{
		Participants:       []string{"A", "B"},
		CurrentRound:       []string{},
		NextRound:          []models.Group{{"A", "B"}},
		RoundDisplay:       "Round 1 (2 participants):\n",
		CurrentRoundNumber: 1,
	}

	var loaded models.TournamentState
	require.NoError(t, pq.Array(&loaded.Participants).Scan([]byte(`{A,B}`)))
	require.NoError(t, pq.Array(&loaded.CurrentRound).Scan([]byte(`{}`)))
	loaded.NextRound = saved.NextRound
	loaded.RoundDisplay = saved.RoundDisplay
	loaded.CurrentRoundNumber = saved.CurrentRoundNumber

	normalizeArrays(&loaded)
	assert.Equal(t, saved, &loaded)

	js, err := json.Marshal(&loaded)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"current_round":[]`)
}

func TestNormalizeArrays_KeepsValues(t *testing.T) {
	state := models.TournamentState{CurrentRound: []string{"A"}}
	normalizeArrays(&state)
	assert.Equal(t, []string{"A"}, state.CurrentRound)
	assert.Equal(t, []string{}, state.Participants)
	assert.Equal(t, []models.Group{}, state.NextRound)
}
