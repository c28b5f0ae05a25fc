package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dosada05/tournament-runner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStateRepo(t *testing.T) (StateRepository, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "tournaments")
	repo, err := NewFileStateRepository(dir)
	require.NoError(t, err)
	return repo, dir
}

func TestFileStateRepository_LoadMissingIsEmpty(t *testing.T) {
	repo, _ := newTestStateRepo(t)

	state, err := repo.LoadCurrent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFileStateRepository_RoundTrip(t *testing.T) {
	repo, dir := newTestStateRepo(t)
	ctx := context.Background()

	want := &models.TournamentState{
		Participants: []string{"Анна", "Bob", "Cid", "Dee", "Eve"},
		CurrentRound: []string{},
		NextRound: []models.Group{
			{"Анна", "Bob", "Cid"},
			{"Dee", "Eve"},
		},
		Assignments: []models.Assignment{
			{Group: models.Group{"Анна", "Bob", "Cid"}, Requirement: "sing"},
			{Group: models.Group{"Dee", "Eve"}, Requirement: "dance"},
		},
		RoundDisplay:       "Round 1 (5 participants):\n",
		CurrentRoundNumber: 1,
	}

	require.NoError(t, repo.SaveCurrent(ctx, want))
	assert.FileExists(t, filepath.Join(dir, "current_tournament.json"))

	got, err := repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// saving the reloaded value again must not change it
	require.NoError(t, repo.SaveCurrent(ctx, got))
	again, err := repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestFileStateRepository_CorruptedState(t *testing.T) {
	repo, dir := newTestStateRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "current_tournament.json"), []byte("{not json"), 0o644))

	_, err := repo.LoadCurrent(context.Background())
	assert.ErrorIs(t, err, ErrStateCorrupted)
}

func TestFileStateRepository_DeleteCurrent(t *testing.T) {
	repo, _ := newTestStateRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.DeleteCurrent(ctx), "deleting a missing record is not an error")
	require.NoError(t, repo.SaveCurrent(ctx, &models.TournamentState{CurrentRoundNumber: 1}))
	require.NoError(t, repo.DeleteCurrent(ctx))

	state, err := repo.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestFileStateRepository_ReportsAreNumberedSequentially(t *testing.T) {
	repo, dir := newTestStateRepo(t)
	ctx := context.Background()

	first, err := repo.CreateReport(ctx, &models.TournamentReport{Participants: []string{"A", "B"}, Winner: "A", Log: "Winner: A\n"})
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.CreateReport(ctx, &models.TournamentReport{Participants: []string{"C", "D"}, Winner: "D", Log: "Winner: D\n"})
	require.NoError(t, err)
	assert.Equal(t, 2, second)
	assert.FileExists(t, filepath.Join(dir, "tournament_2.json"))

	got, err := repo.GetReport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Winner)
	assert.Equal(t, []string{"A", "B"}, got.Participants)
	assert.Equal(t, "Winner: A\n", got.Log)

	summaries, err := repo.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ReportSummary{
		{Number: 1, Name: "tournament_1", Winner: "A"},
		{Number: 2, Name: "tournament_2", Winner: "D"},
	}, summaries)
}

func TestFileStateRepository_ReportNumberSkipsTakenNames(t *testing.T) {
	repo, dir := newTestStateRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tournament_1.json"), []byte(`{"winner":"X"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tournament_3.json"), []byte(`{"winner":"Y"}`), 0o644))

	number, err := repo.CreateReport(ctx, &models.TournamentReport{Winner: "Z"})
	require.NoError(t, err)
	assert.Equal(t, 4, number)
}

func TestFileStateRepository_GetMissingReport(t *testing.T) {
	repo, _ := newTestStateRepo(t)

	_, err := repo.GetReport(context.Background(), 7)
	assert.ErrorIs(t, err, ErrReportNotFound)
}
