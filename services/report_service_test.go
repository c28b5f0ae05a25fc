package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-runner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService(t *testing.T) {
	repo := &memoryStateRepo{}
	svc := NewReportService(repo)
	ctx := context.Background()

	empty, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = repo.CreateReport(ctx, &models.TournamentReport{Participants: []string{"A", "B"}, Winner: "B", Log: "Winner: B\n"})
	require.NoError(t, err)

	list, err := svc.ListReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ReportSummary{{Number: 1, Name: "tournament_1", Winner: "B"}}, list)

	report, err := svc.GetReport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Winner: B\n", report.Log)

	_, err = svc.GetReport(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}
