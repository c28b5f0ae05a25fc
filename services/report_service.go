package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-runner/models"
	"github.com/Dosada05/tournament-runner/repositories"
)

// ReportService browses completed tournaments.
type ReportService interface {
	ListReports(ctx context.Context) ([]models.ReportSummary, error)
	GetReport(ctx context.Context, number int) (*models.TournamentReport, error)
}

type reportService struct {
	repo repositories.StateRepository
}

func NewReportService(repo repositories.StateRepository) ReportService {
	return &reportService{repo: repo}
}

func (s *reportService) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if reports == nil {
		return []models.ReportSummary{}, nil
	}
	return reports, nil
}

func (s *reportService) GetReport(ctx context.Context, number int) (*models.TournamentReport, error) {
	report, err := s.repo.GetReport(ctx, number)
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return report, nil
}
