package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tournament-runner/models"
)

var (
	ErrReportNotFound = errors.New("tournament report not found")
	ErrStateCorrupted = errors.New("in-progress tournament record is unreadable")
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// StateRepository keeps the single in-progress tournament and the
// append-only list of completed tournament reports.
type StateRepository interface {
	// LoadCurrent returns nil, nil when no tournament is in progress.
	LoadCurrent(ctx context.Context) (*models.TournamentState, error)
	// SaveCurrent overwrites the in-progress record as a whole.
	SaveCurrent(ctx context.Context, state *models.TournamentState) error
	// DeleteCurrent removes the in-progress record. A missing record is not an error.
	DeleteCurrent(ctx context.Context) error

	// CreateReport stores report under the next free number (existing count + 1)
	// and returns that number.
	CreateReport(ctx context.Context, report *models.TournamentReport) (int, error)
	ListReports(ctx context.Context) ([]models.ReportSummary, error)
	GetReport(ctx context.Context, number int) (*models.TournamentReport, error)
}
