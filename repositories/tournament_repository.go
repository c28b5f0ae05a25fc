package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-runner/models"
	"github.com/lib/pq"
)

// currentStateID keys the only row of tournament_state.
const currentStateID = 1

type postgresStateRepository struct {
	db *sql.DB
}

// NewPostgresStateRepository keeps tournaments in the tournament_state and
// tournament_reports tables (see db.Migrate).
func NewPostgresStateRepository(db *sql.DB) StateRepository {
	return &postgresStateRepository{db: db}
}

func (r *postgresStateRepository) LoadCurrent(ctx context.Context) (*models.TournamentState, error) {
	query := `
		SELECT participants, current_round, next_round, assignments, round_display, current_round_number
		FROM tournament_state
		WHERE id = $1`

	var (
		state           models.TournamentState
		nextRoundJSON   []byte
		assignmentsJSON []byte
	)
	err := r.db.QueryRowContext(ctx, query, currentStateID).Scan(
		pq.Array(&state.Participants),
		pq.Array(&state.CurrentRound),
		&nextRoundJSON,
		&assignmentsJSON,
		&state.RoundDisplay,
		&state.CurrentRoundNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load current tournament: %w", err)
	}

	if err := json.Unmarshal(nextRoundJSON, &state.NextRound); err != nil {
		return nil, fmt.Errorf("%w: next_round: %v", ErrStateCorrupted, err)
	}
	if len(assignmentsJSON) > 0 {
		if err := json.Unmarshal(assignmentsJSON, &state.Assignments); err != nil {
			return nil, fmt.Errorf("%w: assignments: %v", ErrStateCorrupted, err)
		}
	}
	normalizeArrays(&state)
	return &state, nil
}

// normalizeArrays restores the empty slices that pq.Array scans back as nil,
// so a loaded state encodes the same as the one that was saved.
func normalizeArrays(state *models.TournamentState) {
	if state.Participants == nil {
		state.Participants = []string{}
	}
	if state.CurrentRound == nil {
		state.CurrentRound = []string{}
	}
	if state.NextRound == nil {
		state.NextRound = []models.Group{}
	}
}

func (r *postgresStateRepository) SaveCurrent(ctx context.Context, state *models.TournamentState) error {
	nextRoundJSON, err := json.Marshal(state.NextRound)
	if err != nil {
		return fmt.Errorf("failed to encode next round: %w", err)
	}
	assignmentsJSON, err := json.Marshal(state.Assignments)
	if err != nil {
		return fmt.Errorf("failed to encode assignments: %w", err)
	}

	query := `
		INSERT INTO tournament_state (
			id, participants, current_round, next_round, assignments, round_display, current_round_number, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			participants = EXCLUDED.participants,
			current_round = EXCLUDED.current_round,
			next_round = EXCLUDED.next_round,
			assignments = EXCLUDED.assignments,
			round_display = EXCLUDED.round_display,
			current_round_number = EXCLUDED.current_round_number,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		currentStateID,
		pq.Array(state.Participants),
		pq.Array(state.CurrentRound),
		nextRoundJSON,
		assignmentsJSON,
		state.RoundDisplay,
		state.CurrentRoundNumber,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save current tournament: %w", err)
	}
	return nil
}

func (r *postgresStateRepository) DeleteCurrent(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tournament_state WHERE id = $1`, currentStateID)
	if err != nil {
		return fmt.Errorf("failed to delete current tournament: %w", err)
	}
	return nil
}

func (r *postgresStateRepository) CreateReport(ctx context.Context, report *models.TournamentReport) (number int, err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit tournament report: %w", cErr)
		}
	}()

	number, err = nextReportNumber(ctx, tx)
	if err != nil {
		return 0, err
	}

	completedAt := report.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO tournament_reports (number, participants, winner, log, completed_at)
		VALUES ($1, $2, $3, $4, $5)`
	result, err := tx.ExecContext(ctx, query, number, pq.Array(report.Participants), report.Winner, report.Log, completedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, fmt.Errorf("tournament report %d already exists: %w", number, err)
		}
		return 0, fmt.Errorf("failed to insert tournament report: %w", err)
	}
	if err = checkAffectedRows(result, fmt.Errorf("tournament report %d was not stored", number)); err != nil {
		return 0, err
	}
	return number, nil
}

func nextReportNumber(ctx context.Context, exec SQLExecutor) (int, error) {
	var count int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournament_reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournament reports: %w", err)
	}
	return count + 1, nil
}

func (r *postgresStateRepository) ListReports(ctx context.Context) ([]models.ReportSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT number, winner FROM tournament_reports ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament reports: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ReportSummary, 0)
	for rows.Next() {
		var s models.ReportSummary
		if scanErr := rows.Scan(&s.Number, &s.Winner); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament report: %w", scanErr)
		}
		s.Name = fmt.Sprintf("%s%d", reportFilePrefix, s.Number)
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament report iteration: %w", err)
	}
	return summaries, nil
}

func (r *postgresStateRepository) GetReport(ctx context.Context, number int) (*models.TournamentReport, error) {
	query := `
		SELECT number, participants, winner, log, completed_at
		FROM tournament_reports
		WHERE number = $1`

	report := &models.TournamentReport{}
	err := r.db.QueryRowContext(ctx, query, number).Scan(
		&report.Number,
		pq.Array(&report.Participants),
		&report.Winner,
		&report.Log,
		&report.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load tournament report %d: %w", number, err)
	}
	return report, nil
}
