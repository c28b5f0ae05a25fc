package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/tournament-runner/brackets"
	"github.com/Dosada05/tournament-runner/models"
	"github.com/Dosada05/tournament-runner/repositories"
	"github.com/Dosada05/tournament-runner/storage"
)

// Events published to the Notifier after each transition.
const (
	EventTournamentStarted   = "TOURNAMENT_STARTED"
	EventRoundFormed         = "ROUND_FORMED"
	EventTournamentCompleted = "TOURNAMENT_COMPLETED"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Notifier receives engine events for live views.
type Notifier interface {
	Publish(eventType string, payload interface{})
}

// RoundOutcome is the result of submitting winners: either the next formed
// round or, when a single winner remains, the final report.
type RoundOutcome struct {
	State  *models.TournamentState  `json:"state,omitempty"`
	Report *models.TournamentReport `json:"report,omitempty"`
}

// RoundEngine drives one tournament at a time through its rounds.
type RoundEngine interface {
	// Resume restores the persisted in-progress tournament, if any.
	Resume(ctx context.Context) (*models.TournamentState, error)
	Start(ctx context.Context, participants, requirements []string) (*models.TournamentState, error)
	FormRound(ctx context.Context, requirements []string) (*models.TournamentState, error)
	SubmitWinners(ctx context.Context, winners, requirements []string) (*RoundOutcome, error)
	Snapshot() models.Snapshot
}

type RoundEngineDeps struct {
	Repo     repositories.StateRepository
	Archiver storage.ReportArchiver // optional
	Notifier Notifier               // optional
	Shuffler Shuffler               // defaults to math/rand/v2
	Logger   *slog.Logger
	Now      func() time.Time
}

type roundEngine struct {
	mu sync.Mutex

	repo     repositories.StateRepository
	archiver storage.ReportArchiver
	notifier Notifier
	shuffler Shuffler
	logger   *slog.Logger
	now      func() time.Time

	state *models.TournamentState
}

func NewRoundEngine(deps RoundEngineDeps) RoundEngine {
	e := &roundEngine{
		repo:     deps.Repo,
		archiver: deps.Archiver,
		notifier: deps.Notifier,
		shuffler: deps.Shuffler,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if e.shuffler == nil {
		e.shuffler = globalShuffler{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Resume loads the in-progress record. A record that cannot be read leaves
// the engine idle; the error is returned for the caller to report.
func (e *roundEngine) Resume(ctx context.Context) (*models.TournamentState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.repo.LoadCurrent(ctx)
	if err != nil {
		e.state = nil
		e.logger.Error("failed to load in-progress tournament, continuing without one", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if state == nil {
		e.state = nil
		return nil, nil
	}
	if state.NextRound == nil {
		state.NextRound = []models.Group{}
	}

	e.state = state
	e.logger.Info("resumed in-progress tournament",
		slog.Int("participants", len(state.Participants)),
		slog.Int("round", state.CurrentRoundNumber),
		slog.String("status", string(state.Status())))
	return state.Clone(), nil
}

func (e *roundEngine) Start(ctx context.Context, participants, requirements []string) (*models.TournamentState, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w (selected %d)", ErrInsufficientParticipants, len(participants))
	}
	if err := validateNames(participants); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	roster := cloneStrings(participants)
	e.shuffler.Shuffle(len(roster), func(i, j int) { roster[i], roster[j] = roster[j], roster[i] })

	t := newTranscript("")
	t.requirementsNeeded(brackets.TotalRequirements(len(roster)))

	started := &models.TournamentState{
		Participants:       roster,
		CurrentRound:       cloneStrings(roster),
		NextRound:          []models.Group{},
		RoundDisplay:       t.String(),
		CurrentRoundNumber: 1,
	}

	if e.state != nil {
		e.logger.Warn("replacing unfinished tournament",
			slog.Int("participants", len(e.state.Participants)),
			slog.Int("round", e.state.CurrentRoundNumber))
	}

	next, err := e.formRound(started, requirements)
	if err != nil {
		if !errors.Is(err, ErrInsufficientRequirements) {
			return nil, err
		}
		// The roster is fixed; the caller forms the first round with FormRound.
		if commitErr := e.commit(ctx, started); commitErr != nil {
			return nil, commitErr
		}
		e.logger.Info("tournament started, awaiting requirements for the first round",
			slog.Int("participants", len(roster)))
		e.publish(EventTournamentStarted, started)
		return nil, err
	}

	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.logger.Info("tournament started",
		slog.Int("participants", len(roster)),
		slog.Int("groups", len(next.NextRound)))
	e.publish(EventTournamentStarted, next)
	e.publish(EventRoundFormed, next)
	return next.Clone(), nil
}

// FormRound groups the current round of a tournament that is waiting for its
// groups: one started with too few requirements, or a resumed record saved
// before its round was formed.
func (e *roundEngine) FormRound(ctx context.Context, requirements []string) (*models.TournamentState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return nil, ErrNoActiveTournament
	}
	if len(e.state.NextRound) > 0 {
		return nil, ErrRoundAlreadyFormed
	}

	next, err := e.formRound(e.state, requirements)
	if err != nil {
		return nil, err
	}
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.logger.Info("round formed",
		slog.Int("round", next.CurrentRoundNumber),
		slog.Int("groups", len(next.NextRound)))
	e.publish(EventRoundFormed, next)
	return next.Clone(), nil
}

func (e *roundEngine) SubmitWinners(ctx context.Context, winners, requirements []string) (*RoundOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return nil, ErrNoActiveTournament
	}
	groups := e.state.NextRound
	if len(groups) == 0 {
		return nil, ErrRoundNotFormed
	}
	if len(winners) == 0 || len(winners) != len(groups) {
		return nil, fmt.Errorf("%w: got %d winners for %d groups", ErrIncompleteRound, len(winners), len(groups))
	}
	for i, w := range winners {
		if !groups[i].Contains(w) {
			return nil, fmt.Errorf("%w: %q is not in group %d (%s)", ErrWinnerNotInGroup, w, i+1, strings.Join(groups[i], ", "))
		}
	}

	t := newTranscript(e.state.RoundDisplay)
	t.winners(winners)

	if len(winners) == 1 {
		return e.complete(ctx, winners[0], t)
	}

	advanced := e.state.Clone()
	advanced.CurrentRound = cloneStrings(winners)
	advanced.NextRound = []models.Group{}
	advanced.Assignments = nil
	advanced.CurrentRoundNumber++
	advanced.RoundDisplay = t.String()

	next, err := e.formRound(advanced, requirements)
	if err != nil {
		return nil, err
	}
	if err := e.commit(ctx, next); err != nil {
		return nil, err
	}

	e.logger.Info("round advanced",
		slog.Int("round", next.CurrentRoundNumber),
		slog.Int("remaining", len(winners)),
		slog.Int("groups", len(next.NextRound)))
	e.publish(EventRoundFormed, next)
	return &RoundOutcome{State: next.Clone()}, nil
}

func (e *roundEngine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := models.Snapshot{Status: e.state.Status()}
	if e.state == nil {
		return snap
	}
	snap.State = e.state.Clone()
	snap.TotalRounds = brackets.TotalRounds(len(e.state.Participants))
	snap.TotalRequirements = brackets.TotalRequirements(len(e.state.Participants))
	snap.RoundIndex = brackets.RoundIndex(len(e.state.Participants), e.state.Remaining())
	return snap
}

// formRound computes the grouped successor of state without persisting it.
// state itself is never modified.
func (e *roundEngine) formRound(state *models.TournamentState, requirements []string) (*models.TournamentState, error) {
	needed := brackets.GroupCount(len(state.CurrentRound))
	if len(requirements) < needed {
		return nil, fmt.Errorf("%w: %d groups, %d requirements selected", ErrInsufficientRequirements, needed, len(requirements))
	}

	pool := cloneStrings(requirements)
	e.shuffler.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	groups := brackets.FormGroups(state.CurrentRound)
	nextRound := make([]models.Group, 0, len(groups))
	assignments := make([]models.Assignment, 0, len(groups))
	for _, g := range groups {
		requirement := models.NoRequirement
		if len(pool) > 0 {
			requirement, pool = pool[0], pool[1:]
		}
		nextRound = append(nextRound, models.Group(g))
		assignments = append(assignments, models.Assignment{Group: models.Group(cloneStrings(g)), Requirement: requirement})
	}

	t := newTranscript(state.RoundDisplay)
	t.round(brackets.RoundIndex(len(state.Participants), len(state.CurrentRound)), len(state.CurrentRound), assignments)

	next := state.Clone()
	next.CurrentRound = []string{}
	next.NextRound = nextRound
	next.Assignments = assignments
	next.RoundDisplay = t.String()
	return next, nil
}

func (e *roundEngine) complete(ctx context.Context, winner string, t *transcript) (*RoundOutcome, error) {
	t.champion(winner)

	report := &models.TournamentReport{
		Participants: cloneStrings(e.state.Participants),
		Winner:       winner,
		Log:          t.String(),
		CompletedAt:  e.now().UTC(),
	}
	number, err := e.repo.CreateReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	report.Number = number

	// The report is the durable outcome from here on; a stale in-progress
	// record is only logged.
	if err := e.repo.DeleteCurrent(ctx); err != nil {
		e.logger.Error("failed to clear in-progress tournament after completion",
			slog.Int("report", number), slog.Any("error", err))
	}
	e.state = nil

	if e.archiver != nil {
		if res, err := e.archiver.ArchiveReport(ctx, report); err != nil {
			e.logger.Error("failed to archive tournament report", slog.Int("report", number), slog.Any("error", err))
		} else {
			e.logger.Info("tournament report archived", slog.Int("report", number), slog.String("key", res.Key))
		}
	}

	e.logger.Info("tournament completed", slog.Int("report", number), slog.String("winner", winner))
	e.publish(EventTournamentCompleted, report)
	return &RoundOutcome{Report: report}, nil
}

// commit persists next and only then makes it the engine state.
func (e *roundEngine) commit(ctx context.Context, next *models.TournamentState) error {
	if err := e.repo.SaveCurrent(ctx, next); err != nil {
		e.logger.Error("failed to persist tournament state", slog.Any("error", err))
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	e.state = next
	return nil
}

func (e *roundEngine) publish(eventType string, payload interface{}) {
	if e.notifier == nil {
		return
	}
	if state, ok := payload.(*models.TournamentState); ok {
		payload = state.Clone()
	}
	e.notifier.Publish(eventType, payload)
}

func validateNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: participant name must not be blank", ErrValidationFailed)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: participant %q selected twice", ErrValidationFailed, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
