package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-runner/repositories"
	"golang.org/x/sync/errgroup"
)

// Roster is the registered participants and requirements, in file order.
type Roster struct {
	Participants []string `json:"participants"`
	Requirements []string `json:"requirements"`
}

// RosterService manages the two registered name lists the organizer picks from.
type RosterService interface {
	LoadAll(ctx context.Context) (*Roster, error)
	ListParticipants(ctx context.Context) ([]string, error)
	ListRequirements(ctx context.Context) ([]string, error)
	AddParticipant(ctx context.Context, name string) error
	AddRequirement(ctx context.Context, name string) error
}

type rosterService struct {
	participants repositories.RosterRepository
	requirements repositories.RosterRepository
}

func NewRosterService(participants, requirements repositories.RosterRepository) RosterService {
	return &rosterService{
		participants: participants,
		requirements: requirements,
	}
}

// LoadAll reads both lists concurrently.
func (s *rosterService) LoadAll(ctx context.Context) (*Roster, error) {
	roster := &Roster{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		names, err := s.participants.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		roster.Participants = names
		return nil
	})
	g.Go(func() error {
		names, err := s.requirements.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to load requirements: %w", err)
		}
		roster.Requirements = names
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roster, nil
}

func (s *rosterService) ListParticipants(ctx context.Context) ([]string, error) {
	return s.participants.List(ctx)
}

func (s *rosterService) ListRequirements(ctx context.Context) ([]string, error) {
	return s.requirements.List(ctx)
}

func (s *rosterService) AddParticipant(ctx context.Context, name string) error {
	return mapRosterError(s.participants.Add(ctx, name), "participant")
}

func (s *rosterService) AddRequirement(ctx context.Context, name string) error {
	return mapRosterError(s.requirements.Add(ctx, name), "requirement")
}

func mapRosterError(err error, kind string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNameRequired):
		return fmt.Errorf("%w: %s name is required", ErrValidationFailed, kind)
	case errors.Is(err, repositories.ErrNameConflict):
		return fmt.Errorf("%w: %s already exists", ErrNameConflict, kind)
	default:
		return fmt.Errorf("failed to add %s: %w", kind, err)
	}
}
