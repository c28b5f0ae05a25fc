package models

// EngineStatus describes where the in-progress tournament is in its round loop.
type EngineStatus string

const (
	StatusIdle          EngineStatus = "idle"
	StatusAwaitingRound EngineStatus = "awaiting_round"
	StatusRoundFormed   EngineStatus = "round_formed"
)

// NoRequirement is assigned to a group when the requirement pool runs dry.
const NoRequirement = "no requirement"

// Group is an ordered cluster of 2 or 3 participants competing within a round.
type Group []string

// Contains reports whether name is a member of the group.
func (g Group) Contains(name string) bool {
	for _, member := range g {
		if member == name {
			return true
		}
	}
	return false
}

// Assignment pairs a formed group with the requirement it plays under.
type Assignment struct {
	Group       Group  `json:"group"`
	Requirement string `json:"requirement"`
}

// TournamentState is the resumable record of an in-progress tournament.
type TournamentState struct {
	Participants       []string     `json:"participants"`
	CurrentRound       []string     `json:"current_round"`
	NextRound          []Group      `json:"next_round"`
	Assignments        []Assignment `json:"assignments,omitempty"`
	RoundDisplay       string       `json:"round_display"`
	CurrentRoundNumber int          `json:"current_round_number"`
}

// Status derives the engine status from the record. A nil state is idle.
func (s *TournamentState) Status() EngineStatus {
	switch {
	case s == nil:
		return StatusIdle
	case len(s.NextRound) > 0:
		return StatusRoundFormed
	default:
		return StatusAwaitingRound
	}
}

// Remaining is the number of participants still in play: the grouped ones
// once a round is formed, otherwise the current round.
func (s *TournamentState) Remaining() int {
	if s == nil {
		return 0
	}
	if len(s.NextRound) == 0 {
		return len(s.CurrentRound)
	}
	n := 0
	for _, g := range s.NextRound {
		n += len(g)
	}
	return n
}

// Clone returns a deep copy so callers never share slices with the engine.
func (s *TournamentState) Clone() *TournamentState {
	if s == nil {
		return nil
	}
	c := &TournamentState{
		Participants:       cloneStrings(s.Participants),
		CurrentRound:       cloneStrings(s.CurrentRound),
		RoundDisplay:       s.RoundDisplay,
		CurrentRoundNumber: s.CurrentRoundNumber,
	}
	if s.NextRound != nil {
		c.NextRound = make([]Group, len(s.NextRound))
		for i, g := range s.NextRound {
			c.NextRound[i] = Group(cloneStrings(g))
		}
	}
	if s.Assignments != nil {
		c.Assignments = make([]Assignment, len(s.Assignments))
		for i, a := range s.Assignments {
			c.Assignments[i] = Assignment{Group: Group(cloneStrings(a.Group)), Requirement: a.Requirement}
		}
	}
	return c
}

// Snapshot is the read model handed to the presentation layer.
type Snapshot struct {
	Status            EngineStatus     `json:"status"`
	State             *TournamentState `json:"state,omitempty"`
	TotalRounds       int              `json:"total_rounds"`
	TotalRequirements int              `json:"total_requirements"`
	RoundIndex        int              `json:"round_index"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
