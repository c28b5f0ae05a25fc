package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrValidationFailed = errors.New("validation failed")

	// User-correctable: the transition is blocked and state is left untouched.
	ErrInsufficientParticipants = errors.New("at least 2 participants must be selected")
	ErrInsufficientRequirements = errors.New("not enough requirements for all groups")
	ErrIncompleteRound          = errors.New("one winner per group is required")
	ErrWinnerNotInGroup         = errors.New("winner is not a member of the group")

	// Engine is not in the state the operation needs.
	ErrNoActiveTournament = errors.New("no tournament is in progress")
	ErrRoundAlreadyFormed = errors.New("groups for the current round are already formed")
	ErrRoundNotFormed     = errors.New("groups for the current round are not formed yet")

	// Storage read/write failed; the last persisted state is still valid.
	ErrPersistenceFailure = errors.New("tournament storage failure")

	ErrNotFound             = errors.New("requested resource not found")
	ErrNameConflict         = errors.New("name is already registered")
	ErrInvalidCredentials   = errors.New("invalid organizer password")
	ErrAuthenticationFailed = errors.New("authentication failed")
)
