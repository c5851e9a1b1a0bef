package seating

import "errors"

// Lookup failures.
var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrClubNotFound         = errors.New("club not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// State conflicts.
var (
	ErrSeatOccupied     = errors.New("seat is already taken")
	ErrPlayerNotArrived = errors.New("player has not arrived at the venue")
	ErrPlayerInactive   = errors.New("registration is not active")
	ErrPlayerEliminated = errors.New("player has been eliminated")
)

// Validation failures.
var (
	ErrInvalidSeatNumber = errors.New("seat number out of range for table")
	ErrResolutionMissing = errors.New("over-full table has no tie-break resolution")
	ErrResolutionInvalid = errors.New("tie-break resolution is invalid")
)
