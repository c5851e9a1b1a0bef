package livestate

import "errors"

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrLiveStateMissing   = errors.New("live state not initialized for tournament")
)
