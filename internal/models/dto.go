package models

import "time"

// LiveStateDTO is the wire form of a tournament's live state, served from the
// fast cache when possible and rebuilt from the durable row on a miss.
type LiveStateDTO struct {
	TournamentID          string     `json:"tournament_id"`
	CurrentLevel          int        `json:"current_level"`
	LevelRemainingSeconds int        `json:"level_remaining_seconds"`
	PlayersCount          int        `json:"players_count"`
	TotalParticipants     int        `json:"total_participants"`
	TotalEntries          int        `json:"total_entries"`
	TotalChipsInPlay      int        `json:"total_chips_in_play"`
	AverageStack          int        `json:"average_stack"`
	IsPaused              bool       `json:"is_paused"`
	LiveStatus            string     `json:"live_status"`
	NextBreakTime         *time.Time `json:"next_break_time,omitempty"`
	ObservedAt            time.Time  `json:"observed_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// TimerSnapshot is the small clock-only view kept beside the full snapshot.
// When two writers race, the one with the later ObservedAt wins.
type TimerSnapshot struct {
	CurrentLevel          int       `json:"current_level"`
	LevelRemainingSeconds int       `json:"level_remaining_seconds"`
	IsPaused              bool      `json:"is_paused"`
	ObservedAt            time.Time `json:"observed_at"`
}

// LiveStateUpdate is a partial update of the durable live state. Nil fields
// are left untouched.
type LiveStateUpdate struct {
	CurrentLevel          *int    `json:"current_level,omitempty"`
	LevelRemainingSeconds *int    `json:"level_remaining_seconds,omitempty"`
	PlayersCount          *int    `json:"players_count,omitempty"`
	TotalParticipants     *int    `json:"total_participants,omitempty"`
	TotalEntries          *int    `json:"total_entries,omitempty"`
	TotalChipsInPlay      *int    `json:"total_chips_in_play,omitempty"`
	AverageStack          *int    `json:"average_stack,omitempty"`
	IsPaused              *bool   `json:"is_paused,omitempty"`
	LiveStatus            *string `json:"live_status,omitempty"`
}

// SeatOccupant identifies who sits where at a table.
type SeatOccupant struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	SeatNumber  int    `json:"seat_number"`
}

// TableDecision describes one over-full table the floor has to break a tie
// for: which ExcessCount occupants leave the table.
type TableDecision struct {
	TableID     string         `json:"table_id"`
	TableNumber int            `json:"table_number"`
	ExcessCount int            `json:"excess_count"`
	Occupants   []SeatOccupant `json:"occupants"`
}

// Resolution answers a TableDecision. Either PlayerIDs lists the movers
// explicitly, or PivotSeat picks them clockwise starting at that seat.
type Resolution struct {
	TableID   string   `json:"table_id"`
	PlayerIDs []string `json:"player_ids,omitempty"`
	PivotSeat *int     `json:"pivot_seat,omitempty"`
}

// RebalanceResult is the outcome of a balancing pass. When NeedsInput is
// non-empty nothing was changed and the caller must retry with resolutions.
type RebalanceResult struct {
	TablesCreated int             `json:"tables_created"`
	SeatsAssigned int             `json:"seats_assigned"`
	NeedsInput    []TableDecision `json:"needs_input,omitempty"`
}

// TableView is a table plus its seats, for floor displays.
type TableView struct {
	ID            string     `json:"id"`
	TableNumber   int        `json:"table_number"`
	MaxSeats      int        `json:"max_seats"`
	OccupiedSeats int        `json:"occupied_seats"`
	Status        string     `json:"status"`
	Seats         []SeatView `json:"seats"`
}

// SeatView is one seat in a TableView.
type SeatView struct {
	SeatNumber   int     `json:"seat_number"`
	OccupantID   *string `json:"occupant_id"`
	OccupantName string  `json:"occupant_name,omitempty"`
	Status       string  `json:"status"`
}

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a signed token back to the operator client.
type AuthResponse struct {
	Token    string `json:"token"`
	Operator string `json:"operator"`
	Role     string `json:"role"`
}
