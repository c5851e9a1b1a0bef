package models

import (
	"time"
)

// Tournament holds the immutable-ish configuration of a tournament plus the
// floor-visible lifecycle status. Blind structure lives in Levels as a JSON
// array of LevelConfig.
type Tournament struct {
	ID               string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ClubID           *string    `gorm:"column:club_id;type:varchar(36);index" json:"club_id"`
	Name             string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Status           string     `gorm:"column:status;type:varchar(20);default:registering" json:"status"`
	MaxSeatsPerTable int        `gorm:"column:max_seats_per_table;default:9" json:"max_seats_per_table"`
	StartingStack    int        `gorm:"column:starting_stack;default:0" json:"starting_stack"`
	RebuyChips       int        `gorm:"column:rebuy_chips;default:0" json:"rebuy_chips"`
	AddonChips       int        `gorm:"column:addon_chips;default:0" json:"addon_chips"`
	CurrentLevel     int        `gorm:"column:current_level;default:1" json:"current_level"`
	Levels           string     `gorm:"column:levels;type:text" json:"levels"`
	NextBreakTime    *time.Time `gorm:"column:next_break_time" json:"next_break_time"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Tournament) TableName() string {
	return "tournaments"
}

// LevelConfig is one entry of a tournament's blind structure.
type LevelConfig struct {
	Level           int `json:"level"`
	SmallBlind      int `json:"small_blind"`
	BigBlind        int `json:"big_blind"`
	DurationSeconds int `json:"duration_seconds"`
}

// Club is a venue that owns physical tables.
type Club struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Club) TableName() string {
	return "clubs"
}

// ClubTable is a physical table on the club floor. Tournament tables created
// from a club inherit its numbering and capacity.
type ClubTable struct {
	ID          string `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ClubID      string `gorm:"column:club_id;type:varchar(36);not null;index" json:"club_id"`
	TableNumber int    `gorm:"column:table_number;not null" json:"table_number"`
	Capacity    int    `gorm:"column:capacity;default:9" json:"capacity"`
}

func (ClubTable) TableName() string {
	return "club_tables"
}

// Table is a tournament table. OccupiedSeats is a maintained counter and must
// always equal the number of occupied, non-eliminated seats at the table.
type Table struct {
	ID            string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	TournamentID  string    `gorm:"column:tournament_id;type:varchar(36);not null;uniqueIndex:uniq_tournament_table,priority:1" json:"tournament_id"`
	TableNumber   int       `gorm:"column:table_number;not null;uniqueIndex:uniq_tournament_table,priority:2" json:"table_number"`
	MaxSeats      int       `gorm:"column:max_seats;default:9" json:"max_seats"`
	OccupiedSeats int       `gorm:"column:occupied_seats;default:0" json:"occupied_seats"`
	Status        string    `gorm:"column:status;type:varchar(20);default:inactive" json:"status"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Table) TableName() string {
	return "tournament_tables"
}

// Seat statuses. An eliminated seat is a historical marker: its seat number
// stays blocked for the current balancing pass and it never counts as occupied.
const (
	SeatStatusWaiting    = "waiting"
	SeatStatusActive     = "active"
	SeatStatusEliminated = "eliminated"
)

// Table statuses.
const (
	TableStatusInactive = "inactive"
	TableStatusActive   = "active"
)

// Seat is one chair at a tournament table. Rows are created lazily when a
// seat is first assigned; absence of a row means the seat is empty.
type Seat struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TableID      string    `gorm:"column:table_id;type:varchar(36);not null;uniqueIndex:uniq_table_seat,priority:1" json:"table_id"`
	SeatNumber   int       `gorm:"column:seat_number;not null;uniqueIndex:uniq_table_seat,priority:2" json:"seat_number"`
	OccupantID   *string   `gorm:"column:occupant_id;type:varchar(36);index" json:"occupant_id"`
	OccupantName string    `gorm:"column:occupant_name;type:varchar(255)" json:"occupant_name"`
	IsOccupied   bool      `gorm:"column:is_occupied;default:false" json:"is_occupied"`
	Status       string    `gorm:"column:status;type:varchar(20);default:waiting" json:"status"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Seat) TableName() string {
	return "tournament_seats"
}

// Registration links a player to a tournament. Only arrived, active
// registrations take part in seat balancing.
type Registration struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TournamentID string    `gorm:"column:tournament_id;type:varchar(36);not null;index" json:"tournament_id"`
	PlayerID     string    `gorm:"column:player_id;type:varchar(36);not null;index" json:"player_id"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(255);not null" json:"display_name"`
	IsArrived    bool      `gorm:"column:is_arrived;default:false" json:"is_arrived"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Registration) TableName() string {
	return "tournament_registrations"
}

// Operation types recorded against a tournament.
const (
	OperationRebuy = "rebuy"
	OperationAddon = "addon"
)

// TournamentOperation records a rebuy or addon. Stats derivation counts these
// rows, it never mutates them.
type TournamentOperation struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TournamentID string    `gorm:"column:tournament_id;type:varchar(36);not null;index" json:"tournament_id"`
	PlayerID     string    `gorm:"column:player_id;type:varchar(36);not null" json:"player_id"`
	OpType       string    `gorm:"column:op_type;type:varchar(20);not null" json:"op_type"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TournamentOperation) TableName() string {
	return "tournament_operations"
}

// Live statuses of a running clock.
const (
	LiveStatusRunning = "running"
	LiveStatusPaused  = "paused"
)

// LiveState is the durable record of a tournament's live clock and derived
// stats. One row per tournament, enforced by the unique index.
type LiveState struct {
	ID                    int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TournamentID          string    `gorm:"column:tournament_id;type:varchar(36);not null;uniqueIndex" json:"tournament_id"`
	CurrentLevel          int       `gorm:"column:current_level;default:1" json:"current_level"`
	LevelRemainingSeconds int       `gorm:"column:level_remaining_seconds;default:0" json:"level_remaining_seconds"`
	PlayersCount          int       `gorm:"column:players_count;default:0" json:"players_count"`
	TotalParticipants     int       `gorm:"column:total_participants;default:0" json:"total_participants"`
	TotalEntries          int       `gorm:"column:total_entries;default:0" json:"total_entries"`
	TotalChipsInPlay      int       `gorm:"column:total_chips_in_play;default:0" json:"total_chips_in_play"`
	AverageStack          int       `gorm:"column:average_stack;default:0" json:"average_stack"`
	IsPaused              bool      `gorm:"column:is_paused;default:false" json:"is_paused"`
	LiveStatus            string    `gorm:"column:live_status;type:varchar(20);default:running" json:"live_status"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LiveState) TableName() string {
	return "tournament_live_states"
}

// Operator is a staff account allowed to drive the floor API.
type Operator struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"column:role;type:varchar(20);default:floor" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Operator) TableName() string {
	return "operators"
}
