package seating

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pokerclub-platform/internal/locks"
	"pokerclub-platform/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?mode=memory"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Club{},
		&models.ClubTable{},
		&models.Tournament{},
		&models.Table{},
		&models.Seat{},
		&models.Registration{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	return NewService(db, locks.NewManager(), rand.New(rand.NewSource(1)))
}

func createTournament(t *testing.T, db *gorm.DB, id string, maxSeats int, clubID *string) {
	tournament := models.Tournament{
		ID:               id,
		ClubID:           clubID,
		Name:             "Test " + id,
		MaxSeatsPerTable: maxSeats,
		StartingStack:    10000,
	}
	if err := db.Create(&tournament).Error; err != nil {
		t.Fatalf("Failed to create tournament: %v", err)
	}
}

func createRegistration(t *testing.T, db *gorm.DB, tournamentID, playerID string, arrived, active bool) {
	reg := models.Registration{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		DisplayName:  "Player " + playerID,
		IsArrived:    arrived,
		IsActive:     active,
	}
	if err := db.Create(&reg).Error; err != nil {
		t.Fatalf("Failed to create registration: %v", err)
	}
	// Write the booleans explicitly: on insert gorm drops zero-valued fields
	// that carry a column default, so IsActive=false would become true.
	if err := db.Model(&models.Registration{}).Where("id = ?", reg.ID).
		Updates(map[string]any{"is_arrived": arrived, "is_active": active}).Error; err != nil {
		t.Fatalf("Failed to set registration flags: %v", err)
	}
}

func createTable(t *testing.T, db *gorm.DB, tournamentID string, number, maxSeats, occupied int) string {
	status := models.TableStatusInactive
	if occupied > 0 {
		status = models.TableStatusActive
	}
	table := models.Table{
		ID:            uuid.New().String(),
		TournamentID:  tournamentID,
		TableNumber:   number,
		MaxSeats:      maxSeats,
		OccupiedSeats: occupied,
		Status:        status,
	}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return table.ID
}

func seatPlayer(t *testing.T, db *gorm.DB, tableID string, seatNumber int, playerID string) {
	seat := models.Seat{
		TableID:      tableID,
		SeatNumber:   seatNumber,
		OccupantID:   &playerID,
		OccupantName: "Player " + playerID,
		IsOccupied:   true,
		Status:       models.SeatStatusActive,
	}
	if err := db.Create(&seat).Error; err != nil {
		t.Fatalf("Failed to seat player %s: %v", playerID, err)
	}
}

// assertOccupancyCounters checks that every table's counter matches the live
// count of its occupied seats.
func assertOccupancyCounters(t *testing.T, db *gorm.DB, tournamentID string) {
	t.Helper()

	var tables []models.Table
	if err := db.Where("tournament_id = ?", tournamentID).Find(&tables).Error; err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}
	for _, tbl := range tables {
		var occupied int64
		if err := db.Model(&models.Seat{}).
			Where("table_id = ? AND is_occupied = ?", tbl.ID, true).
			Count(&occupied).Error; err != nil {
			t.Fatalf("Failed to count seats: %v", err)
		}
		if int(occupied) != tbl.OccupiedSeats {
			t.Errorf("table %d counter %d != %d occupied seats", tbl.TableNumber, tbl.OccupiedSeats, occupied)
		}
		wantStatus := models.TableStatusInactive
		if occupied > 0 {
			wantStatus = models.TableStatusActive
		}
		if tbl.Status != wantStatus {
			t.Errorf("table %d status %s with %d occupants", tbl.TableNumber, tbl.Status, occupied)
		}
	}
}

// assertNoDoubleSeat checks that no player holds two live seats at once.
func assertNoDoubleSeat(t *testing.T, db *gorm.DB, tournamentID string) {
	t.Helper()

	var seats []models.Seat
	if err := db.Joins("JOIN tournament_tables t ON t.id = tournament_seats.table_id").
		Where("t.tournament_id = ? AND tournament_seats.is_occupied = ?", tournamentID, true).
		Find(&seats).Error; err != nil {
		t.Fatalf("Failed to load seats: %v", err)
	}
	seen := make(map[string]bool)
	for _, seat := range seats {
		if seat.OccupantID == nil {
			t.Fatal("occupied seat with no occupant")
		}
		if seen[*seat.OccupantID] {
			t.Errorf("player %s occupies more than one seat", *seat.OccupantID)
		}
		seen[*seat.OccupantID] = true
	}
}

func tableOccupancies(t *testing.T, db *gorm.DB, tournamentID string) map[int]int {
	t.Helper()

	var tables []models.Table
	if err := db.Where("tournament_id = ?", tournamentID).Find(&tables).Error; err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}
	out := make(map[int]int, len(tables))
	for _, tbl := range tables {
		out[tbl.TableNumber] = tbl.OccupiedSeats
	}
	return out
}

func TestInitializeTablesFromClub(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	club := models.Club{ID: uuid.New().String(), Name: "Test Club"}
	if err := db.Create(&club).Error; err != nil {
		t.Fatalf("Failed to create club: %v", err)
	}
	for i := 1; i <= 3; i++ {
		ct := models.ClubTable{ID: uuid.New().String(), ClubID: club.ID, TableNumber: i, Capacity: 8}
		if err := db.Create(&ct).Error; err != nil {
			t.Fatalf("Failed to create club table: %v", err)
		}
	}
	createTournament(t, db, "t1", 9, &club.ID)

	created, err := svc.InitializeTables("t1")
	if err != nil {
		t.Fatalf("InitializeTables: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 tables created, got %d", created)
	}

	var tables []models.Table
	if err := db.Where("tournament_id = ?", "t1").Order("table_number asc").Find(&tables).Error; err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}
	for i, tbl := range tables {
		if tbl.TableNumber != i+1 || tbl.MaxSeats != 8 {
			t.Errorf("table %d: number=%d maxSeats=%d, want number=%d maxSeats=8", i, tbl.TableNumber, tbl.MaxSeats, i+1)
		}
	}

	// Second call is a no-op.
	created, err = svc.InitializeTables("t1")
	if err != nil {
		t.Fatalf("InitializeTables second call: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 tables on second call, got %d", created)
	}
}

func TestInitializeTablesSynthesized(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	for i := 1; i <= 10; i++ {
		createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
	}

	created, err := svc.InitializeTables("t1")
	if err != nil {
		t.Fatalf("InitializeTables: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 tables for 10 arrived players at 9 seats, got %d", created)
	}
}

func TestInitializeTablesUnknownTournament(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	if _, err := svc.InitializeTables("missing"); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("expected ErrTournamentNotFound, got %v", err)
	}
}

// Ten arrived players at nine-handed tables get two tables of five.
func TestRebalanceSeatsFreshField(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	for i := 1; i <= 10; i++ {
		createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
	}

	result, err := svc.Rebalance("t1", nil)
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if result.TablesCreated != 2 {
		t.Errorf("expected 2 tables created, got %d", result.TablesCreated)
	}
	if result.SeatsAssigned != 10 {
		t.Errorf("expected 10 seats assigned, got %d", result.SeatsAssigned)
	}
	if len(result.NeedsInput) != 0 {
		t.Errorf("unexpected needs_input: %v", result.NeedsInput)
	}

	occ := tableOccupancies(t, db, "t1")
	if occ[1] != 5 || occ[2] != 5 {
		t.Errorf("expected 5/5 split, got %v", occ)
	}
	assertOccupancyCounters(t, db, "t1")
	assertNoDoubleSeat(t, db, "t1")
}

func TestRebalanceIgnoresUnarrivedPlayers(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	for i := 1; i <= 5; i++ {
		createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
	}
	createRegistration(t, db, "t1", "no-show", false, true)
	createRegistration(t, db, "t1", "cancelled", true, false)

	result, err := svc.Rebalance("t1", nil)
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if result.SeatsAssigned != 5 {
		t.Errorf("expected 5 seats assigned, got %d", result.SeatsAssigned)
	}
}

func TestRebalanceEmptyTournament(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)

	result, err := svc.Rebalance("t1", nil)
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if result.TablesCreated != 0 || result.SeatsAssigned != 0 || len(result.NeedsInput) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

// setupUnevenTables builds a 9/3 split over two nine-handed tables: table A
// seats p1..p9 in seats 1..9, table B seats p10..p12 in seats 1..3.
func setupUnevenTables(t *testing.T, db *gorm.DB) (tableA, tableB string) {
	createTournament(t, db, "t1", 9, nil)
	for i := 1; i <= 12; i++ {
		createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
	}
	tableA = createTable(t, db, "t1", 1, 9, 9)
	tableB = createTable(t, db, "t1", 2, 9, 3)
	for i := 1; i <= 9; i++ {
		seatPlayer(t, db, tableA, i, fmt.Sprintf("p%d", i))
	}
	for i := 1; i <= 3; i++ {
		seatPlayer(t, db, tableB, i, fmt.Sprintf("p%d", i+9))
	}
	return tableA, tableB
}

// A 9/3 field over two tables needs a tie-break: rebalance without
// resolutions reports the over-full table and changes nothing.
func TestRebalanceReportsDecision(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	tableA, _ := setupUnevenTables(t, db)

	result, err := svc.Rebalance("t1", nil)
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if len(result.NeedsInput) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(result.NeedsInput))
	}

	d := result.NeedsInput[0]
	if d.TableID != tableA || d.TableNumber != 1 {
		t.Errorf("decision names table %s (#%d), want over-full table A", d.TableID, d.TableNumber)
	}
	if d.ExcessCount != 3 {
		t.Errorf("expected excess 3, got %d", d.ExcessCount)
	}
	if len(d.Occupants) != 9 {
		t.Fatalf("expected 9 occupants listed, got %d", len(d.Occupants))
	}
	for i, o := range d.Occupants {
		if o.SeatNumber != i+1 {
			t.Errorf("occupants not sorted by seat: index %d has seat %d", i, o.SeatNumber)
		}
	}

	// Nothing moved.
	occ := tableOccupancies(t, db, "t1")
	if occ[1] != 9 || occ[2] != 3 {
		t.Errorf("tables changed without a resolution: %v", occ)
	}
}

// Supplying a pivot seat resolves the decision deterministically: the
// occupant at the pivot and the next two in seat order move.
func TestRebalancePivotResolution(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	tableA, tableB := setupUnevenTables(t, db)

	pivot := 4
	result, err := svc.Rebalance("t1", []models.Resolution{{TableID: tableA, PivotSeat: &pivot}})
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if result.SeatsAssigned != 3 {
		t.Errorf("expected 3 seats assigned, got %d", result.SeatsAssigned)
	}

	occ := tableOccupancies(t, db, "t1")
	if occ[1] != 6 || occ[2] != 6 {
		t.Errorf("expected 6/6 split, got %v", occ)
	}

	// Seats 4, 5, 6 of table A were vacated; their players are now at B.
	for _, playerID := range []string{"p4", "p5", "p6"} {
		var seat models.Seat
		if err := db.Where("occupant_id = ? AND is_occupied = ?", playerID, true).First(&seat).Error; err != nil {
			t.Fatalf("player %s has no seat: %v", playerID, err)
		}
		if seat.TableID != tableB {
			t.Errorf("player %s should have moved to table B", playerID)
		}
	}
	for _, playerID := range []string{"p1", "p2", "p3", "p7", "p8", "p9"} {
		var seat models.Seat
		if err := db.Where("occupant_id = ? AND is_occupied = ?", playerID, true).First(&seat).Error; err != nil {
			t.Fatalf("player %s has no seat: %v", playerID, err)
		}
		if seat.TableID != tableA {
			t.Errorf("player %s should have stayed at table A", playerID)
		}
	}

	assertOccupancyCounters(t, db, "t1")
	assertNoDoubleSeat(t, db, "t1")
}

func TestRebalanceExplicitResolution(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	tableA, tableB := setupUnevenTables(t, db)

	result, err := svc.Rebalance("t1", []models.Resolution{
		{TableID: tableA, PlayerIDs: []string{"p2", "p5", "p8"}},
	})
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if result.SeatsAssigned != 3 {
		t.Errorf("expected 3 seats assigned, got %d", result.SeatsAssigned)
	}
	for _, playerID := range []string{"p2", "p5", "p8"} {
		var seat models.Seat
		if err := db.Where("occupant_id = ? AND is_occupied = ?", playerID, true).First(&seat).Error; err != nil {
			t.Fatalf("player %s has no seat: %v", playerID, err)
		}
		if seat.TableID != tableB {
			t.Errorf("player %s should have moved to table B", playerID)
		}
	}
	assertOccupancyCounters(t, db, "t1")
}

func TestRebalanceResolutionErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	tableA, _ := setupUnevenTables(t, db)

	// A resolution for the wrong table leaves the over-full one unresolved.
	pivot := 1
	_, err := svc.Rebalance("t1", []models.Resolution{{TableID: "other", PivotSeat: &pivot}})
	if !errors.Is(err, ErrResolutionMissing) {
		t.Errorf("expected ErrResolutionMissing, got %v", err)
	}

	// Too few listed movers.
	_, err = svc.Rebalance("t1", []models.Resolution{{TableID: tableA, PlayerIDs: []string{"p1"}}})
	if !errors.Is(err, ErrResolutionInvalid) {
		t.Errorf("expected ErrResolutionInvalid for short list, got %v", err)
	}

	// Movers who are not at the table.
	_, err = svc.Rebalance("t1", []models.Resolution{{TableID: tableA, PlayerIDs: []string{"p10", "p11", "p12"}}})
	if !errors.Is(err, ErrResolutionInvalid) {
		t.Errorf("expected ErrResolutionInvalid for foreign movers, got %v", err)
	}

	// Neither list nor pivot.
	_, err = svc.Rebalance("t1", []models.Resolution{{TableID: tableA}})
	if !errors.Is(err, ErrResolutionInvalid) {
		t.Errorf("expected ErrResolutionInvalid for empty resolution, got %v", err)
	}
}

// A second pass over a balanced field assigns nothing.
func TestRebalanceIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	for i := 1; i <= 10; i++ {
		createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
	}

	if _, err := svc.Rebalance("t1", nil); err != nil {
		t.Fatalf("first Rebalance: %v", err)
	}

	result, err := svc.Rebalance("t1", nil)
	if err != nil {
		t.Fatalf("second Rebalance: %v", err)
	}
	if result.TablesCreated != 0 || result.SeatsAssigned != 0 || len(result.NeedsInput) != 0 {
		t.Errorf("second pass should be a no-op, got %+v", result)
	}
}

// Pairwise occupancy difference stays within one across a range of field
// sizes.
func TestRebalanceBalanceQuality(t *testing.T) {
	for _, players := range []int{7, 13, 19, 27} {
		players := players
		t.Run(fmt.Sprintf("%d_players", players), func(t *testing.T) {
			db := setupTestDB(t)
			svc := newTestService(t, db)

			createTournament(t, db, "t1", 9, nil)
			for i := 1; i <= players; i++ {
				createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
			}
			if _, err := svc.Rebalance("t1", nil); err != nil {
				t.Fatalf("Rebalance: %v", err)
			}

			occ := tableOccupancies(t, db, "t1")
			for a, na := range occ {
				for b, nb := range occ {
					if na > 0 && nb > 0 {
						if diff := na - nb; diff > 1 || diff < -1 {
							t.Errorf("tables %d and %d differ by more than one: %v", a, b, occ)
						}
					}
				}
			}
			assertOccupancyCounters(t, db, "t1")
			assertNoDoubleSeat(t, db, "t1")
		})
	}
}

func TestManualMoveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	createRegistration(t, db, "t1", "p1", true, true)
	tableA := createTable(t, db, "t1", 1, 9, 1)
	tableB := createTable(t, db, "t1", 2, 9, 0)
	seatPlayer(t, db, tableA, 3, "p1")

	before := tableOccupancies(t, db, "t1")

	if _, err := svc.ManualMove("t1", "p1", tableB, 5); err != nil {
		t.Fatalf("ManualMove to B: %v", err)
	}
	assertOccupancyCounters(t, db, "t1")

	if _, err := svc.ManualMove("t1", "p1", tableA, 3); err != nil {
		t.Fatalf("ManualMove back to A: %v", err)
	}

	after := tableOccupancies(t, db, "t1")
	if before[1] != after[1] || before[2] != after[2] {
		t.Errorf("round trip changed occupancy: before %v, after %v", before, after)
	}
	assertOccupancyCounters(t, db, "t1")
	assertNoDoubleSeat(t, db, "t1")
}

func TestManualMoveValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	createRegistration(t, db, "t1", "seated", true, true)
	createRegistration(t, db, "t1", "mover", true, true)
	createRegistration(t, db, "t1", "no-show", false, true)
	tableA := createTable(t, db, "t1", 1, 9, 1)
	seatPlayer(t, db, tableA, 1, "seated")

	if _, err := svc.ManualMove("t1", "ghost", tableA, 2); !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("expected ErrRegistrationNotFound, got %v", err)
	}
	if _, err := svc.ManualMove("t1", "no-show", tableA, 2); !errors.Is(err, ErrPlayerNotArrived) {
		t.Errorf("expected ErrPlayerNotArrived, got %v", err)
	}
	if _, err := svc.ManualMove("t1", "mover", "missing-table", 2); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
	if _, err := svc.ManualMove("t1", "mover", tableA, 1); !errors.Is(err, ErrSeatOccupied) {
		t.Errorf("expected ErrSeatOccupied, got %v", err)
	}
	if _, err := svc.ManualMove("t1", "mover", tableA, 10); !errors.Is(err, ErrInvalidSeatNumber) {
		t.Errorf("expected ErrInvalidSeatNumber, got %v", err)
	}
}

func TestManualMoveEliminatedPlayer(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	createRegistration(t, db, "t1", "p1", true, true)
	tableA := createTable(t, db, "t1", 1, 9, 1)
	seatPlayer(t, db, tableA, 1, "p1")

	if _, err := svc.Eliminate("t1", "p1"); err != nil {
		t.Fatalf("Eliminate: %v", err)
	}
	if _, err := svc.ManualMove("t1", "p1", tableA, 2); !errors.Is(err, ErrPlayerEliminated) {
		t.Errorf("expected ErrPlayerEliminated, got %v", err)
	}
}

func TestManualMoveCreatesSeatOnDemand(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	createRegistration(t, db, "t1", "p1", true, true)
	tableA := createTable(t, db, "t1", 1, 9, 0)

	seat, err := svc.ManualMove("t1", "p1", tableA, 7)
	if err != nil {
		t.Fatalf("ManualMove: %v", err)
	}
	if seat.SeatNumber != 7 || seat.Status != models.SeatStatusActive {
		t.Errorf("unexpected seat view: %+v", seat)
	}
	assertOccupancyCounters(t, db, "t1")
}

func TestEliminateSeatedPlayer(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	createRegistration(t, db, "t1", "p1", true, true)
	createRegistration(t, db, "t1", "p2", true, true)
	tableA := createTable(t, db, "t1", 1, 9, 2)
	seatPlayer(t, db, tableA, 1, "p1")
	seatPlayer(t, db, tableA, 2, "p2")

	seat, err := svc.Eliminate("t1", "p1")
	if err != nil {
		t.Fatalf("Eliminate: %v", err)
	}
	if seat == nil || seat.Status != models.SeatStatusEliminated {
		t.Fatalf("expected eliminated seat view, got %+v", seat)
	}

	var row models.Seat
	if err := db.Where("table_id = ? AND seat_number = ?", tableA, 1).First(&row).Error; err != nil {
		t.Fatalf("Failed to reload seat: %v", err)
	}
	if row.IsOccupied || row.Status != models.SeatStatusEliminated {
		t.Errorf("seat not marked eliminated: %+v", row)
	}

	assertOccupancyCounters(t, db, "t1")

	// Last player out deactivates the table.
	if _, err := svc.Eliminate("t1", "p2"); err != nil {
		t.Fatalf("Eliminate p2: %v", err)
	}
	var tbl models.Table
	if err := db.Where("id = ?", tableA).First(&tbl).Error; err != nil {
		t.Fatalf("Failed to reload table: %v", err)
	}
	if tbl.OccupiedSeats != 0 || tbl.Status != models.TableStatusInactive {
		t.Errorf("expected empty inactive table, got %+v", tbl)
	}
}

// Eliminating a player who never sat down is a documented no-op.
func TestEliminateUnseatedPlayer(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	createRegistration(t, db, "t1", "p1", true, true)

	seat, err := svc.Eliminate("t1", "p1")
	if err != nil {
		t.Fatalf("Eliminate: %v", err)
	}
	if seat != nil {
		t.Errorf("expected nil seat for unseated player, got %+v", seat)
	}
}

// Eliminated seats stay blocked: a rebalance after eliminations never hands
// an eliminated seat to a new player in the same pass, and the eliminated
// player is not reseated.
func TestRebalanceAfterElimination(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	createTournament(t, db, "t1", 9, nil)
	for i := 1; i <= 6; i++ {
		createRegistration(t, db, "t1", fmt.Sprintf("p%d", i), true, true)
	}
	tableA := createTable(t, db, "t1", 1, 9, 6)
	for i := 1; i <= 6; i++ {
		seatPlayer(t, db, tableA, i, fmt.Sprintf("p%d", i))
	}

	if _, err := svc.Eliminate("t1", "p3"); err != nil {
		t.Fatalf("Eliminate: %v", err)
	}
	if err := db.Model(&models.Registration{}).
		Where("tournament_id = ? AND player_id = ?", "t1", "p3").
		Update("is_active", false).Error; err != nil {
		t.Fatalf("Failed to deactivate registration: %v", err)
	}

	result, err := svc.Rebalance("t1", nil)
	if err != nil {
		t.Fatalf("Rebalance: %v", err)
	}
	if result.SeatsAssigned != 0 {
		t.Errorf("expected no assignments, got %d", result.SeatsAssigned)
	}

	var row models.Seat
	if err := db.Where("table_id = ? AND seat_number = ?", tableA, 3).First(&row).Error; err != nil {
		t.Fatalf("Failed to reload seat: %v", err)
	}
	if row.Status != models.SeatStatusEliminated || row.IsOccupied {
		t.Errorf("eliminated seat was reused: %+v", row)
	}
	assertNoDoubleSeat(t, db, "t1")
}
