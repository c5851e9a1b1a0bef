package seating

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pokerclub-platform/internal/locks"
	"pokerclub-platform/internal/models"
)

// Service owns tournament tables and seats: first seating, rebalancing,
// manual moves and eliminations. Every mutation runs inside a transaction
// under the tournament's lock.
type Service struct {
	db    *gorm.DB
	locks *locks.Manager

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates the seating service. rng may be nil, in which case a
// time-seeded source is used; tests pass a fixed seed to make assignment
// deterministic.
func NewService(db *gorm.DB, lockMgr *locks.Manager, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		db:    db,
		locks: lockMgr,
		rng:   rng,
	}
}

// poolPlayer is a player waiting for a seat during a balancing pass.
type poolPlayer struct {
	ID   string
	Name string
}

func (s *Service) shufflePool(pool []poolPlayer) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
}

// InitializeTables creates the tournament's tables before play starts. If the
// tournament belongs to a club the physical floor layout is mirrored (same
// numbering and capacity); otherwise enough tables for the arrived field are
// synthesized. Calling it again once tables exist is a no-op.
func (s *Service) InitializeTables(tournamentID string) (int, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var tournament models.Tournament
	if err := tx.Where("id = ?", tournamentID).First(&tournament).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}

	var existing int64
	if err := tx.Model(&models.Table{}).Where("tournament_id = ?", tournamentID).Count(&existing).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if existing > 0 {
		tx.Rollback()
		return 0, nil
	}

	var clubTables []models.ClubTable
	if tournament.ClubID != nil {
		var club models.Club
		if err := tx.Where("id = ?", *tournament.ClubID).First(&club).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrClubNotFound
			}
			return 0, err
		}
		if err := tx.Where("club_id = ?", club.ID).Order("table_number asc").Find(&clubTables).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	created := 0
	if len(clubTables) > 0 {
		for _, ct := range clubTables {
			capacity := ct.Capacity
			if capacity <= 0 {
				capacity = tournament.MaxSeatsPerTable
			}
			table := models.Table{
				ID:           uuid.New().String(),
				TournamentID: tournamentID,
				TableNumber:  ct.TableNumber,
				MaxSeats:     capacity,
				Status:       models.TableStatusInactive,
			}
			if err := tx.Create(&table).Error; err != nil {
				tx.Rollback()
				return 0, err
			}
			created++
		}
	} else {
		var arrived int64
		if err := tx.Model(&models.Registration{}).
			Where("tournament_id = ? AND is_arrived = ? AND is_active = ?", tournamentID, true, true).
			Count(&arrived).Error; err != nil {
			tx.Rollback()
			return 0, err
		}
		needed := TablesNeeded(int(arrived), tournament.MaxSeatsPerTable)
		for i := 1; i <= needed; i++ {
			table := models.Table{
				ID:           uuid.New().String(),
				TournamentID: tournamentID,
				TableNumber:  i,
				MaxSeats:     tournament.MaxSeatsPerTable,
				Status:       models.TableStatusInactive,
			}
			if err := tx.Create(&table).Error; err != nil {
				tx.Rollback()
				return 0, err
			}
			created++
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	log.Printf("[SEATING] initialized %d tables for tournament %s", created, tournamentID)
	return created, nil
}

// Rebalance runs one balancing pass over the tournament. It seats arrived
// players, evens out table sizes to near-equal targets and breaks tables
// that are no longer needed. When an over-full table needs a human tie-break
// and no resolution was supplied, nothing is changed and the returned result
// carries NeedsInput.
func (s *Service) Rebalance(tournamentID string, resolutions []models.Resolution) (*models.RebalanceResult, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var tournament models.Tournament
	if err := tx.Where("id = ?", tournamentID).First(&tournament).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var tables []models.Table
	if err := tx.Where("tournament_id = ?", tournamentID).Order("table_number asc").Find(&tables).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	tableIDs := make([]string, len(tables))
	for i, tbl := range tables {
		tableIDs[i] = tbl.ID
	}

	var seats []models.Seat
	if len(tableIDs) > 0 {
		if err := tx.Where("table_id IN ?", tableIDs).Order("seat_number asc").Find(&seats).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Index the current layout. Eliminated seat rows block their seat number
	// for this pass but never count as occupants.
	occupantsByTable := make(map[string][]models.SeatOccupant)
	blockedByTable := make(map[string]map[int]bool)
	rowByTableSeat := make(map[string]map[int]*models.Seat)
	seatByPlayer := make(map[string]*models.Seat)
	seated := make(map[string]bool)

	for i := range seats {
		seat := &seats[i]
		if rowByTableSeat[seat.TableID] == nil {
			rowByTableSeat[seat.TableID] = make(map[int]*models.Seat)
			blockedByTable[seat.TableID] = make(map[int]bool)
		}
		rowByTableSeat[seat.TableID][seat.SeatNumber] = seat

		switch {
		case seat.IsOccupied && seat.OccupantID != nil:
			occupantsByTable[seat.TableID] = append(occupantsByTable[seat.TableID], models.SeatOccupant{
				PlayerID:    *seat.OccupantID,
				DisplayName: seat.OccupantName,
				SeatNumber:  seat.SeatNumber,
			})
			blockedByTable[seat.TableID][seat.SeatNumber] = true
			seatByPlayer[*seat.OccupantID] = seat
			seated[*seat.OccupantID] = true
		case seat.Status == models.SeatStatusEliminated:
			blockedByTable[seat.TableID][seat.SeatNumber] = true
		}
	}

	var regs []models.Registration
	if err := tx.Where("tournament_id = ? AND is_arrived = ? AND is_active = ?", tournamentID, true, true).
		Order("created_at asc").Find(&regs).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var unseated []poolPlayer
	for _, reg := range regs {
		if !seated[reg.PlayerID] {
			unseated = append(unseated, poolPlayer{ID: reg.PlayerID, Name: reg.DisplayName})
		}
	}

	seatedCount := 0
	for _, occ := range occupantsByTable {
		seatedCount += len(occ)
	}
	totalPlayers := seatedCount + len(unseated)

	if totalPlayers == 0 {
		tx.Rollback()
		return &models.RebalanceResult{}, nil
	}

	// Grow the floor if the field does not fit.
	tablesNeeded := TablesNeeded(totalPlayers, tournament.MaxSeatsPerTable)
	nextNumber := 1
	if len(tables) > 0 {
		nextNumber = tables[len(tables)-1].TableNumber + 1
	}
	tablesCreated := 0
	for len(tables) < tablesNeeded {
		table := models.Table{
			ID:           uuid.New().String(),
			TournamentID: tournamentID,
			TableNumber:  nextNumber,
			MaxSeats:     tournament.MaxSeatsPerTable,
			Status:       models.TableStatusInactive,
		}
		if err := tx.Create(&table).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		tables = append(tables, table)
		nextNumber++
		tablesCreated++
	}

	// Near-equal targets for the tables that stay; surplus tables get zero
	// and break.
	targets := TargetSizes(totalPlayers, tablesNeeded)
	for len(targets) < len(tables) {
		targets = append(targets, 0)
	}

	var decisions []models.TableDecision
	for i, tbl := range tables {
		occ := occupantsByTable[tbl.ID]
		if len(occ) > targets[i] {
			decisions = append(decisions, models.TableDecision{
				TableID:     tbl.ID,
				TableNumber: tbl.TableNumber,
				ExcessCount: len(occ) - targets[i],
				Occupants:   occ,
			})
		}
	}

	if len(decisions) > 0 && len(resolutions) == 0 {
		tx.Rollback()
		return &models.RebalanceResult{NeedsInput: decisions}, nil
	}

	resByTable := make(map[string]models.Resolution, len(resolutions))
	for _, r := range resolutions {
		resByTable[r.TableID] = r
	}

	pool := append([]poolPlayer(nil), unseated...)
	curCount := make([]int, len(tables))
	for i, tbl := range tables {
		curCount[i] = len(occupantsByTable[tbl.ID])
	}

	for _, d := range decisions {
		res, ok := resByTable[d.TableID]
		if !ok {
			tx.Rollback()
			return nil, ErrResolutionMissing
		}
		moverIDs, err := selectMovers(d, res)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		for _, playerID := range moverIDs {
			seat := seatByPlayer[playerID]
			pool = append(pool, poolPlayer{ID: playerID, Name: seat.OccupantName})

			if err := tx.Model(&models.Seat{}).Where("id = ?", seat.ID).Updates(map[string]interface{}{
				"occupant_id":   nil,
				"occupant_name": "",
				"is_occupied":   false,
				"status":        models.SeatStatusWaiting,
			}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			delete(blockedByTable[seat.TableID], seat.SeatNumber)
		}

		for i, tbl := range tables {
			if tbl.ID == d.TableID {
				curCount[i] -= len(moverIDs)
			}
		}
	}

	// Fill tables starting with the ones closest to their target, lowest
	// table number first on ties.
	type slot struct {
		tableIdx   int
		seatNumber int
	}
	order := make([]int, len(tables))
	for i := range order {
		order[i] = i
	}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, b := order[i], order[j]
			needA := targets[a] - curCount[a]
			needB := targets[b] - curCount[b]
			if needB < needA || (needB == needA && tables[b].TableNumber < tables[a].TableNumber) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	var slots []slot
	for _, i := range order {
		need := targets[i] - curCount[i]
		if need <= 0 {
			continue
		}
		blocked := blockedByTable[tables[i].ID]
		for sn := 1; sn <= tables[i].MaxSeats && need > 0; sn++ {
			if blocked[sn] {
				continue
			}
			slots = append(slots, slot{tableIdx: i, seatNumber: sn})
			need--
		}
	}

	s.shufflePool(pool)

	seatsAssigned := 0
	for k := 0; k < len(pool) && k < len(slots); k++ {
		player := pool[k]
		sl := slots[k]
		tbl := tables[sl.tableIdx]

		playerID := player.ID
		if row, ok := rowByTableSeat[tbl.ID][sl.seatNumber]; ok {
			if err := tx.Model(&models.Seat{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
				"occupant_id":   playerID,
				"occupant_name": player.Name,
				"is_occupied":   true,
				"status":        models.SeatStatusActive,
			}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			seat := models.Seat{
				TableID:      tbl.ID,
				SeatNumber:   sl.seatNumber,
				OccupantID:   &playerID,
				OccupantName: player.Name,
				IsOccupied:   true,
				Status:       models.SeatStatusActive,
			}
			if err := tx.Create(&seat).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		curCount[sl.tableIdx]++
		seatsAssigned++
	}

	for i, tbl := range tables {
		status := models.TableStatusInactive
		if curCount[i] > 0 {
			status = models.TableStatusActive
		}
		if err := tx.Model(&models.Table{}).Where("id = ?", tbl.ID).Updates(map[string]interface{}{
			"occupied_seats": curCount[i],
			"status":         status,
		}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	log.Printf("[SEATING] rebalanced tournament %s: %d tables created, %d seats assigned",
		tournamentID, tablesCreated, seatsAssigned)

	return &models.RebalanceResult{
		TablesCreated: tablesCreated,
		SeatsAssigned: seatsAssigned,
	}, nil
}

// selectMovers resolves which occupants leave an over-full table. An explicit
// player list wins over a pivot seat; the first ExcessCount listed players
// move.
func selectMovers(d models.TableDecision, res models.Resolution) ([]string, error) {
	if len(res.PlayerIDs) > 0 {
		if len(res.PlayerIDs) < d.ExcessCount {
			return nil, ErrResolutionInvalid
		}
		occupantSet := make(map[string]bool, len(d.Occupants))
		for _, o := range d.Occupants {
			occupantSet[o.PlayerID] = true
		}
		picked := make([]string, 0, d.ExcessCount)
		seen := make(map[string]bool)
		for _, id := range res.PlayerIDs {
			if !occupantSet[id] || seen[id] {
				return nil, ErrResolutionInvalid
			}
			seen[id] = true
			picked = append(picked, id)
			if len(picked) == d.ExcessCount {
				return picked, nil
			}
		}
		return nil, ErrResolutionInvalid
	}
	if res.PivotSeat != nil {
		return PivotSelection(d.Occupants, *res.PivotSeat, d.ExcessCount), nil
	}
	return nil, ErrResolutionInvalid
}

// ManualMove seats a player at an explicit table and seat, vacating their
// current seat if they have one. Moving a player onto the seat they already
// hold is a no-op.
func (s *Service) ManualMove(tournamentID, playerID, tableID string, seatNumber int) (*models.SeatView, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var reg models.Registration
	if err := tx.Where("tournament_id = ? AND player_id = ?", tournamentID, playerID).First(&reg).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if !reg.IsArrived {
		tx.Rollback()
		return nil, ErrPlayerNotArrived
	}
	if !reg.IsActive {
		tx.Rollback()
		return nil, ErrPlayerInactive
	}

	var eliminated int64
	if err := tx.Model(&models.Seat{}).
		Joins("JOIN tournament_tables t ON t.id = tournament_seats.table_id").
		Where("t.tournament_id = ? AND tournament_seats.occupant_id = ? AND tournament_seats.status = ?",
			tournamentID, playerID, models.SeatStatusEliminated).
		Count(&eliminated).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if eliminated > 0 {
		tx.Rollback()
		return nil, ErrPlayerEliminated
	}

	var table models.Table
	if err := tx.Where("id = ? AND tournament_id = ?", tableID, tournamentID).First(&table).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	if seatNumber < 1 || seatNumber > table.MaxSeats {
		tx.Rollback()
		return nil, ErrInvalidSeatNumber
	}

	var target models.Seat
	targetExists := true
	if err := tx.Where("table_id = ? AND seat_number = ?", tableID, seatNumber).First(&target).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			tx.Rollback()
			return nil, err
		}
		targetExists = false
	}
	if targetExists && (target.IsOccupied || target.Status == models.SeatStatusEliminated) {
		if target.OccupantID != nil && *target.OccupantID == playerID && target.IsOccupied {
			// Already sitting there.
			tx.Rollback()
			return &models.SeatView{
				SeatNumber:   target.SeatNumber,
				OccupantID:   target.OccupantID,
				OccupantName: target.OccupantName,
				Status:       target.Status,
			}, nil
		}
		tx.Rollback()
		return nil, ErrSeatOccupied
	}

	// Vacate the player's current seat, if any.
	var current models.Seat
	err := tx.Joins("JOIN tournament_tables t ON t.id = tournament_seats.table_id").
		Where("t.tournament_id = ? AND tournament_seats.occupant_id = ? AND tournament_seats.is_occupied = ?",
			tournamentID, playerID, true).
		First(&current).Error
	switch {
	case err == nil:
		if err := tx.Model(&models.Seat{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
			"occupant_id":   nil,
			"occupant_name": "",
			"is_occupied":   false,
			"status":        models.SeatStatusWaiting,
		}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := vacateTableCounter(tx, current.TableID); err != nil {
			tx.Rollback()
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Player was unseated; nothing to vacate.
	default:
		tx.Rollback()
		return nil, err
	}

	if targetExists {
		if err := tx.Model(&models.Seat{}).Where("id = ?", target.ID).Updates(map[string]interface{}{
			"occupant_id":   playerID,
			"occupant_name": reg.DisplayName,
			"is_occupied":   true,
			"status":        models.SeatStatusActive,
		}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		seat := models.Seat{
			TableID:      tableID,
			SeatNumber:   seatNumber,
			OccupantID:   &playerID,
			OccupantName: reg.DisplayName,
			IsOccupied:   true,
			Status:       models.SeatStatusActive,
		}
		if err := tx.Create(&seat).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(&models.Table{}).Where("id = ?", tableID).Updates(map[string]interface{}{
		"occupied_seats": gorm.Expr("occupied_seats + 1"),
		"status":         models.TableStatusActive,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &models.SeatView{
		SeatNumber:   seatNumber,
		OccupantID:   &playerID,
		OccupantName: reg.DisplayName,
		Status:       models.SeatStatusActive,
	}, nil
}

// Eliminate marks a seated player's seat as eliminated and frees the table
// capacity. The seat row stays behind as a historical marker and keeps
// blocking its seat number for the current balancing pass. Eliminating a
// player who is not seated is a no-op.
func (s *Service) Eliminate(tournamentID, playerID string) (*models.SeatView, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var seat models.Seat
	err := tx.Joins("JOIN tournament_tables t ON t.id = tournament_seats.table_id").
		Where("t.tournament_id = ? AND tournament_seats.occupant_id = ? AND tournament_seats.is_occupied = ?",
			tournamentID, playerID, true).
		First(&seat).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := tx.Model(&models.Seat{}).Where("id = ?", seat.ID).Updates(map[string]interface{}{
		"is_occupied": false,
		"status":      models.SeatStatusEliminated,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := vacateTableCounter(tx, seat.TableID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	log.Printf("[SEATING] eliminated player %s from tournament %s", playerID, tournamentID)

	return &models.SeatView{
		SeatNumber:   seat.SeatNumber,
		OccupantID:   seat.OccupantID,
		OccupantName: seat.OccupantName,
		Status:       models.SeatStatusEliminated,
	}, nil
}

// vacateTableCounter decrements a table's occupied counter and deactivates
// the table when it empties.
func vacateTableCounter(tx *gorm.DB, tableID string) error {
	var table models.Table
	if err := tx.Where("id = ?", tableID).First(&table).Error; err != nil {
		return err
	}
	count := table.OccupiedSeats - 1
	if count < 0 {
		count = 0
	}
	status := table.Status
	if count == 0 {
		status = models.TableStatusInactive
	}
	return tx.Model(&models.Table{}).Where("id = ?", tableID).Updates(map[string]interface{}{
		"occupied_seats": count,
		"status":         status,
	}).Error
}
