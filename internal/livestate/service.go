package livestate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"pokerclub-platform/internal/livecache"
	"pokerclub-platform/internal/locks"
	"pokerclub-platform/internal/models"
	"pokerclub-platform/internal/notify"
)

// DefaultLevelDurationSeconds is used when a tournament's blind structure
// has no entry for the current level.
const DefaultLevelDurationSeconds = 1200

// Notifier pushes live state events to floor displays.
type Notifier interface {
	Publish(ev notify.Event)
}

// Service owns the live clock and derived stats of running tournaments. The
// durable row is the source of truth; the cache is a TTL mirror written only
// after the durable write succeeds. All mutations serialize per tournament
// through the shared lock manager.
type Service struct {
	db       *gorm.DB
	cache    livecache.Store
	locks    *locks.Manager
	notifier Notifier
}

func NewService(db *gorm.DB, cache livecache.Store, lockMgr *locks.Manager, notifier Notifier) *Service {
	return &Service{
		db:       db,
		cache:    cache,
		locks:    lockMgr,
		notifier: notifier,
	}
}

// GetOrCreate returns the tournament's live state, creating the durable row
// on first use. The clock starts at the configured duration of the
// tournament's current level, running and unpaused. Concurrent first calls
// produce exactly one row.
func (s *Service) GetOrCreate(ctx context.Context, tournamentID string) (*models.LiveStateDTO, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	var tournament models.Tournament
	if err := s.db.WithContext(ctx).Where("id = ?", tournamentID).First(&tournament).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var state models.LiveState
	err := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		level := tournament.CurrentLevel
		if level < 1 {
			level = 1
		}
		state = models.LiveState{
			TournamentID:          tournamentID,
			CurrentLevel:          level,
			LevelRemainingSeconds: levelDuration(tournament.Levels, level),
			LiveStatus:            models.LiveStatusRunning,
		}
		if createErr := s.db.WithContext(ctx).Create(&state).Error; createErr != nil {
			// Another process may have won the race on the unique index.
			if fetchErr := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&state).Error; fetchErr != nil {
				return nil, createErr
			}
		} else {
			log.Printf("[LIVE] created live state for tournament %s at level %d", tournamentID, state.CurrentLevel)
		}
	} else if err != nil {
		return nil, err
	}

	dto := buildDTO(&state, &tournament)
	s.cache.SetSnapshot(ctx, dto)
	s.cache.SetTimer(ctx, tournamentID, timerFrom(&state, dto.ObservedAt))
	return dto, nil
}

// ApplyUpdate is the single mutation path for the durable live state. Nil
// fields of upd are untouched. The durable row is written first, then the
// cache, then subscribers are notified.
func (s *Service) ApplyUpdate(ctx context.Context, tournamentID string, upd models.LiveStateUpdate) (*models.LiveStateDTO, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	return s.applyLocked(ctx, tournamentID, upd)
}

func (s *Service) applyLocked(ctx context.Context, tournamentID string, upd models.LiveStateUpdate) (*models.LiveStateDTO, error) {
	var state models.LiveState
	if err := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLiveStateMissing
		}
		return nil, err
	}

	fields := make(map[string]interface{})
	if upd.CurrentLevel != nil {
		fields["current_level"] = *upd.CurrentLevel
		state.CurrentLevel = *upd.CurrentLevel
	}
	if upd.LevelRemainingSeconds != nil {
		fields["level_remaining_seconds"] = *upd.LevelRemainingSeconds
		state.LevelRemainingSeconds = *upd.LevelRemainingSeconds
	}
	if upd.PlayersCount != nil {
		fields["players_count"] = *upd.PlayersCount
		state.PlayersCount = *upd.PlayersCount
	}
	if upd.TotalParticipants != nil {
		fields["total_participants"] = *upd.TotalParticipants
		state.TotalParticipants = *upd.TotalParticipants
	}
	if upd.TotalEntries != nil {
		fields["total_entries"] = *upd.TotalEntries
		state.TotalEntries = *upd.TotalEntries
	}
	if upd.TotalChipsInPlay != nil {
		fields["total_chips_in_play"] = *upd.TotalChipsInPlay
		state.TotalChipsInPlay = *upd.TotalChipsInPlay
	}
	if upd.AverageStack != nil {
		fields["average_stack"] = *upd.AverageStack
		state.AverageStack = *upd.AverageStack
	}
	if upd.IsPaused != nil {
		fields["is_paused"] = *upd.IsPaused
		state.IsPaused = *upd.IsPaused
	}
	if upd.LiveStatus != nil {
		fields["live_status"] = *upd.LiveStatus
		state.LiveStatus = *upd.LiveStatus
	}

	now := time.Now().UTC()
	if len(fields) > 0 {
		fields["updated_at"] = now
		if err := s.db.WithContext(ctx).Model(&models.LiveState{}).
			Where("tournament_id = ?", tournamentID).Updates(fields).Error; err != nil {
			return nil, err
		}
		state.UpdatedAt = now
	}

	var tournament models.Tournament
	if err := s.db.WithContext(ctx).Where("id = ?", tournamentID).First(&tournament).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dto := buildDTO(&state, &tournament)
	s.cache.SetSnapshot(ctx, dto)
	if upd.CurrentLevel != nil || upd.LevelRemainingSeconds != nil || upd.IsPaused != nil {
		s.cache.SetTimer(ctx, tournamentID, timerFrom(&state, dto.ObservedAt))
	}

	s.notifier.Publish(notify.Event{
		Type:         notify.EventStateChanged,
		TournamentID: tournamentID,
		State:        dto,
	})
	return dto, nil
}

// RecalculateStats re-derives the player and chip statistics from the seat
// store, registrations and recorded operations, then persists them through
// the normal update path.
func (s *Service) RecalculateStats(ctx context.Context, tournamentID string) (*models.LiveStateDTO, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	var tournament models.Tournament
	if err := s.db.WithContext(ctx).Where("id = ?", tournamentID).First(&tournament).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var playersCount int64
	if err := s.db.WithContext(ctx).Model(&models.Seat{}).
		Joins("JOIN tournament_tables t ON t.id = tournament_seats.table_id").
		Where("t.tournament_id = ? AND tournament_seats.is_occupied = ? AND tournament_seats.status = ?",
			tournamentID, true, models.SeatStatusActive).
		Count(&playersCount).Error; err != nil {
		return nil, err
	}

	var totalParticipants int64
	if err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("tournament_id = ?", tournamentID).Count(&totalParticipants).Error; err != nil {
		return nil, err
	}

	var rebuys int64
	if err := s.db.WithContext(ctx).Model(&models.TournamentOperation{}).
		Where("tournament_id = ? AND op_type = ?", tournamentID, models.OperationRebuy).
		Count(&rebuys).Error; err != nil {
		return nil, err
	}

	var addons int64
	if err := s.db.WithContext(ctx).Model(&models.TournamentOperation{}).
		Where("tournament_id = ? AND op_type = ?", tournamentID, models.OperationAddon).
		Count(&addons).Error; err != nil {
		return nil, err
	}

	totalEntries := int(totalParticipants + rebuys)
	totalChips := int(totalParticipants)*tournament.StartingStack +
		int(rebuys)*tournament.RebuyChips +
		int(addons)*tournament.AddonChips

	divisor := int(playersCount)
	if divisor == 0 {
		divisor = int(totalParticipants)
	}
	averageStack := 0
	if divisor > 0 {
		averageStack = totalChips / divisor
	}

	players := int(playersCount)
	participants := int(totalParticipants)
	return s.applyLocked(ctx, tournamentID, models.LiveStateUpdate{
		PlayersCount:      &players,
		TotalParticipants: &participants,
		TotalEntries:      &totalEntries,
		TotalChipsInPlay:  &totalChips,
		AverageStack:      &averageStack,
	})
}

// Pause halts the clock. Pausing an already paused tournament is harmless.
func (s *Service) Pause(ctx context.Context, tournamentID string) (*models.LiveStateDTO, error) {
	paused := true
	status := models.LiveStatusPaused
	return s.ApplyUpdate(ctx, tournamentID, models.LiveStateUpdate{
		IsPaused:   &paused,
		LiveStatus: &status,
	})
}

// Resume restarts the clock.
func (s *Service) Resume(ctx context.Context, tournamentID string) (*models.LiveStateDTO, error) {
	paused := false
	status := models.LiveStatusRunning
	return s.ApplyUpdate(ctx, tournamentID, models.LiveStateUpdate{
		IsPaused:   &paused,
		LiveStatus: &status,
	})
}

// SetRemainingTime overrides the clock, clamped at zero.
func (s *Service) SetRemainingTime(ctx context.Context, tournamentID string, seconds int) (*models.LiveStateDTO, error) {
	if seconds < 0 {
		seconds = 0
	}
	return s.ApplyUpdate(ctx, tournamentID, models.LiveStateUpdate{
		LevelRemainingSeconds: &seconds,
	})
}

// AdvanceLevel moves the tournament to the next blind level and resets the
// clock to that level's configured duration. Subscribers get a level_changed
// event after the regular state_changed one.
func (s *Service) AdvanceLevel(ctx context.Context, tournamentID string) (*models.LiveStateDTO, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	var state models.LiveState
	if err := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLiveStateMissing
		}
		return nil, err
	}

	var tournament models.Tournament
	if err := s.db.WithContext(ctx).Where("id = ?", tournamentID).First(&tournament).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	nextLevel := state.CurrentLevel + 1
	duration := levelDuration(tournament.Levels, nextLevel)

	dto, err := s.applyLocked(ctx, tournamentID, models.LiveStateUpdate{
		CurrentLevel:          &nextLevel,
		LevelRemainingSeconds: &duration,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", tournamentID).Update("current_level", nextLevel).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(notify.Event{
		Type:            notify.EventLevelChanged,
		TournamentID:    tournamentID,
		Level:           nextLevel,
		DurationSeconds: duration,
	})
	log.Printf("[LIVE] tournament %s advanced to level %d (%ds)", tournamentID, nextLevel, duration)
	return dto, nil
}

// Read returns the live state, preferring the cached snapshot. On a miss it
// rebuilds the snapshot from the durable row under the tournament lock so a
// concurrent mutation cannot be overwritten by a stale rebuild.
func (s *Service) Read(ctx context.Context, tournamentID string) (*models.LiveStateDTO, error) {
	if dto, ok := s.cache.GetSnapshot(ctx, tournamentID); ok {
		return dto, nil
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	if dto, ok := s.cache.GetSnapshot(ctx, tournamentID); ok {
		return dto, nil
	}

	var state models.LiveState
	if err := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLiveStateMissing
		}
		return nil, err
	}

	var tournament models.Tournament
	if err := s.db.WithContext(ctx).Where("id = ?", tournamentID).First(&tournament).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dto := buildDTO(&state, &tournament)
	s.cache.SetSnapshot(ctx, dto)
	return dto, nil
}

// Timer returns the clock-only snapshot, rebuilding it from the durable row
// on a cache miss.
func (s *Service) Timer(ctx context.Context, tournamentID string) (*models.TimerSnapshot, error) {
	if snap, ok := s.cache.GetTimer(ctx, tournamentID); ok {
		return snap, nil
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	if snap, ok := s.cache.GetTimer(ctx, tournamentID); ok {
		return snap, nil
	}

	var state models.LiveState
	if err := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLiveStateMissing
		}
		return nil, err
	}

	snap := timerFrom(&state, time.Now().UTC())
	s.cache.SetTimer(ctx, tournamentID, snap)
	return snap, nil
}

// Teardown removes the tournament's durable live state and evicts both cache
// entries. Tearing down a tournament that was never set up succeeds.
func (s *Service) Teardown(ctx context.Context, tournamentID string) error {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	if err := s.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).
		Delete(&models.LiveState{}).Error; err != nil {
		return err
	}
	s.cache.Delete(ctx, tournamentID)
	return nil
}

func buildDTO(state *models.LiveState, tournament *models.Tournament) *models.LiveStateDTO {
	return &models.LiveStateDTO{
		TournamentID:          state.TournamentID,
		CurrentLevel:          state.CurrentLevel,
		LevelRemainingSeconds: state.LevelRemainingSeconds,
		PlayersCount:          state.PlayersCount,
		TotalParticipants:     state.TotalParticipants,
		TotalEntries:          state.TotalEntries,
		TotalChipsInPlay:      state.TotalChipsInPlay,
		AverageStack:          state.AverageStack,
		IsPaused:              state.IsPaused,
		LiveStatus:            state.LiveStatus,
		NextBreakTime:         tournament.NextBreakTime,
		ObservedAt:            time.Now().UTC(),
		UpdatedAt:             state.UpdatedAt,
	}
}

func timerFrom(state *models.LiveState, observedAt time.Time) *models.TimerSnapshot {
	return &models.TimerSnapshot{
		CurrentLevel:          state.CurrentLevel,
		LevelRemainingSeconds: state.LevelRemainingSeconds,
		IsPaused:              state.IsPaused,
		ObservedAt:            observedAt,
	}
}

// levelDuration looks up the configured duration for a level in the
// tournament's blind structure JSON, falling back to the default when the
// structure is absent or has no entry for the level.
func levelDuration(levelsJSON string, level int) int {
	if levelsJSON == "" {
		return DefaultLevelDurationSeconds
	}
	var levels []models.LevelConfig
	if err := json.Unmarshal([]byte(levelsJSON), &levels); err != nil {
		log.Printf("[LIVE] unreadable blind structure, using default duration: %v", err)
		return DefaultLevelDurationSeconds
	}
	for _, lc := range levels {
		if lc.Level == level && lc.DurationSeconds > 0 {
			return lc.DurationSeconds
		}
	}
	return DefaultLevelDurationSeconds
}
