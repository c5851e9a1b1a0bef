package seating

import (
	"errors"

	"gorm.io/gorm"

	"pokerclub-platform/internal/models"
)

// ListTables returns every table of the tournament with its seats, ordered by
// table number. Empty seats have no row and are omitted; eliminated seats are
// included as historical markers.
func (s *Service) ListTables(tournamentID string) ([]models.TableView, error) {
	var tournament models.Tournament
	if err := s.db.Where("id = ?", tournamentID).First(&tournament).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var tables []models.Table
	if err := s.db.Where("tournament_id = ?", tournamentID).Order("table_number asc").Find(&tables).Error; err != nil {
		return nil, err
	}

	views := make([]models.TableView, 0, len(tables))
	for _, tbl := range tables {
		var seats []models.Seat
		if err := s.db.Where("table_id = ? AND (is_occupied = ? OR status = ?)",
			tbl.ID, true, models.SeatStatusEliminated).
			Order("seat_number asc").Find(&seats).Error; err != nil {
			return nil, err
		}

		view := models.TableView{
			ID:            tbl.ID,
			TableNumber:   tbl.TableNumber,
			MaxSeats:      tbl.MaxSeats,
			OccupiedSeats: tbl.OccupiedSeats,
			Status:        tbl.Status,
			Seats:         make([]models.SeatView, 0, len(seats)),
		}
		for _, seat := range seats {
			view.Seats = append(view.Seats, models.SeatView{
				SeatNumber:   seat.SeatNumber,
				OccupantID:   seat.OccupantID,
				OccupantName: seat.OccupantName,
				Status:       seat.Status,
			})
		}
		views = append(views, view)
	}

	return views, nil
}
