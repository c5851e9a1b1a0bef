package seating

import (
	"pokerclub-platform/internal/models"
)

// TablesNeeded returns how many tables a field of playerCount needs with the
// given seats per table.
func TablesNeeded(playerCount, maxSeatsPerTable int) int {
	if playerCount <= 0 || maxSeatsPerTable <= 0 {
		return 0
	}
	return (playerCount + maxSeatsPerTable - 1) / maxSeatsPerTable
}

// TargetSizes splits playerCount across tableCount tables as evenly as
// possible. The first playerCount%tableCount tables carry one extra player,
// so any two targets differ by at most one.
func TargetSizes(playerCount, tableCount int) []int {
	if tableCount <= 0 {
		return nil
	}
	base := playerCount / tableCount
	remainder := playerCount % tableCount
	sizes := make([]int, tableCount)
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}
	return sizes
}

// PivotSelection picks count movers from occupants, walking seat numbers
// ascending starting at the first seat >= pivotSeat and wrapping around to
// the lowest seat. occupants must be sorted by seat number ascending.
func PivotSelection(occupants []models.SeatOccupant, pivotSeat, count int) []string {
	if count <= 0 || len(occupants) == 0 {
		return nil
	}
	if count > len(occupants) {
		count = len(occupants)
	}

	start := 0
	for i, o := range occupants {
		if o.SeatNumber >= pivotSeat {
			start = i
			break
		}
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, occupants[(start+i)%len(occupants)].PlayerID)
	}
	return ids
}
