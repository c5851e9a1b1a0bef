package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pokerclub-platform/internal/models"
	"pokerclub-platform/internal/seating"
)

// HandleInitializeTables creates the tournament's tables before play starts
func HandleInitializeTables(c *gin.Context, svc *seating.Service) {
	tournamentID := c.Param("id")

	created, err := svc.InitializeTables(tournamentID)
	if err != nil {
		respondSeatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables_created": created})
}

// HandleRebalance runs a balancing pass, optionally carrying tie-break
// resolutions from a previous needs_input response
func HandleRebalance(c *gin.Context, svc *seating.Service) {
	tournamentID := c.Param("id")

	var req struct {
		Resolutions []models.Resolution `json:"resolutions"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	result, err := svc.Rebalance(tournamentID, req.Resolutions)
	if err != nil {
		respondSeatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleManualMove seats a player at an explicit table and seat
func HandleManualMove(c *gin.Context, svc *seating.Service) {
	tournamentID := c.Param("id")
	playerID := c.Param("playerId")

	var req struct {
		TableID    string `json:"table_id" binding:"required"`
		SeatNumber int    `json:"seat_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	seat, err := svc.ManualMove(tournamentID, playerID, req.TableID, req.SeatNumber)
	if err != nil {
		respondSeatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, seat)
}

// HandleEliminate marks a seated player as eliminated. Eliminating a player
// who is not seated responds 200 with no seat.
func HandleEliminate(c *gin.Context, svc *seating.Service) {
	tournamentID := c.Param("id")
	playerID := c.Param("playerId")

	seat, err := svc.Eliminate(tournamentID, playerID)
	if err != nil {
		respondSeatingError(c, err)
		return
	}
	if seat == nil {
		c.JSON(http.StatusOK, gin.H{"eliminated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"eliminated": true, "seat": seat})
}

// HandleGetTables returns the tournament's tables and seats
func HandleGetTables(c *gin.Context, svc *seating.Service) {
	tournamentID := c.Param("id")

	tables, err := svc.ListTables(tournamentID)
	if err != nil {
		respondSeatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func respondSeatingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, seating.ErrTournamentNotFound),
		errors.Is(err, seating.ErrClubNotFound),
		errors.Is(err, seating.ErrTableNotFound),
		errors.Is(err, seating.ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, seating.ErrSeatOccupied):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, seating.ErrPlayerNotArrived),
		errors.Is(err, seating.ErrPlayerInactive),
		errors.Is(err, seating.ErrPlayerEliminated),
		errors.Is(err, seating.ErrInvalidSeatNumber),
		errors.Is(err, seating.ErrResolutionMissing),
		errors.Is(err, seating.ErrResolutionInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
