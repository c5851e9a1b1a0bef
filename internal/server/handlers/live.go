package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pokerclub-platform/internal/livestate"
)

// HandleGetLiveState serves the live clock and stats, cache-first
func HandleGetLiveState(c *gin.Context, svc *livestate.Service) {
	dto, err := svc.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandleGetTimer serves the clock-only snapshot
func HandleGetTimer(c *gin.Context, svc *livestate.Service) {
	snap, err := svc.Timer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// HandleStartLiveState initializes (or returns) the tournament's live state
func HandleStartLiveState(c *gin.Context, svc *livestate.Service) {
	dto, err := svc.GetOrCreate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandlePause halts the tournament clock
func HandlePause(c *gin.Context, svc *livestate.Service) {
	dto, err := svc.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandleResume restarts the tournament clock
func HandleResume(c *gin.Context, svc *livestate.Service) {
	dto, err := svc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandleSetTime overrides the remaining level time
func HandleSetTime(c *gin.Context, svc *livestate.Service) {
	var req struct {
		LevelRemainingSeconds int `json:"level_remaining_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dto, err := svc.SetRemainingTime(c.Request.Context(), c.Param("id"), req.LevelRemainingSeconds)
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandleAdvanceLevel moves the tournament to the next blind level
func HandleAdvanceLevel(c *gin.Context, svc *livestate.Service) {
	dto, err := svc.AdvanceLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandleRecalculateStats re-derives player and chip statistics
func HandleRecalculateStats(c *gin.Context, svc *livestate.Service) {
	dto, err := svc.RecalculateStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// HandleTeardown deletes the tournament's live state
func HandleTeardown(c *gin.Context, svc *livestate.Service) {
	if err := svc.Teardown(c.Request.Context(), c.Param("id")); err != nil {
		respondLiveError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func respondLiveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, livestate.ErrTournamentNotFound),
		errors.Is(err, livestate.ErrLiveStateMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
