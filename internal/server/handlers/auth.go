package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pokerclub-platform/internal/auth"
	"pokerclub-platform/internal/models"
)

// HandleLogin authenticates an operator and returns a signed token
func HandleLogin(c *gin.Context, database *gorm.DB, authService *auth.Service) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var op models.Operator
	if err := database.Where("username = ?", req.Username).First(&op).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !authService.CheckPassword(req.Password, op.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authService.GenerateToken(&op)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:    token,
		Operator: op.Username,
		Role:     op.Role,
	})
}
