package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"pokerclub-platform/internal/auth"
	"pokerclub-platform/internal/db"
	"pokerclub-platform/internal/livecache"
	"pokerclub-platform/internal/livestate"
	"pokerclub-platform/internal/locks"
	"pokerclub-platform/internal/middleware"
	"pokerclub-platform/internal/models"
	"pokerclub-platform/internal/notify"
	"pokerclub-platform/internal/redis"
	"pokerclub-platform/internal/seating"
	"pokerclub-platform/internal/server/handlers"
	"pokerclub-platform/internal/server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	database, err := db.New(db.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		User:     getEnv("DB_USER", "pokerclub"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "pokerclub"),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var cache livecache.Store
	redisClient, err := redis.New(redis.Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	if err != nil {
		log.Printf("Redis unavailable, running without fast cache: %v", err)
		cache = livecache.Disabled{}
	} else {
		defer redisClient.Close()
		cache = livecache.NewRedisStore(redisClient, livecache.DefaultTTL)
	}

	lockManager := locks.NewManager()
	broker := notify.NewBroker()
	authService := auth.NewService(getEnv("JWT_SECRET", "change-me-in-production"))

	seatingService := seating.NewService(database.DB, lockManager, nil)
	liveService := livestate.NewService(database.DB, cache, lockManager, broker)
	hub := ws.NewHub(broker, authService)

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig)
	defer rateLimiter.Stop()

	if getEnv("ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}
	r.Use(cors.New(corsConfig))

	// Public routes
	r.POST("/api/auth/login", func(c *gin.Context) {
		handlers.HandleLogin(c, database.DB, authService)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(authMiddleware(authService))
	authorized.Use(rateLimiter.Gin())
	{
		authorized.POST("/api/tournaments/:id/tables/init", func(c *gin.Context) {
			handlers.HandleInitializeTables(c, seatingService)
		})
		authorized.POST("/api/tournaments/:id/rebalance", func(c *gin.Context) {
			handlers.HandleRebalance(c, seatingService)
		})
		authorized.GET("/api/tournaments/:id/tables", func(c *gin.Context) {
			handlers.HandleGetTables(c, seatingService)
		})
		authorized.POST("/api/tournaments/:id/players/:playerId/move", func(c *gin.Context) {
			handlers.HandleManualMove(c, seatingService)
		})
		authorized.POST("/api/tournaments/:id/players/:playerId/eliminate", func(c *gin.Context) {
			handlers.HandleEliminate(c, seatingService)
		})

		authorized.GET("/api/tournaments/:id/live", func(c *gin.Context) {
			handlers.HandleGetLiveState(c, liveService)
		})
		authorized.GET("/api/tournaments/:id/live/timer", func(c *gin.Context) {
			handlers.HandleGetTimer(c, liveService)
		})
		authorized.POST("/api/tournaments/:id/live", func(c *gin.Context) {
			handlers.HandleStartLiveState(c, liveService)
		})
		authorized.POST("/api/tournaments/:id/live/pause", func(c *gin.Context) {
			handlers.HandlePause(c, liveService)
		})
		authorized.POST("/api/tournaments/:id/live/resume", func(c *gin.Context) {
			handlers.HandleResume(c, liveService)
		})
		authorized.POST("/api/tournaments/:id/live/time", func(c *gin.Context) {
			handlers.HandleSetTime(c, liveService)
		})
		authorized.POST("/api/tournaments/:id/live/level", func(c *gin.Context) {
			handlers.HandleAdvanceLevel(c, liveService)
		})
		authorized.POST("/api/tournaments/:id/live/recalculate", func(c *gin.Context) {
			handlers.HandleRecalculateStats(c, liveService)
		})
		authorized.DELETE("/api/tournaments/:id/live", func(c *gin.Context) {
			handlers.HandleTeardown(c, liveService)
		})
	}

	// WebSocket endpoint (handles auth internally)
	r.GET("/ws", hub.HandleWebSocket)

	if getEnv("SEED_OPERATOR", "") == "true" {
		seedOperator(database.DB, authService)
	}

	port := getEnv("SERVER_PORT", "8080")
	log.Printf("Server starting on port %s", port)
	log.Fatal(r.Run(":" + port))
}

func authMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		token := authHeader[7:]
		operatorID, err := authService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("operator_id", operatorID)
		c.Next()
	}
}

// seedOperator creates a default floor account for fresh installs.
func seedOperator(database *gorm.DB, authService *auth.Service) {
	var count int64
	if err := database.Model(&models.Operator{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	hash, err := authService.HashPassword(getEnv("SEED_OPERATOR_PASSWORD", "floor"))
	if err != nil {
		log.Printf("Failed to hash seed operator password: %v", err)
		return
	}
	op := models.Operator{
		ID:           uuid.New().String(),
		Username:     getEnv("SEED_OPERATOR_USERNAME", "floor"),
		PasswordHash: hash,
		Role:         "admin",
	}
	if err := database.Create(&op).Error; err != nil {
		log.Printf("Failed to seed operator: %v", err)
		return
	}
	log.Printf("Seeded operator account %q", op.Username)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
