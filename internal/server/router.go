package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sidequest-backend/internal/handlers"
	"github.com/yungbote/sidequest-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	ProfileHandler *handlers.ProfileHandler
	BoardHandler   *handlers.BoardHandler
	QuestHandler   *handlers.QuestHandler
	HistoryHandler *handlers.HistoryHandler
	VotingHandler  *handlers.VotingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	api := router.Group("/sidequest")

	// ===============
	// || Public    ||
	// ===============
	api.GET("/health", handlers.HealthCheck)
	api.POST("/auth/anonymous/signin", cfg.AuthHandler.AnonymousSignin)
	api.POST("/auth/apple/signin", cfg.AuthHandler.AppleSignin)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Profile
	protected.GET("/me", cfg.ProfileHandler.GetMe)
	protected.PUT("/me", cfg.ProfileHandler.UpdateMe)
	protected.DELETE("/me", cfg.AuthHandler.DeleteMe)
	protected.POST("/onboarding/complete", cfg.ProfileHandler.CompleteOnboarding)
	protected.GET("/local-time", cfg.ProfileHandler.LocalTime)
	// Quest board
	protected.GET("/quests/needs-refresh", cfg.BoardHandler.NeedsRefresh)
	protected.GET("/quests/board", cfg.BoardHandler.GetBoard)
	protected.POST("/quests/refresh", cfg.BoardHandler.RefreshBoard)
	protected.PUT("/quests/status/:action", cfg.QuestHandler.UpdateStatus)
	// History
	protected.GET("/history/stats", cfg.HistoryHandler.Stats)
	protected.GET("/history/7day", cfg.HistoryHandler.SevenDay)
	// Voting
	protected.GET("/voting/quests", cfg.VotingHandler.GetQuests)
	protected.POST("/voting/vote", cfg.VotingHandler.Vote)
	protected.GET("/voting/my-votes", cfg.VotingHandler.MyVotes)
	protected.GET("/voting/stats/:template_id", cfg.VotingHandler.Stats)

	return router
}
