package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/yungbote/sidequest-backend/internal/clients/redis"
	"github.com/yungbote/sidequest-backend/internal/db"
	"github.com/yungbote/sidequest-backend/internal/handlers"
	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/middleware"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/server"
	"github.com/yungbote/sidequest-backend/internal/services"
	"github.com/yungbote/sidequest-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := os.Getenv("JWT_SECRET_KEY")
	if jwtSecretKey == "" {
		log.Error("JWT_SECRET_KEY is required")
		os.Exit(1)
	}
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	appleClientID := utils.GetEnv("APPLE_CLIENT_ID", "", log)
	adminEmails := strings.Split(utils.GetEnv("ADMIN_EMAILS", "", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userProfileRepo := repos.NewUserProfileRepo(thePG, log)
	questTemplateRepo := repos.NewQuestTemplateRepo(thePG, log)
	questBoardRepo := repos.NewQuestBoardRepo(thePG, log)
	userQuestRepo := repos.NewUserQuestRepo(thePG, log)
	generationLogRepo := repos.NewGenerationLogRepo(thePG, log)
	templateVoteRepo := repos.NewTemplateVoteRepo(thePG, log)

	// Redis (optional; vote stats work uncached without it)
	var statsCache redis.Cache
	if os.Getenv("REDIS_ADDR") != "" {
		statsCache, err = redis.NewCache(log)
		if err != nil {
			log.Warn("Redis init failed, continuing without cache", "error", err)
			statsCache = nil
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fallbackLibrary := services.NewFallbackLibrary(log, rng)
	profileService := services.NewUserProfileService(thePG, log, userProfileRepo)
	generator := services.NewQuestGenerator(thePG, log, openaiClient, fallbackLibrary, profileService, userQuestRepo, questTemplateRepo, generationLogRepo, rng)
	lifecycleService := services.NewQuestLifecycleService(thePG, log, userQuestRepo)
	boardService := services.NewQuestBoardService(thePG, log, questBoardRepo, userQuestRepo, questTemplateRepo, profileService, lifecycleService, generator)
	votingService := services.NewVotingPoolService(thePG, log, questTemplateRepo, templateVoteRepo, generator, statsCache)
	historyService := services.NewHistoryService(thePG, log, userQuestRepo, profileService)

	var appleVerifier services.AppleVerifier
	if appleClientID != "" {
		appleVerifier, err = services.NewAppleVerifier(nil, appleClientID)
		if err != nil {
			log.Error("Could not init AppleVerifier", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("APPLE_CLIENT_ID not set, apple sign-in disabled")
	}
	authService := services.NewAuthService(thePG, log, userRepo, appleVerifier, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, adminEmails)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService, boardService)
	profileHandler := handlers.NewProfileHandler(log, profileService)
	boardHandler := handlers.NewBoardHandler(log, boardService)
	questHandler := handlers.NewQuestHandler(log, userQuestRepo, lifecycleService)
	historyHandler := handlers.NewHistoryHandler(log, historyService)
	votingHandler := handlers.NewVotingHandler(log, votingService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		ProfileHandler: profileHandler,
		BoardHandler:   boardHandler,
		QuestHandler:   questHandler,
		HistoryHandler: historyHandler,
		VotingHandler:  votingHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
