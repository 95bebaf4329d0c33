package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
	"github.com/yungbote/sidequest-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "sidequest", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=sidequest", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS "sidequest";`).Error; err != nil {
		log.Error("Failed to create sidequest schema", "error", err)
		return nil, fmt.Errorf("Failed to create sidequest schema: %w", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserProfile{},
		&types.QuestTemplate{},
		&types.QuestBoard{},
		&types.UserQuest{},
		&types.QuestGenerationLog{},
		&types.QuestTemplateVote{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring constraints for postgres tables...")
	stmts := []string{
		// one *active* board per user; refresh losers retry against this
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_quest_board_active_user
		 ON "quest_board"("user_id") WHERE "is_active"`,
		`ALTER TABLE "user_profile"
		 ADD CONSTRAINT "fk_user_profile_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "quest_board"
		 ADD CONSTRAINT "fk_quest_board_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "user_quest"
		 ADD CONSTRAINT "fk_user_quest_template_id"
		 FOREIGN KEY ("quest_template_id") REFERENCES "quest_template"("id")`,
		`ALTER TABLE "quest_template_vote"
		 ADD CONSTRAINT "fk_vote_template_id"
		 FOREIGN KEY ("quest_template_id") REFERENCES "quest_template"("id") ON DELETE CASCADE`,
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			// constraint may already exist from a previous boot
			s.log.Debug("Constraint statement skipped", "error", err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
