package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
	"github.com/yungbote/notey-backend/internal/utils"
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
	postgresName := utils.GetEnv("POSTGRES_NAME", "notey", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Event{},
		&types.EventPhoto{},
		&types.AudioChunk{},
		&types.Concept{},
		&types.ChunkConcept{},
		&types.ConceptRelation{},
		&types.ChatMessage{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{
			name: "fk_audio_chunk_event_id",
			ddl: `ALTER TABLE "audio_chunk"
				ADD CONSTRAINT "fk_audio_chunk_event_id"
				FOREIGN KEY ("event_id") REFERENCES "event"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_event_photo_event_id",
			ddl: `ALTER TABLE "event_photo"
				ADD CONSTRAINT "fk_event_photo_event_id"
				FOREIGN KEY ("event_id") REFERENCES "event"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_chunk_concept_chunk_id",
			ddl: `ALTER TABLE "chunk_concept"
				ADD CONSTRAINT "fk_chunk_concept_chunk_id"
				FOREIGN KEY ("chunk_id") REFERENCES "audio_chunk"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_chunk_concept_concept_id",
			ddl: `ALTER TABLE "chunk_concept"
				ADD CONSTRAINT "fk_chunk_concept_concept_id"
				FOREIGN KEY ("concept_id") REFERENCES "concept"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_concept_relation_src",
			ddl: `ALTER TABLE "concept_relation"
				ADD CONSTRAINT "fk_concept_relation_src"
				FOREIGN KEY ("src") REFERENCES "concept"("id")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_concept_relation_dst",
			ddl: `ALTER TABLE "concept_relation"
				ADD CONSTRAINT "fk_concept_relation_dst"
				FOREIGN KEY ("dst") REFERENCES "concept"("id")
				ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
		).Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			s.log.Error("Failed to add foreign key constraint", "constraint", c.name, "error", err)
			return err
		}
	}
	return nil
}
