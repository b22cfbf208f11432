package app

import (
	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/utils"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	Port        string

	EmbedDim   int
	EmbedModel string

	RedisAddr     string
	RedisPassword string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		ServiceName: utils.GetEnv("SERVICE_NAME", "notey-backend", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
		Port:        utils.GetEnv("PORT", "8080", log),

		EmbedDim:   utils.GetEnvAsInt("EMBED_DIM", 1536, log),
		EmbedModel: utils.GetEnv("AI_EMBED_MODEL", "text-embedding-3-small", log),

		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", "", log),
	}
}
