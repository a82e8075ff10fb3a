package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int

	// Remote ScanMyRide REST API.
	APIBaseURL string
	APITimeout time.Duration

	// Origin used to build the shareable /p/{uniqueId} links encoded in stickers.
	PublicBaseURL string

	StorageDriver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	TelegramBotToken string

	PublicFetchMaxAttempts int
	PublicFetchInterval    time.Duration

	StickerScale int
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "scanmyride"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))

	cfg.APIBaseURL = strings.TrimRight(cast.ToString(getOrReturnDefault("API_BASE_URL", "http://localhost:5000")), "/")
	cfg.APITimeout = cast.ToDuration(getOrReturnDefault("API_TIMEOUT", "6s"))
	cfg.PublicBaseURL = strings.TrimRight(cast.ToString(getOrReturnDefault("PUBLIC_BASE_URL", "http://localhost:8080")), "/")

	cfg.StorageDriver = strings.ToLower(cast.ToString(getOrReturnDefault("STORAGE_DRIVER", StoragePostgres)))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "scanmyride"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))

	cfg.PublicFetchMaxAttempts = cast.ToInt(getOrReturnDefault("PUBLIC_FETCH_MAX_ATTEMPTS", 15))
	cfg.PublicFetchInterval = cast.ToDuration(getOrReturnDefault("PUBLIC_FETCH_INTERVAL", "2s"))

	cfg.StickerScale = cast.ToInt(getOrReturnDefault("STICKER_SCALE", 4))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
