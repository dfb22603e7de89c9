package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Security
	JWTSecret         string
	SessionTokenHours int

	// Field and physics
	FieldWidth    float64
	FieldHeight   float64
	WallThickness float64
	Gravity       float64

	// Session loop
	TickRate        int
	SnapshotEvery   int
	MaxFrameSeconds float64
	MaxSessions     int

	// Idle detection
	IdleTimeoutSeconds     int
	IdleWorkerPollInterval int

	// Leaderboard
	LeaderboardSize     int
	LeaderboardCacheTTL int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/walltowall?sslmode=disable"),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenHours: getEnvInt("SESSION_TOKEN_HOURS", 24),

		// Field and physics
		FieldWidth:    getEnvFloat("FIELD_WIDTH", 800),
		FieldHeight:   getEnvFloat("FIELD_HEIGHT", 600),
		WallThickness: getEnvFloat("WALL_THICKNESS", 30),
		Gravity:       getEnvFloat("GRAVITY", 70),

		// Session loop
		TickRate:        getEnvInt("TICK_RATE", 60),
		SnapshotEvery:   getEnvInt("SNAPSHOT_EVERY", 2),
		MaxFrameSeconds: getEnvFloat("MAX_FRAME_SECONDS", 0.1),
		MaxSessions:     getEnvInt("MAX_SESSIONS", 500),

		// Idle detection
		IdleTimeoutSeconds:     getEnvInt("IDLE_TIMEOUT_SECONDS", 300),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),

		// Leaderboard
		LeaderboardSize:     getEnvInt("LEADERBOARD_SIZE", 50),
		LeaderboardCacheTTL: getEnvInt("LEADERBOARD_CACHE_SECONDS", 15),
	}
}

// MaxFrame returns the per-frame time cap as a duration.
func (c *Config) MaxFrame() time.Duration {
	return time.Duration(c.MaxFrameSeconds * float64(time.Second))
}

// TickInterval returns the session loop period.
func (c *Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
