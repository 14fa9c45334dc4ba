package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	SERVER_PORT    string
	LOG_LEVEL      string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	SESSION_SECRET string
	ADMIN_USERNAME string
	ADMIN_PASSWORD string
	KAFKA_ADDRESS  string
}

// Paths where the container runtime mounts secrets. A mounted file always
// wins over the corresponding environment variable.
const (
	sessionSecretFile = "/run/secrets/session_secret"
	dbPasswordFile    = "/run/secrets/db_password"
	adminPasswordFile = "/run/secrets/admin_password"
)

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		SERVER_PORT:    EnvDefault("SERVER_PORT", "8080"),
		LOG_LEVEL:      EnvDefault("LOG_LEVEL", "info"),
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        EnvDefault("DB_PORT", "5432"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    resolveSecret(dbPasswordFile, "DB_PASSWORD", ""),
		DB_NAME:        os.Getenv("DB_NAME"),
		SESSION_SECRET: resolveSecret(sessionSecretFile, "SESSION_SECRET", "dev-secret-key-change-in-prod"),
		ADMIN_USERNAME: EnvDefault("ADMIN_USERNAME", "admin"),
		ADMIN_PASSWORD: resolveSecret(adminPasswordFile, "ADMIN_PASSWORD", ""),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
	}

	return config, nil
}

// resolveSecret reads a secret from the first available source:
// mounted file, then environment variable, then the default.
func resolveSecret(filePath, envName, def string) string {
	if data, err := os.ReadFile(filePath); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return def
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get sql.DB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}
