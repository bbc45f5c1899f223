package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Platform PlatformConfig
	Registry RegistryConfig
	Hostname HostnameConfig
	Janitor  JanitorConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PlatformConfig controls how inbound hosts and paths are classified.
// When Domain is empty the front door falls back to path-based routing
// on a single shared host.
type PlatformConfig struct {
	Domain         string
	AdminSubdomain string
	DisplayHost    string
}

// RegistryConfig points at the script runner service that hosts tenant code.
type RegistryConfig struct {
	URL       string
	Namespace string
	Token     string
}

// HostnameConfig points at the custom-hostname/SSL API. All fields are
// optional; the hostnames client degrades to warnings when unconfigured.
type HostnameConfig struct {
	APIURL string
	ZoneID string
	Token  string
}

type JanitorConfig struct {
	// Cron spec with a seconds field, e.g. "0 */10 * * * *". Empty disables.
	Spec string
}

type AppConfig struct {
	Environment string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Platform: PlatformConfig{
			Domain:         getEnv("PLATFORM_DOMAIN", ""),
			AdminSubdomain: getEnv("ADMIN_SUBDOMAIN", "build"),
			DisplayHost:    getEnv("PLATFORM_DISPLAY_HOST", ""),
		},
		Registry: RegistryConfig{
			URL:       getEnv("REGISTRY_URL", ""),
			Namespace: getEnv("REGISTRY_NAMESPACE", "projects"),
			Token:     getEnv("REGISTRY_TOKEN", ""),
		},
		Hostname: HostnameConfig{
			APIURL: getEnv("HOSTNAME_API_URL", ""),
			ZoneID: getEnv("HOSTNAME_ZONE_ID", ""),
			Token:  getEnv("HOSTNAME_API_TOKEN", ""),
		},
		Janitor: JanitorConfig{
			Spec: getEnv("JANITOR_SPEC", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Registry.URL == "" {
		return fmt.Errorf("REGISTRY_URL is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
