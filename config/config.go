// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MemoryDatabase selects the in-process store instead of PostgreSQL.
const MemoryDatabase = "memory"

// Config holds all application configuration.
type Config struct {
	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	// DATABASE_URL=memory runs without a database.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// JWT signing secret (required in production).
	JWTSecret string
	// Users allowed to mint password hashes for new accounts.
	AdminUsers []string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	// Redis cache for content index lookups; disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ContentTTL    time.Duration

	// Courses
	CourseNamePrefix string
	MaxSlotsPerDay   int

	// MySQL – legacy source, used only by cmd/migrate.
	MySQLDSN string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg := load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_USER", "course")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "jeju")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PORT", ":48000")
	v.SetDefault("TLS_DOMAINS", "")
	v.SetDefault("DEBUG", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CONTENT_CACHE_TTL", "24h")
	v.SetDefault("COURSE_NAME_PREFIX", "내 코스")
	v.SetDefault("COURSE_MAX_SLOTS_PER_DAY", 0)
	v.SetDefault("ADMIN_USERS", "admin")

	return &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBUser:           v.GetString("DB_USER"),
		DBPass:           v.GetString("DB_PASS"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		AdminUsers:       splitTrimmed(v.GetString("ADMIN_USERS")),
		Debug:            v.GetBool("DEBUG"),
		Port:             v.GetString("PORT"),
		TLSDomains:       splitTrimmed(v.GetString("TLS_DOMAINS")),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		ContentTTL:       v.GetDuration("CONTENT_CACHE_TTL"),
		CourseNamePrefix: v.GetString("COURSE_NAME_PREFIX"),
		MaxSlotsPerDay:   v.GetInt("COURSE_MAX_SLOTS_PER_DAY"),
		MySQLDSN:         v.GetString("MYSQL_DSN"),
	}
}

// InMemory reports whether the in-process store was requested.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == MemoryDatabase
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && c.DBPass == "" {
		return fmt.Errorf("config: DATABASE_URL or DB_PASS must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must be set")
	}
	if c.MaxSlotsPerDay < 0 {
		return fmt.Errorf("config: COURSE_MAX_SLOTS_PER_DAY must not be negative")
	}
	if !c.Debug && len(c.TLSDomains) == 0 {
		return fmt.Errorf("config: TLS_DOMAINS must be set outside debug mode")
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
