package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// SMS configuration
	SMS SMSConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Booking flow configuration
	Booking BookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	Driver             string // "postgres" (lib/pq) or "pgx"
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	Mode     string // "dev" logs messages, "production" sends them
	APIURL   string
	Username string
	APIKey   string
	SenderID string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost     int
	EnableAuditLog bool
}

// BookingConfig holds the booking wizard tunables
type BookingConfig struct {
	MaxSeatsPerBooking  int
	DefaultSeatCapacity int
	SeatLockMinutes     int
	FleetSelection      bool // fleet-aware flow: step 3 requires a bus
	SessionTTL          time.Duration
	DraftTTL            time.Duration // 0 keeps drafts forever
	Currency            string
	SeatChannel         string // Postgres NOTIFY channel for seat changes
	LoginURL            string
	DashboardURL        string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Driver:             getEnv("DATABASE_DRIVER", "postgres"),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		SMS: SMSConfig{
			Mode:     getEnv("SMS_MODE", "dev"),
			APIURL:   getEnv("SMS_API_URL", ""),
			Username: getEnv("SMS_USERNAME", ""),
			APIKey:   getEnv("SMS_API_KEY", ""),
			SenderID: getEnv("SMS_SENDER_ID", "TOURKENYA"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Booking-Session"}),
		},
		Security: SecurityConfig{
			BcryptCost:     getEnvAsInt("BCRYPT_COST", 12),
			EnableAuditLog: getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		Booking: BookingConfig{
			MaxSeatsPerBooking:  getEnvAsInt("BOOKING_MAX_SEATS", 5),
			DefaultSeatCapacity: getEnvAsInt("BOOKING_DEFAULT_SEAT_CAPACITY", 40),
			SeatLockMinutes:     getEnvAsInt("BOOKING_SEAT_LOCK_MINUTES", 10),
			FleetSelection:      getEnvAsBool("BOOKING_FLEET_SELECTION", true),
			SessionTTL:          time.Duration(getEnvAsInt("BOOKING_SESSION_TTL_MINUTES", 120)) * time.Minute,
			DraftTTL:            time.Duration(getEnvAsInt("BOOKING_DRAFT_TTL_HOURS", 168)) * time.Hour,
			Currency:            getEnv("BOOKING_CURRENCY", "KES"),
			SeatChannel:         getEnv("BOOKING_SEAT_CHANNEL", "seat_availability_changes"),
			LoginURL:            getEnv("BOOKING_LOGIN_URL", "/login"),
			DashboardURL:        getEnv("BOOKING_DASHBOARD_URL", "/dashboard"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be 'postgres' or 'pgx')", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.Booking.MaxSeatsPerBooking <= 0 {
		return fmt.Errorf("BOOKING_MAX_SEATS must be positive")
	}

	if c.Booking.DefaultSeatCapacity <= 0 {
		return fmt.Errorf("BOOKING_DEFAULT_SEAT_CAPACITY must be positive")
	}

	if c.Booking.DraftTTL < 0 {
		return fmt.Errorf("BOOKING_DRAFT_TTL_HOURS cannot be negative")
	}

	switch c.SMS.Mode {
	case "dev":
	case "production":
		if c.SMS.APIURL == "" || c.SMS.APIKey == "" {
			return fmt.Errorf("SMS_API_URL and SMS_API_KEY are required in production SMS mode")
		}
	default:
		return fmt.Errorf("invalid SMS mode: %s (must be 'dev' or 'production')", c.SMS.Mode)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
