package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // database migration mode: "auto" (default) or "drop"

	// Server
	ServerPort string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// CORS
	CORSAllowOrigin string

	// JWT Authentication
	JWTSecretKey   string
	JWTExpiryHours int // session token lifetime, defaults to 168 (7 days)

	// Firebase federated identity (optional; leave FIREBASE_PROJECT_ID empty to disable)
	FirebaseProjectID string
	FirebaseIssuer    string
	FirebaseJWKSURL   string
	FirebaseAPIKey    string

	// Admin bootstrap
	DefaultAdminPassword string

	// Account lockout
	LockoutMaxAttempts int // consecutive failures before locking, defaults to 5
	LockoutMinutes     int // lockout window length, defaults to 120

	// Password reset
	ResetTokenMinutes int // reset token lifetime, defaults to 30
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	// Set prefix based on environment type
	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	projectID := getEnv("FIREBASE_PROJECT_ID", "")

	return &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:          getEnvRequired(prefix + "DB_HOST"),
		DBUser:          getEnvRequired(prefix + "DB_USER"),
		DBPassword:      getEnvRequired(prefix + "DB_PASSWORD"),
		DBName:          getEnvRequired(prefix + "DB_NAME"),
		DBPort:          getEnvRequired(prefix + "DB_PORT"),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", "auto"),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		// Redis config
		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		// CORS config
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "http://localhost:5173"),

		// JWT config
		JWTSecretKey:   getEnv("JWT_SECRET_KEY", "sampoornaangan-secret-key-change-in-production"),
		JWTExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 168),

		// Firebase config - optional, absence disables federated login
		FirebaseProjectID: projectID,
		FirebaseIssuer:    getEnv("FIREBASE_ISSUER", defaultFirebaseIssuer(projectID)),
		FirebaseJWKSURL:   getEnv("FIREBASE_JWKS_URL", defaultFirebaseJWKSURL),
		FirebaseAPIKey:    getEnv("FIREBASE_API_KEY", ""),

		// Admin bootstrap config
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin"),

		// Lockout config
		LockoutMaxAttempts: getEnvAsInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutMinutes:     getEnvAsInt("LOCKOUT_MINUTES", 120),

		// Password reset config
		ResetTokenMinutes: getEnvAsInt("RESET_TOKEN_MINUTES", 30),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

const defaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

func defaultFirebaseIssuer(projectID string) string {
	if projectID == "" {
		return ""
	}
	return "https://securetoken.google.com/" + projectID
}

// FirebaseEnabled reports whether the federated identity provider is configured
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseProjectID != ""
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvRequired panics when a required environment variable is missing
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	panic(fmt.Sprintf("Required environment variable %s is not set", key))
}
