package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Annany2002/cvm-baseprep/internal/logger"
	"github.com/joho/godotenv"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort     string
	JWTSecret      string // empty disables bearer auth on /api/v1
	JWTExpiration  time.Duration
	MetadataDbDir  string
	MetadataDbFile string

	DefaultPostfix     string
	GenerationStagger  time.Duration
	GenerationMinTime  time.Duration
	GenerationMaxTime  time.Duration
	GenerationTick     time.Duration
	MediationAPIURL    string
	DashboardAPIURL    string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", "8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	jwtExpHoursStr := getEnv("JWT_EXPIRATION_HOURS", "24")
	dbDir := getEnv("DATABASE_DIRECTORY", "data")
	dbFile := getEnv("DATABASE_DIRECTORY_FILE", "baseprep.db")

	if jwtSecret == "" {
		customLog.Warnln("WARNING: JWT_SECRET is not set, API routes are unauthenticated!")
	}

	jwtExpHours, err := strconv.Atoi(jwtExpHoursStr)
	if err != nil || jwtExpHours <= 0 {
		customLog.Warnf("Invalid JWT_EXPIRATION_HOURS '%s'. Using default 24h. Error: %v", jwtExpHoursStr, err)
		jwtExpHours = 24
	}

	minTime := getSeconds("GENERATION_MIN_SECONDS", 5)
	maxTime := getSeconds("GENERATION_MAX_SECONDS", 15)
	if maxTime < minTime {
		customLog.Warnf("GENERATION_MAX_SECONDS (%s) below GENERATION_MIN_SECONDS (%s). Using the minimum for both.", maxTime, minTime)
		maxTime = minTime
	}

	cfg := &Config{
		ServerPort:         port,
		JWTSecret:          jwtSecret,
		JWTExpiration:      time.Hour * time.Duration(jwtExpHours),
		MetadataDbDir:      dbDir,
		MetadataDbFile:     dbFile,
		DefaultPostfix:     strings.ToUpper(getEnv("DEFAULT_POSTFIX", "NOV29")),
		GenerationStagger:  getSeconds("GENERATION_STAGGER_SECONDS", 2),
		GenerationMinTime:  minTime,
		GenerationMaxTime:  maxTime,
		GenerationTick:     time.Second,
		MediationAPIURL:    getEnv("MEDIATION_API_URL", "http://127.0.0.1:8000/api/"),
		DashboardAPIURL:    getEnv("DASHBOARD_API_URL", "http://localhost:5000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, postfix: %s, stagger: %v", cfg.ServerPort, cfg.DefaultPostfix, cfg.GenerationStagger)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		customLog.Warnf("Invalid %s '%s'. Using default %d.", key, raw, fallback)
		return fallback
	}
	return v
}

// getSeconds reads a non-negative number of seconds, fractions allowed.
func getSeconds(key string, fallback float64) time.Duration {
	raw := getEnv(key, strconv.FormatFloat(fallback, 'f', -1, 64))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		customLog.Warnf("Invalid %s '%s'. Using default %vs.", key, raw, fallback)
		v = fallback
	}
	return time.Duration(v * float64(time.Second))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
