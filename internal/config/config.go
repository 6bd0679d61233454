package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string

	AnalyzerURL        string
	AnalyzerTimeoutSec int

	PrimaryAPIKey   string
	FallbackAPIKeys []string

	CORSOrigins string
	MaxUploadMB int

	LogLevel        string
	Environment     string
	DebugKeyLogging bool
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func LoadConfig() *Config {
	// .env is optional; system environment wins when the file is absent
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		HTTPPort:           getEnv("PORT", "8000"),
		AnalyzerURL:        getEnv("ANALYZER_URL", "http://localhost:9000"),
		AnalyzerTimeoutSec: getEnvInt("ANALYZER_TIMEOUT_SEC", 5),
		PrimaryAPIKey:      getEnv("VIDEO_ANALYZER_API_KEY", ""),
		FallbackAPIKeys:    splitKeys(getEnv("FALLBACK_API_KEYS", "")),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 10),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		Environment:        getEnv("ENVIRONMENT", "production"),
		DebugKeyLogging:    getEnvBool("DEBUG_KEY_LOGGING", false),
	}

	if cfg.PrimaryAPIKey == "" && len(cfg.FallbackAPIKeys) == 0 {
		log.Println("WARNING: no API keys configured, all authenticated requests will be rejected")
	}

	return cfg
}

// splitKeys parses a comma-separated key list, dropping empty entries.
func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if boolVal, err := strconv.ParseBool(v); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
