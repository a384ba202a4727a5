package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings holds process-level configuration taken from the environment.
type Settings struct {
	DatabaseURL    string
	LogLevel       string
	LogFormat      string
	RulesFile      string
	PayrollWorkers int
}

// LoadSettings reads a .env file if one exists, then the environment.
func LoadSettings() (Settings, error) {
	_ = godotenv.Load()

	s := Settings{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "console")),
		RulesFile:      os.Getenv("TAXCALC_RULES_FILE"),
		PayrollWorkers: 8,
	}
	if v := os.Getenv("PAYROLL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Settings{}, fmt.Errorf("PAYROLL_WORKERS must be a positive integer, got %q", v)
		}
		s.PayrollWorkers = n
	}
	if s.LogFormat != "console" && s.LogFormat != "json" {
		return Settings{}, fmt.Errorf("LOG_FORMAT must be 'console' or 'json', got %q", s.LogFormat)
	}
	return s, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
