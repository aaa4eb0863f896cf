//go:build e2e

package e2e

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for E2E tests
type Config struct {
	ConfigPath  string
	TestDir     string
	Timeout     time.Duration
	Cleanup     bool
	PageSize    int
	FolderCount int
}

// LoadConfig loads E2E test configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		ConfigPath:  getEnvOrDefault("ONEDRIVE_E2E_CONFIG", "../config.json"),
		TestDir:     getEnvOrDefault("ONEDRIVE_E2E_TEST_DIR", "/E2E-Tests"),
		Timeout:     getTimeoutFromEnv("ONEDRIVE_E2E_TIMEOUT", 300*time.Second),
		Cleanup:     getBoolFromEnv("ONEDRIVE_E2E_CLEANUP", true),
		PageSize:    getIntFromEnv("ONEDRIVE_E2E_PAGE_SIZE", 2),
		FolderCount: getIntFromEnv("ONEDRIVE_E2E_FOLDER_COUNT", 5),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getTimeoutFromEnv(key string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return duration
}

func getBoolFromEnv(key string, defaultValue bool) bool {
	result, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return result
}

func getIntFromEnv(key string, defaultValue int) int {
	result, err := strconv.Atoi(os.Getenv(key))
	if err != nil || result <= 0 {
		return defaultValue
	}
	return result
}
