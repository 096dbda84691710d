package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by FromEnv.
const (
	EnvBaseURL      = "EXCEL_INTERVIEW_API_URL"
	EnvTimeout      = "EXCEL_INTERVIEW_TIMEOUT"
	EnvPollInterval = "EXCEL_INTERVIEW_POLL_INTERVAL"
	EnvLogLevel     = "EXCEL_INTERVIEW_LOG_LEVEL"
	EnvCredentials  = "EXCEL_INTERVIEW_CREDENTIALS"
	EnvMetricsAddr  = "EXCEL_INTERVIEW_METRICS_ADDR"
)

// FromEnv returns a Config holding only the values set in the environment.
// Unparseable values are ignored.
func FromEnv() Config {
	return Config{
		BaseURL:         getEnv(EnvBaseURL, ""),
		Timeout:         Duration(getEnvAsDuration(EnvTimeout, 0)),
		PollInterval:    Duration(getEnvAsDuration(EnvPollInterval, 0)),
		LogLevel:        getEnv(EnvLogLevel, ""),
		CredentialsPath: getEnv(EnvCredentials, ""),
		MetricsAddr:     getEnv(EnvMetricsAddr, ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings or whole seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
