package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvString(env, fallback string) string {
	envString := os.Getenv(env)
	if envString == "" {
		return fallback
	}
	return envString
}

func GetEnvStringSlice(env string, fallback []string) []string {
	envString := os.Getenv(env)
	if envString == "" {
		return fallback
	}
	var values []string
	for _, value := range strings.Split(envString, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func GetEnvBool(env string, fallback bool) bool {
	envString := os.Getenv(env)
	envBool, err := strconv.ParseBool(envString)
	if err != nil {
		return fallback
	}
	return envBool
}

func GetEnvInt(env string, fallback int) int {
	envString := os.Getenv(env)
	envInt, err := strconv.Atoi(envString)
	if err != nil {
		return fallback
	}
	return envInt
}

// GetEnvDuration accepts Go duration strings such as "15m" or "168h".
func GetEnvDuration(env string, fallback time.Duration) time.Duration {
	envString := os.Getenv(env)
	envDuration, err := time.ParseDuration(envString)
	if err != nil || envDuration <= 0 {
		return fallback
	}
	return envDuration
}
