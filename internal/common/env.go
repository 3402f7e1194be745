package common

import "os"

// GetEnvOrDefault returns the value of the env var or a fallback.
func GetEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
