package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names recognized for store overrides.
const (
	EnvEndpoint  = "TIANSHU_STORE_ENDPOINT"
	EnvAccessKey = "TIANSHU_STORE_ACCESS_KEY"
	EnvSecretKey = "TIANSHU_STORE_SECRET_KEY"
	EnvBucket    = "TIANSHU_STORE_BUCKET"
	EnvSecure    = "TIANSHU_STORE_SECURE"
	EnvPublicURL = "TIANSHU_STORE_PUBLIC_URL"
)

// loadEnvFile loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first
// successfully parsed file. Existing process environment is not overwritten.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			return
		}
	}
}

// applyEnvOverrides lets environment variables win over file values, so
// deployments can keep credentials out of the YAML file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Store.Endpoint = v
	}
	if v := os.Getenv(EnvAccessKey); v != "" {
		cfg.Store.AccessKey = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		cfg.Store.SecretKey = v
	}
	if v := os.Getenv(EnvBucket); v != "" {
		cfg.Store.Bucket = v
	}
	if v := os.Getenv(EnvSecure); v != "" {
		cfg.Store.Secure = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v := os.Getenv(EnvPublicURL); v != "" {
		cfg.Store.PublicURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}
}
