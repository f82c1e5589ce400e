// Package config reads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the given .env files (".env" when none are given) without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// GetEnv returns the variable or the default when unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetInt parses an integer variable, falling back to the default on error.
func GetInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return v
}

// GetDuration parses a time.ParseDuration value, falling back to the default.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// GetList splits a comma separated variable, dropping blanks.
func GetList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// IsDevelopment reports whether ENVIRONMENT is development (the default).
func IsDevelopment() bool {
	return GetEnv("ENVIRONMENT", "development") == "development"
}

// DevJWTSecret signs tokens in development when JWT_SECRET is unset.
const DevJWTSecret = "freshsave-development-secret"

// JWTSecret returns JWT_SECRET. Outside development an unset secret is an
// error.
func JWTSecret() (string, error) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret, nil
	}
	if IsDevelopment() {
		return DevJWTSecret, nil
	}
	return "", errors.New("JWT_SECRET must be set outside development")
}
