// Package config reads process settings from the environment, loading a .env file
// first when one is present.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the commands.
type Config struct {
	LogLevel      string // LOG_LEVEL
	TelemetryAddr string // TELEMETRY_ADDR
	TelemetryLoop bool   // TELEMETRY_LOOP
	DriveFile     string // DRIVE_FILE
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing files are not an error; it reports whether any were loaded.
func Load(files ...string) (Config, bool) {
	loaded := godotenv.Load(files...) == nil
	return Config{
		LogLevel:      Get("LOG_LEVEL", "info"),
		TelemetryAddr: Get("TELEMETRY_ADDR", ":8090"),
		TelemetryLoop: GetBool("TELEMETRY_LOOP", false),
		DriveFile:     Get("DRIVE_FILE", ""),
	}, loaded
}

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetBool parses key as a boolean, returning fallback when unset or unparsable.
func GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(Get(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
